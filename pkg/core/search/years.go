package search

import (
	"sort"
	"strconv"
	"strings"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

// FirstTimeEdition marks a non-calendar year value.
const FirstTimeEdition = "FTE"

// AvailableYears returns the distinct variant years across models, sorted,
// without the FTE marker and empty values.
func AvailableYears(models []domain.Model) []string {
	seen := make(map[string]struct{})
	years := []string{}
	for _, m := range models {
		for _, v := range m.Variants {
			if v.Year == "" || v.Year == FirstTimeEdition {
				continue
			}
			if _, ok := seen[v.Year]; ok {
				continue
			}
			seen[v.Year] = struct{}{}
			years = append(years, v.Year)
		}
	}
	sort.Strings(years)
	return years
}

// FormatYearRanges collapses numeric years into ranges, e.g. "1968-1970, 1975".
// Non-numeric years are ignored.
func FormatYearRanges(years []string) string {
	seen := make(map[int]struct{})
	var nums []int
	for _, y := range years {
		n, err := strconv.Atoi(strings.TrimSpace(y))
		if err != nil {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return ""
	}
	sort.Ints(nums)

	var parts []string
	start, prev := nums[0], nums[0]
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, strconv.Itoa(start)+"-"+strconv.Itoa(prev))
		}
	}
	for _, n := range nums[1:] {
		if n == prev+1 {
			prev = n
			continue
		}
		flush()
		start, prev = n, n
	}
	flush()
	return strings.Join(parts, ", ")
}

// ModelYears returns the years of a model's variants in variant order.
func ModelYears(m domain.Model) []string {
	years := make([]string, 0, len(m.Variants))
	for _, v := range m.Variants {
		years = append(years, v.Year)
	}
	return years
}

// AvailableFields returns, in display order, the descriptive variant
// attributes present on at least one variant of models.
func AvailableFields(models []domain.Model) []domain.Column {
	names := make(map[domain.VariantAttr]string, len(variantFields))
	for n, a := range variantFields {
		names[a] = n
	}
	cols := []domain.Column{}
	for _, attr := range domain.DisplayAttrs {
		if present(models, attr) {
			cols = append(cols, domain.Column{Field: names[attr], Label: attr.Label()})
		}
	}
	return cols
}

func present(models []domain.Model, attr domain.VariantAttr) bool {
	for _, m := range models {
		for i := range m.Variants {
			if _, ok := m.Variants[i].Attr(attr); ok {
				return true
			}
		}
	}
	return false
}
