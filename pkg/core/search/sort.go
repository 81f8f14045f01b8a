package search

import (
	"fmt"
	"sort"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

// Direction is a sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortModelAxis sorts rows by model key.
const SortModelAxis = "model"

// Sort is an active sort. A nil *Sort means unsorted.
type Sort struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// NextSort advances the tri-state toggle for field:
// unsorted -> ascending -> descending -> unsorted. Selecting a different
// field starts again at ascending.
func NextSort(cur *Sort, field string) *Sort {
	if cur == nil || cur.Field != field {
		return &Sort{Field: field, Direction: Asc}
	}
	if cur.Direction == Asc {
		return &Sort{Field: field, Direction: Desc}
	}
	return nil
}

// ParseSort validates a sort request. An empty field means unsorted; an empty
// direction means ascending.
func ParseSort(field, dir string) (*Sort, error) {
	if field == "" {
		return nil, nil
	}
	if field != SortModelAxis {
		if _, ok := sortAttr(field); !ok {
			return nil, fmt.Errorf("%w: unknown sort field %q", domain.ErrInvalidQuery, field)
		}
	}
	d := Direction(dir)
	switch d {
	case "":
		d = Asc
	case Asc, Desc:
	default:
		return nil, fmt.Errorf("%w: unknown sort direction %q", domain.ErrInvalidQuery, dir)
	}
	return &Sort{Field: field, Direction: d}, nil
}

// Row is one (model, variant) line of a flattened result table.
type Row struct {
	ModelKey string         `json:"lnk"`
	Name     string         `json:"name"`
	Variant  domain.Variant `json:"variant"`
}

// Rows flattens models into table rows, preserving model and variant order.
func Rows(models []domain.Model) []Row {
	rows := []Row{}
	for _, m := range models {
		name := FormatName(m.Key)
		for _, v := range m.Variants {
			rows = append(rows, Row{ModelKey: m.Key, Name: name, Variant: v})
		}
	}
	return rows
}

// SortRows sorts rows in place, lexicographically on the raw attribute
// string. Absent attributes compare as the empty string. A nil sort or an
// unknown field leaves the order untouched.
func SortRows(rows []Row, s *Sort) {
	if s == nil {
		return
	}
	var key func(r *Row) string
	if s.Field == SortModelAxis {
		key = func(r *Row) string { return r.ModelKey }
	} else {
		attr, ok := sortAttr(s.Field)
		if !ok {
			return
		}
		key = func(r *Row) string {
			v, _ := r.Variant.Attr(attr)
			return v
		}
	}
	desc := s.Direction == Desc
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := key(&rows[i]), key(&rows[j])
		if desc {
			return a > b
		}
		return a < b
	})
}
