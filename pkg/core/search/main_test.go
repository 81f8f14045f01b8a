package search

import (
	"testing"

	"go.uber.org/goleak"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testCatalog returns a small catalog exercising model and variant attributes.
func testCatalog() []domain.Model {
	return []domain.Model{
		{
			Key:      "Batmobile",
			Designer: domain.Str("Larry Wood"),
			Variants: []domain.Variant{
				{Year: "1968", Color: domain.Str("black"), Series: domain.Str("Heroes"), ID: "V1"},
				{Year: "1989", Color: domain.Str("purple"), Series: domain.Str("Heroes"), ID: "V2"},
			},
		},
		{
			Key:         "Hot_Rod_Special",
			Description: domain.Str("A <b>classic</b> hot rod"),
			Variants: []domain.Variant{
				{Year: "1970", Color: domain.Str("Metallic Red"), ImagePath: domain.Str("t"), ID: "V3"},
				{Year: "19680", Color: domain.Str("blue"), ID: "V4"},
			},
		},
		{
			Key:           "Custom_%2768_Camaro",
			CatalogNumber: domain.Str("6208"),
			Variants: []domain.Variant{
				{Year: "1968", Color: domain.Str("Spectraflame Blue"), Wheels: domain.Str("Redline"), ID: "V5"},
				{Year: "FTE", Color: domain.Str("orange")},
			},
		},
		{
			Key:      "Empty_Shell",
			Variants: []domain.Variant{},
		},
	}
}

func keys(models []domain.Model) []string {
	out := make([]string, 0, len(models))
	for _, m := range models {
		out = append(out, m.Key)
	}
	return out
}

func variantIDs(models []domain.Model) []string {
	out := []string{}
	for _, m := range models {
		for _, v := range m.Variants {
			out = append(out, v.ID)
		}
	}
	return out
}
