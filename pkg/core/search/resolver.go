package search

import (
	"sort"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/core/domain"
)

// RouteKind tells the engine how a resolved field is compared.
type RouteKind int

const (
	// RouteName matches every word against the display-formatted model key.
	RouteName RouteKind = iota
	// RouteLink compares the raw value with the model key exactly.
	RouteLink
	// RouteYear compares the raw value with each variant year exactly.
	RouteYear
	// RouteModel matches every word against a model attribute.
	RouteModel
	// RouteVariant matches every word against a variant attribute, any variant.
	RouteVariant
)

// Route is the resolved location of a logical search field.
type Route struct {
	Kind        RouteKind
	ModelAttr   domain.ModelAttr
	VariantAttr domain.VariantAttr
}

var specialRoutes = map[string]Route{
	"name": {Kind: RouteName, ModelAttr: domain.ModelKey},
	"link": {Kind: RouteLink, ModelAttr: domain.ModelKey},
	"year": {Kind: RouteYear, VariantAttr: domain.VariantYear},
}

// modelFields routes logical names to Model attributes.
var modelFields = map[string]domain.ModelAttr{
	"designer":    domain.ModelDesigner,
	"description": domain.ModelDescription,
	"number":      domain.ModelCatalogNumber,
}

// variantFields routes logical names to Variant attributes.
var variantFields = map[string]domain.VariantAttr{
	"collection": domain.VariantCollectionNumber,
	"series":     domain.VariantSeries,
	"color":      domain.VariantColor,
	"tampo":      domain.VariantTampo,
	"base":       domain.VariantBase,
	"window":     domain.VariantWindow,
	"interior":   domain.VariantInterior,
	"wheels":     domain.VariantWheels,
	"toy":        domain.VariantToyNumber,
	"country":    domain.VariantCountry,
	"notes":      domain.VariantNotes,
}

// Resolve maps a logical field name to its attribute location. The model
// table is consulted before the variant table. ok is false for unknown names.
func Resolve(field string) (Route, bool) {
	if r, ok := specialRoutes[field]; ok {
		return r, true
	}
	if a, ok := modelFields[field]; ok {
		return Route{Kind: RouteModel, ModelAttr: a}, true
	}
	if a, ok := variantFields[field]; ok {
		return Route{Kind: RouteVariant, VariantAttr: a}, true
	}
	return Route{}, false
}

// Fields returns every resolvable field name, sorted.
func Fields() []string {
	names := make([]string, 0, len(specialRoutes)+len(modelFields)+len(variantFields))
	for n := range specialRoutes {
		names = append(names, n)
	}
	for n := range modelFields {
		names = append(names, n)
	}
	for n := range variantFields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// sortAttr resolves a sort axis. "model" sorts by key; any variant field,
// including year, sorts by that attribute.
func sortAttr(field string) (domain.VariantAttr, bool) {
	if field == "year" {
		return domain.VariantYear, true
	}
	a, ok := variantFields[field]
	return a, ok
}
