package domain

// Model is one catalog entry (a casting) with its year-specific variants.
// JSON keys follow the persisted catalog snapshot format.
type Model struct {
	Key           string    `json:"lnk"`
	Designer      *string   `json:"ds,omitempty"`
	CatalogNumber *string   `json:"num,omitempty"`
	Description   *string   `json:"dsc,omitempty"`
	Variants      []Variant `json:"d"`
}

// Variant is one year/release of a Model. Optional attributes are pointers so
// that an absent attribute is distinguishable from an empty one.
type Variant struct {
	Year             string  `json:"y"`
	CollectionNumber *string `json:"N,omitempty"`
	Series           *string `json:"Sr,omitempty"`
	Color            *string `json:"c,omitempty"`
	Tampo            *string `json:"Tm,omitempty"`
	Base             *string `json:"Bs,omitempty"`
	Window           *string `json:"Wn,omitempty"`
	Interior         *string `json:"In,omitempty"`
	Wheels           *string `json:"Wh,omitempty"`
	ToyNumber        *string `json:"Tn,omitempty"`
	Country          *string `json:"Cn,omitempty"`
	Notes            *string `json:"Nt,omitempty"`
	ImagePath        *string `json:"p,omitempty"`
	ID               string  `json:"id,omitempty"`
}

// ModelAttr names a Model-level string attribute.
type ModelAttr int

const (
	ModelKey ModelAttr = iota
	ModelDesigner
	ModelCatalogNumber
	ModelDescription
)

// VariantAttr names a Variant-level string attribute.
type VariantAttr int

const (
	VariantYear VariantAttr = iota
	VariantCollectionNumber
	VariantSeries
	VariantColor
	VariantTampo
	VariantBase
	VariantWindow
	VariantInterior
	VariantWheels
	VariantToyNumber
	VariantCountry
	VariantNotes
	VariantImagePath
)

// DisplayAttrs lists the descriptive variant attributes in table display order.
var DisplayAttrs = []VariantAttr{
	VariantCollectionNumber,
	VariantSeries,
	VariantColor,
	VariantTampo,
	VariantBase,
	VariantWindow,
	VariantInterior,
	VariantWheels,
	VariantToyNumber,
	VariantCountry,
	VariantNotes,
}

var variantAttrLabels = map[VariantAttr]string{
	VariantYear:             "Year",
	VariantCollectionNumber: "Collection #",
	VariantSeries:           "Series",
	VariantColor:            "Color",
	VariantTampo:            "Tampo",
	VariantBase:             "Base",
	VariantWindow:           "Window",
	VariantInterior:         "Interior",
	VariantWheels:           "Wheels",
	VariantToyNumber:        "Toy #",
	VariantCountry:          "Country",
	VariantNotes:            "Notes",
	VariantImagePath:        "Image",
}

// Label returns the column label for the attribute.
func (a VariantAttr) Label() string {
	return variantAttrLabels[a]
}

// Attr returns the value of a Model attribute and whether it is present.
func (m *Model) Attr(a ModelAttr) (string, bool) {
	switch a {
	case ModelKey:
		return m.Key, true
	case ModelDesigner:
		return deref(m.Designer)
	case ModelCatalogNumber:
		return deref(m.CatalogNumber)
	case ModelDescription:
		return deref(m.Description)
	}
	return "", false
}

// Attr returns the value of a Variant attribute and whether it is present.
func (v *Variant) Attr(a VariantAttr) (string, bool) {
	switch a {
	case VariantYear:
		return v.Year, true
	case VariantCollectionNumber:
		return deref(v.CollectionNumber)
	case VariantSeries:
		return deref(v.Series)
	case VariantColor:
		return deref(v.Color)
	case VariantTampo:
		return deref(v.Tampo)
	case VariantBase:
		return deref(v.Base)
	case VariantWindow:
		return deref(v.Window)
	case VariantInterior:
		return deref(v.Interior)
	case VariantWheels:
		return deref(v.Wheels)
	case VariantToyNumber:
		return deref(v.ToyNumber)
	case VariantCountry:
		return deref(v.Country)
	case VariantNotes:
		return deref(v.Notes)
	case VariantImagePath:
		return deref(v.ImagePath)
	}
	return "", false
}

// HasImage reports whether the variant carries an image key or marker.
func (v *Variant) HasImage() bool {
	p, ok := deref(v.ImagePath)
	return ok && p != ""
}

// WithVariants returns a shallow copy of the model holding the given variants.
func (m Model) WithVariants(variants []Variant) Model {
	m.Variants = variants
	return m
}

// Str returns a pointer to s. Convenience for building records in code and tests.
func Str(s string) *string {
	return &s
}

func deref(s *string) (string, bool) {
	if s == nil {
		return "", false
	}
	return *s, true
}
