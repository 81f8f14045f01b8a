package domain

// Column is a table column backed by a variant attribute.
type Column struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

// ModelView is the detail view of one model.
type ModelView struct {
	Model
	Name            string            `json:"name"`
	YearRanges      string            `json:"year_ranges"`
	DescriptionText string            `json:"description_text,omitempty"`
	Columns         []Column          `json:"columns"`
	Images          map[string]string `json:"images"`
}
