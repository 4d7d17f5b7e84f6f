package assignments

import "github.com/lattice-commerce/lattice-catalog/internal/catalog/attributes"

// Assignment is one flat EAV row binding a product to an attribute. Exactly
// one of ValueID (dropdown selection) and Text (free-text content) is set;
// multi-select dropdowns produce one row per selected value.
type Assignment struct {
	ID          int64   `json:"id"`
	ProductID   int64   `json:"product_id"`
	AttributeID int64   `json:"attribute_id"`
	SetID       int64   `json:"attribute_set_id"`
	TitleID     int64   `json:"attribute_title_id"`
	ValueID     *int64  `json:"attribute_value_id,omitempty"`
	Text        *string `json:"free_text_value,omitempty"`
}

// variantConsistent reports whether the row populates exactly the value
// representation its attribute kind requires.
func (a Assignment) variantConsistent(kind attributes.Kind) bool {
	switch kind {
	case attributes.KindDropdown:
		return a.ValueID != nil && a.Text == nil
	case attributes.KindFreeText:
		return a.Text != nil && a.ValueID == nil
	default:
		return false
	}
}

// Row is an assignment joined with its display metadata for reads.
type Row struct {
	Assignment
	TitleName     string          `json:"title_name"`
	AttributeName string          `json:"attribute_name"`
	Kind          attributes.Kind `json:"kind"`
	ValueText     string          `json:"value_text"`
}

// Input is one attribute write inside an assign/update command. Text carries
// free-text content; ValueIDs carries dropdown selections.
type Input struct {
	AttributeID int64
	TitleID     int64
	Text        string
	ValueIDs    []int64
}

// Selector names what Remove deletes: dropdown rows by value id, or the
// free-text row by exact content.
type Selector struct {
	ValueIDs []int64
	Text     string
}

// Document is the read-side reshaping of flat rows: attribute title →
// attribute name → scalar string (free text) or []string (dropdown, in
// insertion order).
type Document map[string]map[string]any
