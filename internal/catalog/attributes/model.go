package attributes

import "time"

// Kind discriminates how an attribute's values are captured.
type Kind string

const (
	// KindDropdown selects among enumerated attribute values.
	KindDropdown Kind = "dropdown"
	// KindFreeText stores caller-provided text per product.
	KindFreeText Kind = "free_text"
)

// Attribute is an admin-defined product property.
type Attribute struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	Kind           Kind      `json:"kind"`
	IsSearchable   bool      `json:"is_searchable"`
	IsDiscoverable bool      `json:"is_discoverable"`
	TitleID        int64     `json:"title_id"`
	IsDeleted      bool      `json:"is_deleted"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Title is a display-section label grouping attributes, e.g. "Dimensions".
type Title struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Value is one enumerated option of a dropdown attribute.
type Value struct {
	ID          int64  `json:"id"`
	AttributeID int64  `json:"attribute_id"`
	Value       string `json:"value"`
	IsDeleted   bool   `json:"is_deleted"`
}
