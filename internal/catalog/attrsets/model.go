package attrsets

import (
	"time"

	"github.com/lattice-commerce/lattice-catalog/internal/catalog/attributes"
)

// AttributeSet is a reusable named bundle of attributes.
type AttributeSet struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member is a set member attribute flattened with its enumerated values.
type Member struct {
	Attribute attributes.Attribute `json:"attribute"`
	Values    []attributes.Value   `json:"values"`
}

// Members carries the member list plus the comma-joined attribute id string
// bulk-edit forms prefill from.
type Members struct {
	Items  []Member `json:"items"`
	IDList string   `json:"id_list"`
}
