package categories

import "time"

// Category represents a node in the self-referencing category hierarchy.
type Category struct {
	ID                 int64     `json:"id"`
	Name               string    `json:"name"`
	Slug               string    `json:"slug"`
	ParentID           *int64    `json:"parent_id,omitempty"`
	MaxSingleCatLimit  int       `json:"max_single_cat_limit"`
	MaxMultipleCatLimit int      `json:"max_multiple_cat_limit"`
	IsDeleted          bool      `json:"is_deleted"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Node is a category plus its resolved descendant subtree.
type Node struct {
	Category
	Children []*Node `json:"children"`
}
