package tags

// Tag is a normalized, deduplicated free-text label.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
