package products

import "time"

// Product carries the catalog-side product row. Descriptive attributes live
// in the assignment store, not here.
type Product struct {
	ID        int64     `json:"id"`
	SKU       string    `json:"sku"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
