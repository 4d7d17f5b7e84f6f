package products

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-commerce/lattice-catalog/internal/platform/db"
	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	SetDeleted(ctx context.Context, id int64) error
	LinkCategories(ctx context.Context, productID int64, categoryIDs []int64) error
	LinkAttributeSets(ctx context.Context, productID int64, setIDs []int64) error
	CategoryIDs(ctx context.Context, productID int64) ([]int64, error)
	AttributeSetIDs(ctx context.Context, productID int64) ([]int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.db.QueryRow(ctx, `SELECT id, sku, is_deleted, created_at, updated_at FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.SKU, &p.IsDeleted, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, shared.MapStorageError(err)
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO products (sku, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`, product.SKU, now, now).Scan(&product.ID)
	if err != nil {
		return Product{}, shared.MapStorageError(err)
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) SetDeleted(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET is_deleted = TRUE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// LinkCategories inserts the pairs inside one transaction so a failed batch
// leaves no partial links behind.
func (r *repository) LinkCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, categoryID := range categoryIDs {
			_, err := tx.Exec(ctx, `INSERT INTO product_categories (product_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, productID, categoryID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) LinkAttributeSets(ctx context.Context, productID int64, setIDs []int64) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, setID := range setIDs {
			_, err := tx.Exec(ctx, `INSERT INTO product_attribute_sets (product_id, attribute_set_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, productID, setID)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) CategoryIDs(ctx context.Context, productID int64) ([]int64, error) {
	return r.ids(ctx, `SELECT category_id FROM product_categories WHERE product_id = $1 ORDER BY category_id`, productID)
}

func (r *repository) AttributeSetIDs(ctx context.Context, productID int64) ([]int64, error) {
	return r.ids(ctx, `SELECT attribute_set_id FROM product_attribute_sets WHERE product_id = $1 ORDER BY attribute_set_id`, productID)
}

func (r *repository) ids(ctx context.Context, query string, arg int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
