package assignments

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

type Repository interface {
	Insert(ctx context.Context, row Assignment) (Assignment, error)
	DropdownRowExists(ctx context.Context, productID, attributeID, valueID int64) (bool, error)
	FindFreeTextRow(ctx context.Context, productID, attributeID int64) (Assignment, error)
	UpdateFreeText(ctx context.Context, id int64, text string) error
	DeleteDropdownRows(ctx context.Context, productID, attributeID int64, valueIDs []int64) error
	DeleteFreeTextRow(ctx context.Context, productID, attributeID int64, text string) error
	ListByProduct(ctx context.Context, productID int64) ([]Row, error)
	CountByValue(ctx context.Context, valueID int64) (int, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, row Assignment) (Assignment, error) {
	query := `INSERT INTO product_attribute_assignments (product_id, attribute_id, attribute_set_id, attribute_title_id, attribute_value_id, free_text_value) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRow(ctx, query, row.ProductID, row.AttributeID, row.SetID, row.TitleID, row.ValueID, row.Text).Scan(&row.ID)
	if err != nil {
		return Assignment{}, shared.MapStorageError(err)
	}
	return row, nil
}

func (r *repository) DropdownRowExists(ctx context.Context, productID, attributeID, valueID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM product_attribute_assignments WHERE product_id = $1 AND attribute_id = $2 AND attribute_value_id = $3)`, productID, attributeID, valueID).Scan(&exists)
	return exists, err
}

// FindFreeTextRow returns the single row holding the attribute's free text,
// identified by a NULL value id.
func (r *repository) FindFreeTextRow(ctx context.Context, productID, attributeID int64) (Assignment, error) {
	var a Assignment
	query := `SELECT id, product_id, attribute_id, attribute_set_id, attribute_title_id, attribute_value_id, free_text_value FROM product_attribute_assignments WHERE product_id = $1 AND attribute_id = $2 AND attribute_value_id IS NULL`
	err := r.db.QueryRow(ctx, query, productID, attributeID).Scan(&a.ID, &a.ProductID, &a.AttributeID, &a.SetID, &a.TitleID, &a.ValueID, &a.Text)
	if err != nil {
		return Assignment{}, shared.MapStorageError(err)
	}
	return a, nil
}

func (r *repository) UpdateFreeText(ctx context.Context, id int64, text string) error {
	_, err := r.db.Exec(ctx, `UPDATE product_attribute_assignments SET free_text_value = $1 WHERE id = $2`, text, id)
	return err
}

func (r *repository) DeleteDropdownRows(ctx context.Context, productID, attributeID int64, valueIDs []int64) error {
	if len(valueIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM product_attribute_assignments WHERE product_id = $1 AND attribute_id = $2 AND attribute_value_id = ANY($3)`, productID, attributeID, valueIDs)
	return err
}

func (r *repository) DeleteFreeTextRow(ctx context.Context, productID, attributeID int64, text string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM product_attribute_assignments WHERE product_id = $1 AND attribute_id = $2 AND attribute_value_id IS NULL AND free_text_value = $3`, productID, attributeID, text)
	return err
}

// ListByProduct returns rows joined with display metadata in insertion
// order (id ascending).
func (r *repository) ListByProduct(ctx context.Context, productID int64) ([]Row, error) {
	query := `
		SELECT pa.id, pa.product_id, pa.attribute_id, pa.attribute_set_id, pa.attribute_title_id, pa.attribute_value_id, pa.free_text_value,
		       t.title, a.name, a.kind, COALESCE(v.value, '')
		FROM product_attribute_assignments pa
		JOIN attributes a ON a.id = pa.attribute_id
		JOIN attribute_titles t ON t.id = pa.attribute_title_id
		LEFT JOIN attribute_values v ON v.id = pa.attribute_value_id
		WHERE pa.product_id = $1
		ORDER BY pa.id`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		var row Row
		err := rows.Scan(&row.ID, &row.ProductID, &row.AttributeID, &row.SetID, &row.TitleID, &row.ValueID, &row.Text,
			&row.TitleName, &row.AttributeName, &row.Kind, &row.ValueText)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// CountByValue counts assignment rows holding the given attribute value.
// Guard input for value soft deletion.
func (r *repository) CountByValue(ctx context.Context, valueID int64) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM product_attribute_assignments WHERE attribute_value_id = $1`, valueID).Scan(&count)
	return count, err
}
