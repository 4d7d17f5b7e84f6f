package categories

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id int64) (Category, error)
	GetAll(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, id int64, category Category) error
	SiblingNameExists(ctx context.Context, name string, parentID *int64, excludeID int64) (bool, error)
	CountActiveProducts(ctx context.Context, id int64) (int, error)
	SetDeleted(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	query := `SELECT id, name, slug, parent_id, max_single_cat_limit, max_multiple_cat_limit, is_deleted, created_at, updated_at FROM categories WHERE is_deleted = FALSE`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM categories WHERE is_deleted = FALSE`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countArgs = append(countArgs, "%"+filters.Search+"%")
		countQuery += ` AND name ILIKE $1`
	}

	var total int
	err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset())
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.MaxSingleCatLimit, &c.MaxMultipleCatLimit, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		categories = append(categories, c)
	}
	return categories, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	query := `SELECT id, name, slug, parent_id, max_single_cat_limit, max_multiple_cat_limit, is_deleted, created_at, updated_at FROM categories WHERE id = $1`
	var c Category
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.MaxSingleCatLimit, &c.MaxMultipleCatLimit, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return Category{}, shared.MapStorageError(err)
	}
	return c, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Category, error) {
	query := `SELECT id, name, slug, parent_id, max_single_cat_limit, max_multiple_cat_limit, is_deleted, created_at, updated_at FROM categories WHERE is_deleted = FALSE ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.MaxSingleCatLimit, &c.MaxMultipleCatLimit, &c.IsDeleted, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *repository) Create(ctx context.Context, category Category) (Category, error) {
	query := `INSERT INTO categories (name, slug, parent_id, max_single_cat_limit, max_multiple_cat_limit, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, category.Name, category.Slug, category.ParentID, category.MaxSingleCatLimit, category.MaxMultipleCatLimit, now, now).Scan(&category.ID)
	if err != nil {
		return Category{}, shared.MapStorageError(err)
	}
	category.CreatedAt = now
	category.UpdatedAt = now
	return category, nil
}

func (r *repository) Update(ctx context.Context, id int64, category Category) error {
	query := `UPDATE categories SET name = $1, slug = $2, parent_id = $3, max_single_cat_limit = $4, max_multiple_cat_limit = $5, updated_at = $6 WHERE id = $7`
	_, err := r.db.Exec(ctx, query, category.Name, category.Slug, category.ParentID, category.MaxSingleCatLimit, category.MaxMultipleCatLimit, time.Now(), id)
	return shared.MapStorageError(err)
}

// SiblingNameExists checks the (name, parent_id) pair among non-deleted rows.
// IS NOT DISTINCT FROM makes NULL parents (roots) compare as siblings.
func (r *repository) SiblingNameExists(ctx context.Context, name string, parentID *int64, excludeID int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1 AND parent_id IS NOT DISTINCT FROM $2 AND id <> $3 AND is_deleted = FALSE)`
	var exists bool
	err := r.db.QueryRow(ctx, query, name, parentID, excludeID).Scan(&exists)
	return exists, err
}

// CountActiveProducts counts non-deleted products linked to the category or
// to its immediate children. Deeper descendants are out of scope.
func (r *repository) CountActiveProducts(ctx context.Context, id int64) (int, error) {
	query := `
		SELECT COUNT(DISTINCT p.id)
		FROM products p
		JOIN product_categories pc ON pc.product_id = p.id
		WHERE p.is_deleted = FALSE
		  AND (pc.category_id = $1 OR pc.category_id IN (SELECT id FROM categories WHERE parent_id = $1 AND is_deleted = FALSE))`
	var count int
	err := r.db.QueryRow(ctx, query, id).Scan(&count)
	return count, err
}

func (r *repository) SetDeleted(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE categories SET is_deleted = TRUE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "name":
		return "name " + dir
	case "slug":
		return "slug " + dir
	case "createdDate", "created_at":
		return "created_at " + dir
	case "id":
		return "id " + dir
	default:
		return "id " + dir
	}
}
