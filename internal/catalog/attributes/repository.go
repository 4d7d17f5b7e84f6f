package attributes

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Attribute, int, error)
	Get(ctx context.Context, id int64) (Attribute, error)
	Create(ctx context.Context, attribute Attribute) (Attribute, error)
	CreateTitle(ctx context.Context, title Title) (Title, error)
	GetTitle(ctx context.Context, id int64) (Title, error)
	ListValues(ctx context.Context, attributeID int64) ([]Value, error)
	FindValue(ctx context.Context, attributeID int64, text string) (Value, error)
	InsertValue(ctx context.Context, value Value) (Value, error)
	UpdateValue(ctx context.Context, id int64, text string) error
	DeleteValues(ctx context.Context, ids []int64) error
	SetAttributeDeleted(ctx context.Context, id int64) error
	SetValueDeleted(ctx context.Context, id int64) error
	CountActiveSetMemberships(ctx context.Context, attributeID int64) (int, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Attribute, int, error) {
	query := `SELECT id, name, slug, kind, is_searchable, is_discoverable, title_id, is_deleted, created_at, updated_at FROM attributes WHERE is_deleted = FALSE`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM attributes WHERE is_deleted = FALSE`
	countArgs := []interface{}{}
	if filters.Search != "" {
		countArgs = append(countArgs, "%"+filters.Search+"%")
		countQuery += ` AND name ILIKE $1`
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
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

	var attributes []Attribute
	for rows.Next() {
		var a Attribute
		err := rows.Scan(&a.ID, &a.Name, &a.Slug, &a.Kind, &a.IsSearchable, &a.IsDiscoverable, &a.TitleID, &a.IsDeleted, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, 0, err
		}
		attributes = append(attributes, a)
	}
	return attributes, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Attribute, error) {
	query := `SELECT id, name, slug, kind, is_searchable, is_discoverable, title_id, is_deleted, created_at, updated_at FROM attributes WHERE id = $1`
	var a Attribute
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Slug, &a.Kind, &a.IsSearchable, &a.IsDiscoverable, &a.TitleID, &a.IsDeleted, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return Attribute{}, shared.MapStorageError(err)
	}
	return a, nil
}

func (r *repository) Create(ctx context.Context, attribute Attribute) (Attribute, error) {
	query := `INSERT INTO attributes (name, slug, kind, is_searchable, is_discoverable, title_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	err := r.db.QueryRow(ctx, query, attribute.Name, attribute.Slug, attribute.Kind, attribute.IsSearchable, attribute.IsDiscoverable, attribute.TitleID, now, now).Scan(&attribute.ID)
	if err != nil {
		return Attribute{}, shared.MapStorageError(err)
	}
	attribute.CreatedAt = now
	attribute.UpdatedAt = now
	return attribute, nil
}

func (r *repository) CreateTitle(ctx context.Context, title Title) (Title, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO attribute_titles (title) VALUES ($1) RETURNING id`, title.Title).Scan(&title.ID)
	if err != nil {
		return Title{}, shared.MapStorageError(err)
	}
	return title, nil
}

func (r *repository) GetTitle(ctx context.Context, id int64) (Title, error) {
	var t Title
	err := r.db.QueryRow(ctx, `SELECT id, title FROM attribute_titles WHERE id = $1`, id).Scan(&t.ID, &t.Title)
	if err != nil {
		return Title{}, shared.MapStorageError(err)
	}
	return t, nil
}

func (r *repository) ListValues(ctx context.Context, attributeID int64) ([]Value, error) {
	rows, err := r.db.Query(ctx, `SELECT id, attribute_id, value, is_deleted FROM attribute_values WHERE attribute_id = $1 AND is_deleted = FALSE ORDER BY id`, attributeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []Value
	for rows.Next() {
		var v Value
		if err := rows.Scan(&v.ID, &v.AttributeID, &v.Value, &v.IsDeleted); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (r *repository) FindValue(ctx context.Context, attributeID int64, text string) (Value, error) {
	var v Value
	err := r.db.QueryRow(ctx, `SELECT id, attribute_id, value, is_deleted FROM attribute_values WHERE attribute_id = $1 AND value = $2`, attributeID, text).Scan(&v.ID, &v.AttributeID, &v.Value, &v.IsDeleted)
	if err != nil {
		return Value{}, shared.MapStorageError(err)
	}
	return v, nil
}

func (r *repository) InsertValue(ctx context.Context, value Value) (Value, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO attribute_values (attribute_id, value) VALUES ($1, $2) RETURNING id`, value.AttributeID, value.Value).Scan(&value.ID)
	if err != nil {
		return Value{}, shared.MapStorageError(err)
	}
	return value, nil
}

func (r *repository) UpdateValue(ctx context.Context, id int64, text string) error {
	_, err := r.db.Exec(ctx, `UPDATE attribute_values SET value = $1 WHERE id = $2`, text, id)
	return shared.MapStorageError(err)
}

// DeleteValues hard-removes rows. This is the explicit removal counterpart
// of the additive value sync, not a soft delete.
func (r *repository) DeleteValues(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM attribute_values WHERE id = ANY($1)`, ids)
	return err
}

func (r *repository) SetAttributeDeleted(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE attributes SET is_deleted = TRUE, updated_at = $1 WHERE id = $2`, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetValueDeleted(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE attribute_values SET is_deleted = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// CountActiveSetMemberships counts memberships whose owning set is not
// soft-deleted. Guard input for attribute soft deletion.
func (r *repository) CountActiveSetMemberships(ctx context.Context, attributeID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM attribute_set_members m
		JOIN attribute_sets s ON s.id = m.attribute_set_id
		WHERE m.attribute_id = $1 AND s.is_deleted = FALSE`
	var count int
	err := r.db.QueryRow(ctx, query, attributeID).Scan(&count)
	return count, err
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
	default:
		return "id " + dir
	}
}
