package attrsets

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-commerce/lattice-catalog/internal/catalog/attributes"
	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]AttributeSet, int, error)
	Get(ctx context.Context, id int64) (AttributeSet, error)
	Create(ctx context.Context, set AttributeSet) (AttributeSet, error)
	Update(ctx context.Context, id int64, set AttributeSet) error
	MembershipExists(ctx context.Context, attributeID, setID int64) (bool, error)
	InsertMembership(ctx context.Context, attributeID, setID int64) error
	DeleteMemberships(ctx context.Context, attributeIDs []int64, setID int64) error
	ListMembers(ctx context.Context, setID int64) ([]Member, error)
	LinkCategory(ctx context.Context, setID, categoryID int64) error
	EligibleCategoryIDs(ctx context.Context, setID int64) ([]int64, error)
	CountActiveProductUsage(ctx context.Context, setID int64) (int, error)
	SetDeleted(ctx context.Context, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]AttributeSet, int, error) {
	query := `SELECT id, name, slug, is_deleted, created_at, updated_at FROM attribute_sets WHERE is_deleted = FALSE`
	args := []interface{}{}
	argCount := 0

	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}

	countQuery := `SELECT COUNT(*) FROM attribute_sets WHERE is_deleted = FALSE`
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

	var sets []AttributeSet
	for rows.Next() {
		var s AttributeSet
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.IsDeleted, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, 0, err
		}
		sets = append(sets, s)
	}
	return sets, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (AttributeSet, error) {
	var s AttributeSet
	err := r.db.QueryRow(ctx, `SELECT id, name, slug, is_deleted, created_at, updated_at FROM attribute_sets WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Slug, &s.IsDeleted, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return AttributeSet{}, shared.MapStorageError(err)
	}
	return s, nil
}

func (r *repository) Create(ctx context.Context, set AttributeSet) (AttributeSet, error) {
	now := time.Now()
	err := r.db.QueryRow(ctx, `INSERT INTO attribute_sets (name, slug, created_at, updated_at) VALUES ($1, $2, $3, $4) RETURNING id`,
		set.Name, set.Slug, now, now).Scan(&set.ID)
	if err != nil {
		return AttributeSet{}, shared.MapStorageError(err)
	}
	set.CreatedAt = now
	set.UpdatedAt = now
	return set, nil
}

func (r *repository) Update(ctx context.Context, id int64, set AttributeSet) error {
	_, err := r.db.Exec(ctx, `UPDATE attribute_sets SET name = $1, slug = $2, updated_at = $3 WHERE id = $4`, set.Name, set.Slug, time.Now(), id)
	return shared.MapStorageError(err)
}

func (r *repository) MembershipExists(ctx context.Context, attributeID, setID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM attribute_set_members WHERE attribute_id = $1 AND attribute_set_id = $2)`, attributeID, setID).Scan(&exists)
	return exists, err
}

func (r *repository) InsertMembership(ctx context.Context, attributeID, setID int64) error {
	_, err := r.db.Exec(ctx, `INSERT INTO attribute_set_members (attribute_id, attribute_set_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, attributeID, setID)
	return err
}

func (r *repository) DeleteMemberships(ctx context.Context, attributeIDs []int64, setID int64) error {
	if len(attributeIDs) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `DELETE FROM attribute_set_members WHERE attribute_set_id = $1 AND attribute_id = ANY($2)`, setID, attributeIDs)
	return err
}

// ListMembers returns the set's non-deleted attributes joined with their
// non-deleted values, ordered by attribute then value id.
func (r *repository) ListMembers(ctx context.Context, setID int64) ([]Member, error) {
	query := `
		SELECT a.id, a.name, a.slug, a.kind, a.is_searchable, a.is_discoverable, a.title_id, a.is_deleted, a.created_at, a.updated_at,
		       v.id, v.value
		FROM attribute_set_members m
		JOIN attributes a ON a.id = m.attribute_id AND a.is_deleted = FALSE
		LEFT JOIN attribute_values v ON v.attribute_id = a.id AND v.is_deleted = FALSE
		WHERE m.attribute_set_id = $1
		ORDER BY a.id, v.id`
	rows, err := r.db.Query(ctx, query, setID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []Member
	byID := map[int64]int{}
	for rows.Next() {
		var a attributes.Attribute
		var valueID *int64
		var valueText *string
		err := rows.Scan(&a.ID, &a.Name, &a.Slug, &a.Kind, &a.IsSearchable, &a.IsDiscoverable, &a.TitleID, &a.IsDeleted, &a.CreatedAt, &a.UpdatedAt, &valueID, &valueText)
		if err != nil {
			return nil, err
		}
		idx, seen := byID[a.ID]
		if !seen {
			members = append(members, Member{Attribute: a})
			idx = len(members) - 1
			byID[a.ID] = idx
		}
		if valueID != nil {
			members[idx].Values = append(members[idx].Values, attributes.Value{ID: *valueID, AttributeID: a.ID, Value: *valueText})
		}
	}
	return members, rows.Err()
}

func (r *repository) LinkCategory(ctx context.Context, setID, categoryID int64) error {
	_, err := r.db.Exec(ctx, `INSERT INTO attribute_set_categories (attribute_set_id, category_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, setID, categoryID)
	return err
}

func (r *repository) EligibleCategoryIDs(ctx context.Context, setID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT category_id FROM attribute_set_categories WHERE attribute_set_id = $1 ORDER BY category_id`, setID)
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

// CountActiveProductUsage counts non-deleted products linked to the set.
// Guard input for set soft deletion.
func (r *repository) CountActiveProductUsage(ctx context.Context, setID int64) (int, error) {
	query := `
		SELECT COUNT(DISTINCT p.id)
		FROM products p
		JOIN product_attribute_sets ps ON ps.product_id = p.id
		WHERE ps.attribute_set_id = $1 AND p.is_deleted = FALSE`
	var count int
	err := r.db.QueryRow(ctx, query, setID).Scan(&count)
	return count, err
}

func (r *repository) SetDeleted(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE attribute_sets SET is_deleted = TRUE, updated_at = $1 WHERE id = $2`, time.Now(), id)
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
	default:
		return "id " + dir
	}
}
