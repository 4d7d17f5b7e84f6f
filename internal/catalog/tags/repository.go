package tags

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

type Repository interface {
	Upsert(ctx context.Context, name string) (int64, error)
	Get(ctx context.Context, id int64) (Tag, error)
	InsertLink(ctx context.Context, productID, tagID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// Upsert resolves the tag id for a normalized name, inserting on first use.
// The ON CONFLICT clause serializes the read-then-write race: two callers
// racing on a new name both receive the same id.
func (r *repository) Upsert(ctx context.Context, name string) (int64, error) {
	var id int64
	query := `INSERT INTO tags (name) VALUES ($1) ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id`
	if err := r.db.QueryRow(ctx, query, name).Scan(&id); err != nil {
		return 0, shared.MapStorageError(err)
	}
	return id, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Tag, error) {
	var t Tag
	err := r.db.QueryRow(ctx, `SELECT id, name FROM tags WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		return Tag{}, shared.MapStorageError(err)
	}
	return t, nil
}

// InsertLink attaches the tag to the product; an existing pair is a no-op.
func (r *repository) InsertLink(ctx context.Context, productID, tagID int64) error {
	_, err := r.db.Exec(ctx, `INSERT INTO product_tags (product_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, productID, tagID)
	return err
}
