package categories

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

type memoryRepo struct {
	categories map[int64]Category
	nextID     int64
	// slug index spans deleted rows as well, matching the DB constraint
	slugs map[string]int64
	// categoryID -> product ids; activeProducts marks non-deleted products
	productLinks   map[int64][]int64
	activeProducts map[int64]bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		categories:     make(map[int64]Category),
		slugs:          make(map[string]int64),
		productLinks:   make(map[int64][]int64),
		activeProducts: make(map[int64]bool),
	}
}

func (r *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	var result []Category
	for _, c := range r.categories {
		if c.IsDeleted {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filters.Search)) {
			continue
		}
		result = append(result, c)
	}
	return result, len(result), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (r *memoryRepo) GetAll(ctx context.Context) ([]Category, error) {
	var result []Category
	for id := int64(1); id <= r.nextID; id++ {
		if c, ok := r.categories[id]; ok && !c.IsDeleted {
			result = append(result, c)
		}
	}
	return result, nil
}

func (r *memoryRepo) Create(ctx context.Context, category Category) (Category, error) {
	if _, taken := r.slugs[category.Slug]; taken {
		return Category{}, shared.ErrConflict
	}
	r.nextID++
	category.ID = r.nextID
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	r.categories[category.ID] = category
	r.slugs[category.Slug] = category.ID
	return category, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, category Category) error {
	existing, ok := r.categories[id]
	if !ok {
		return shared.ErrNotFound
	}
	if owner, taken := r.slugs[category.Slug]; taken && owner != id {
		return shared.ErrConflict
	}
	delete(r.slugs, existing.Slug)
	category.ID = id
	r.categories[id] = category
	r.slugs[category.Slug] = id
	return nil
}

func (r *memoryRepo) SiblingNameExists(ctx context.Context, name string, parentID *int64, excludeID int64) (bool, error) {
	for _, c := range r.categories {
		if c.IsDeleted || c.ID == excludeID || c.Name != name {
			continue
		}
		if (c.ParentID == nil) != (parentID == nil) {
			continue
		}
		if c.ParentID == nil || *c.ParentID == *parentID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) CountActiveProducts(ctx context.Context, id int64) (int, error) {
	scope := map[int64]bool{id: true}
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == id && !c.IsDeleted {
			scope[c.ID] = true
		}
	}
	counted := map[int64]bool{}
	for categoryID, productIDs := range r.productLinks {
		if !scope[categoryID] {
			continue
		}
		for _, productID := range productIDs {
			if r.activeProducts[productID] {
				counted[productID] = true
			}
		}
	}
	return len(counted), nil
}

func (r *memoryRepo) SetDeleted(ctx context.Context, id int64) error {
	c, ok := r.categories[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.IsDeleted = true
	r.categories[id] = c
	return nil
}

func (r *memoryRepo) linkProduct(categoryID, productID int64, active bool) {
	r.productLinks[categoryID] = append(r.productLinks[categoryID], productID)
	r.activeProducts[productID] = active
}

func TestCreateRejectsDuplicateSiblingName(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	tiles, err := svc.Create(ctx, Input{Name: "Tiles", Slug: "tiles"})
	require.NoError(t, err)
	stone, err := svc.Create(ctx, Input{Name: "Stone", Slug: "stone"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Input{Name: "Glass", Slug: "glass-tiles", ParentID: &tiles.ID})
	require.NoError(t, err)

	_, err = svc.Create(ctx, Input{Name: "Glass", Slug: "glass-tiles-2", ParentID: &tiles.ID})
	require.ErrorIs(t, err, shared.ErrValidation)

	// same name under a different parent is a different sibling group
	_, err = svc.Create(ctx, Input{Name: "Glass", Slug: "glass-stone", ParentID: &stone.ID})
	require.NoError(t, err)
}

func TestCreateRejectsDuplicateRootName(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, Input{Name: "Tiles", Slug: "tiles"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Name: "Tiles", Slug: "tiles-2"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestSlugUniquenessSurvivesSoftDelete(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "Tiles", Slug: "tiles"})
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(ctx, created.ID))

	// the unique constraint does not exempt soft-deleted rows
	_, err = svc.Create(ctx, Input{Name: "Tiles Reborn", Slug: "tiles"})
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestSoftDeleteBlockedByActiveProducts(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Name: "Tiles", Slug: "tiles"})
	require.NoError(t, err)
	repo.linkProduct(created.ID, 100, true)

	err = svc.SoftDelete(ctx, created.ID)
	require.ErrorIs(t, err, shared.ErrEntityInUse)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, got.IsDeleted)

	// deleted products stop counting
	repo.activeProducts[100] = false
	require.NoError(t, svc.SoftDelete(ctx, created.ID))
}

// The usage count deliberately stops at immediate children: products hanging
// off grandchildren do not block deleting the grandparent.
func TestCountActiveProductsIgnoresGrandchildren(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	root, err := svc.Create(ctx, Input{Name: "Root", Slug: "root"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, Input{Name: "Child", Slug: "child", ParentID: &root.ID})
	require.NoError(t, err)
	grandchild, err := svc.Create(ctx, Input{Name: "Grandchild", Slug: "grandchild", ParentID: &child.ID})
	require.NoError(t, err)

	repo.linkProduct(root.ID, 1, true)
	repo.linkProduct(child.ID, 2, true)
	repo.linkProduct(grandchild.ID, 3, true)

	count, err := svc.CountActiveProducts(ctx, root.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestTreeAndForest(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	root, err := svc.Create(ctx, Input{Name: "Root", Slug: "root"})
	require.NoError(t, err)
	child, err := svc.Create(ctx, Input{Name: "Child", Slug: "child", ParentID: &root.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Name: "Grandchild", Slug: "grandchild", ParentID: &child.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Input{Name: "Other Root", Slug: "other-root"})
	require.NoError(t, err)

	tree, err := svc.Tree(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, tree.Children, 1)
	require.Equal(t, "Child", tree.Children[0].Name)
	require.Len(t, tree.Children[0].Children, 1)
	require.Equal(t, "Grandchild", tree.Children[0].Children[0].Name)

	forest, err := svc.Forest(ctx)
	require.NoError(t, err)
	require.Len(t, forest, 2)

	_, err = svc.Tree(ctx, 999)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSortOrderFallsBackToID(t *testing.T) {
	require.Equal(t, "name ASC", sortOrder("name", "asc"))
	require.Equal(t, "slug DESC", sortOrder("slug", "desc"))
	require.Equal(t, "created_at ASC", sortOrder("createdDate", ""))
	// unknown columns degrade silently instead of erroring
	require.Equal(t, "id ASC", sortOrder("evil; DROP TABLE", "asc"))
	require.Equal(t, "id DESC", sortOrder("", "desc"))
}

func TestCreateValidatesInput(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Create(context.Background(), Input{Name: "", Slug: "x"})
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.Create(context.Background(), Input{Name: "X", Slug: ""})
	require.ErrorIs(t, err, shared.ErrValidation)
}
