package attributes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

type memoryRepo struct {
	attributes map[int64]Attribute
	titles     map[int64]Title
	values     map[int64]Value
	nextID     int64
	// attributeID -> count of memberships in non-deleted sets
	activeMemberships map[int64]int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		attributes:        make(map[int64]Attribute),
		titles:            make(map[int64]Title),
		values:            make(map[int64]Value),
		activeMemberships: make(map[int64]int),
	}
}

func (r *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]Attribute, int, error) {
	var result []Attribute
	for _, a := range r.attributes {
		if !a.IsDeleted {
			result = append(result, a)
		}
	}
	return result, len(result), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Attribute, error) {
	a, ok := r.attributes[id]
	if !ok {
		return Attribute{}, shared.ErrNotFound
	}
	return a, nil
}

func (r *memoryRepo) Create(ctx context.Context, attribute Attribute) (Attribute, error) {
	r.nextID++
	attribute.ID = r.nextID
	attribute.CreatedAt = time.Now()
	attribute.UpdatedAt = attribute.CreatedAt
	r.attributes[attribute.ID] = attribute
	return attribute, nil
}

func (r *memoryRepo) CreateTitle(ctx context.Context, title Title) (Title, error) {
	r.nextID++
	title.ID = r.nextID
	r.titles[title.ID] = title
	return title, nil
}

func (r *memoryRepo) GetTitle(ctx context.Context, id int64) (Title, error) {
	t, ok := r.titles[id]
	if !ok {
		return Title{}, shared.ErrNotFound
	}
	return t, nil
}

func (r *memoryRepo) ListValues(ctx context.Context, attributeID int64) ([]Value, error) {
	var result []Value
	for id := int64(1); id <= r.nextID; id++ {
		if v, ok := r.values[id]; ok && v.AttributeID == attributeID && !v.IsDeleted {
			result = append(result, v)
		}
	}
	return result, nil
}

func (r *memoryRepo) FindValue(ctx context.Context, attributeID int64, text string) (Value, error) {
	for _, v := range r.values {
		if v.AttributeID == attributeID && v.Value == text {
			return v, nil
		}
	}
	return Value{}, shared.ErrNotFound
}

func (r *memoryRepo) InsertValue(ctx context.Context, value Value) (Value, error) {
	r.nextID++
	value.ID = r.nextID
	r.values[value.ID] = value
	return value, nil
}

func (r *memoryRepo) UpdateValue(ctx context.Context, id int64, text string) error {
	v, ok := r.values[id]
	if !ok {
		return shared.ErrNotFound
	}
	v.Value = text
	r.values[id] = v
	return nil
}

func (r *memoryRepo) DeleteValues(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		delete(r.values, id)
	}
	return nil
}

func (r *memoryRepo) SetAttributeDeleted(ctx context.Context, id int64) error {
	a, ok := r.attributes[id]
	if !ok {
		return shared.ErrNotFound
	}
	a.IsDeleted = true
	r.attributes[id] = a
	return nil
}

func (r *memoryRepo) SetValueDeleted(ctx context.Context, id int64) error {
	v, ok := r.values[id]
	if !ok {
		return shared.ErrNotFound
	}
	v.IsDeleted = true
	r.values[id] = v
	return nil
}

func (r *memoryRepo) CountActiveSetMemberships(ctx context.Context, attributeID int64) (int, error) {
	return r.activeMemberships[attributeID], nil
}

func seedDropdown(t *testing.T, svc *Service) Attribute {
	t.Helper()
	title, err := svc.CreateTitle(context.Background(), TitleInput{Title: "Appearance"})
	require.NoError(t, err)
	attr, err := svc.Create(context.Background(), Input{Name: "Color", Slug: "color", Kind: KindDropdown, TitleID: title.ID})
	require.NoError(t, err)
	return attr
}

func TestSyncValuesIsIdempotent(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()
	attr := seedDropdown(t, svc)

	desired := []string{"Red", "Blue", "Green"}
	require.NoError(t, svc.SyncValues(ctx, attr.ID, desired))
	require.NoError(t, svc.SyncValues(ctx, attr.ID, desired))

	values, err := svc.Values(ctx, attr.ID)
	require.NoError(t, err)
	require.Len(t, values, 3)
}

func TestSyncValuesNeverRemoves(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()
	attr := seedDropdown(t, svc)

	require.NoError(t, svc.SyncValues(ctx, attr.ID, []string{"Red", "Blue"}))
	// "Red" absent from the desired list must survive the second sync
	require.NoError(t, svc.SyncValues(ctx, attr.ID, []string{"Blue", "Green"}))

	values, err := svc.Values(ctx, attr.ID)
	require.NoError(t, err)
	texts := make([]string, 0, len(values))
	for _, v := range values {
		texts = append(texts, v.Value)
	}
	require.ElementsMatch(t, []string{"Red", "Blue", "Green"}, texts)
}

func TestDeleteValuesHardRemoves(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()
	attr := seedDropdown(t, svc)

	require.NoError(t, svc.SyncValues(ctx, attr.ID, []string{"Red", "Blue"}))
	values, err := svc.Values(ctx, attr.ID)
	require.NoError(t, err)
	require.Len(t, values, 2)

	require.NoError(t, svc.DeleteValues(ctx, []int64{values[0].ID}))

	remaining, err := svc.Values(ctx, attr.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	_, stillStored := repo.values[values[0].ID]
	require.False(t, stillStored)
}

func TestSyncValuesRejectsFreeTextAttribute(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	title, err := svc.CreateTitle(ctx, TitleInput{Title: "Dimensions"})
	require.NoError(t, err)
	attr, err := svc.Create(ctx, Input{Name: "Width", Slug: "width", Kind: KindFreeText, TitleID: title.ID})
	require.NoError(t, err)

	err = svc.SyncValues(ctx, attr.ID, []string{"30cm"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRequiresExistingTitle(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Create(context.Background(), Input{Name: "Color", Slug: "color", Kind: KindDropdown, TitleID: 42})
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateRejectsUnknownKind(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Create(context.Background(), Input{Name: "Color", Slug: "color", Kind: "checkbox", TitleID: 1})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestSoftDeleteValueKeepsRow(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()
	attr := seedDropdown(t, svc)

	require.NoError(t, svc.SyncValues(ctx, attr.ID, []string{"Red"}))
	values, err := svc.Values(ctx, attr.ID)
	require.NoError(t, err)

	require.NoError(t, svc.SoftDeleteValue(ctx, values[0].ID))

	visible, err := svc.Values(ctx, attr.ID)
	require.NoError(t, err)
	require.Empty(t, visible)
	_, stillThere := repo.values[values[0].ID]
	require.True(t, stillThere)
}

func TestUsageInActiveSets(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()
	attr := seedDropdown(t, svc)

	repo.activeMemberships[attr.ID] = 2
	count, err := svc.UsageInActiveSets(ctx, attr.ID)
	require.NoError(t, err)
	require.Equal(t, 2, count)
}
