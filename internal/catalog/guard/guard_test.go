package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

type fixedUsage struct {
	counts map[int64]int
	err    error
}

func (f fixedUsage) count(id int64) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.counts[id], nil
}

func (f fixedUsage) CountActiveProducts(ctx context.Context, id int64) (int, error) {
	return f.count(id)
}

func (f fixedUsage) UsageInActiveSets(ctx context.Context, attributeID int64) (int, error) {
	return f.count(attributeID)
}

func (f fixedUsage) CountActiveProductUsage(ctx context.Context, setID int64) (int, error) {
	return f.count(setID)
}

func (f fixedUsage) CountByValue(ctx context.Context, valueID int64) (int, error) {
	return f.count(valueID)
}

func TestGuardBlocksEntitiesInUse(t *testing.T) {
	busy := fixedUsage{counts: map[int64]int{1: 3}}
	g := New(busy, busy, busy, busy)
	ctx := context.Background()

	require.ErrorIs(t, g.CanDeleteCategory(ctx, 1), shared.ErrEntityInUse)
	require.ErrorIs(t, g.CanDeleteAttribute(ctx, 1), shared.ErrEntityInUse)
	require.ErrorIs(t, g.CanDeleteAttributeSet(ctx, 1), shared.ErrEntityInUse)
	require.ErrorIs(t, g.CanDeleteAttributeValue(ctx, 1), shared.ErrEntityInUse)
}

func TestGuardAllowsUnusedEntities(t *testing.T) {
	idle := fixedUsage{counts: map[int64]int{}}
	g := New(idle, idle, idle, idle)
	ctx := context.Background()

	require.NoError(t, g.CanDeleteCategory(ctx, 1))
	require.NoError(t, g.CanDeleteAttribute(ctx, 1))
	require.NoError(t, g.CanDeleteAttributeSet(ctx, 1))
	require.NoError(t, g.CanDeleteAttributeValue(ctx, 1))
}

func TestGuardPropagatesCountErrors(t *testing.T) {
	boom := errors.New("pool exhausted")
	broken := fixedUsage{err: boom}
	g := New(broken, broken, broken, broken)
	ctx := context.Background()

	require.ErrorIs(t, g.CanDeleteCategory(ctx, 1), boom)
	require.ErrorIs(t, g.CanDeleteAttribute(ctx, 1), boom)
	require.ErrorIs(t, g.CanDeleteAttributeSet(ctx, 1), boom)
	require.ErrorIs(t, g.CanDeleteAttributeValue(ctx, 1), boom)
}

func TestGuardErrorNamesTheUsageCount(t *testing.T) {
	busy := fixedUsage{counts: map[int64]int{7: 2}}
	g := New(busy, busy, busy, busy)

	err := g.CanDeleteCategory(context.Background(), 7)
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 active products")
}
