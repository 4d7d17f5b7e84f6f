// Package guard exposes the usage-count checks callers consult before
// flipping any is_deleted flag. The checks and the subsequent soft delete
// are separate round trips; the guard documents, not closes, that window.
package guard

import (
	"context"
	"fmt"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

// CategoryUsage reports live product usage for a category.
type CategoryUsage interface {
	CountActiveProducts(ctx context.Context, id int64) (int, error)
}

// AttributeUsage reports live set memberships for an attribute.
type AttributeUsage interface {
	UsageInActiveSets(ctx context.Context, attributeID int64) (int, error)
}

// SetUsage reports live product references for an attribute set.
type SetUsage interface {
	CountActiveProductUsage(ctx context.Context, setID int64) (int, error)
}

// ValueUsage reports assignment rows holding an attribute value.
type ValueUsage interface {
	CountByValue(ctx context.Context, valueID int64) (int, error)
}

type Guard struct {
	categories  CategoryUsage
	attributes  AttributeUsage
	sets        SetUsage
	assignments ValueUsage
}

func New(categories CategoryUsage, attributes AttributeUsage, sets SetUsage, assignments ValueUsage) *Guard {
	return &Guard{categories: categories, attributes: attributes, sets: sets, assignments: assignments}
}

// CanDeleteCategory returns ErrEntityInUse when active products still
// reference the category or its immediate children.
func (g *Guard) CanDeleteCategory(ctx context.Context, id int64) error {
	count, err := g.categories.CountActiveProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("category referenced by %d active products: %w", count, shared.ErrEntityInUse)
	}
	return nil
}

// CanDeleteAttribute returns ErrEntityInUse when non-deleted attribute sets
// still hold the attribute.
func (g *Guard) CanDeleteAttribute(ctx context.Context, id int64) error {
	count, err := g.attributes.UsageInActiveSets(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("attribute held by %d active sets: %w", count, shared.ErrEntityInUse)
	}
	return nil
}

// CanDeleteAttributeSet returns ErrEntityInUse when non-deleted products
// still reference the set.
func (g *Guard) CanDeleteAttributeSet(ctx context.Context, id int64) error {
	count, err := g.sets.CountActiveProductUsage(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("attribute set referenced by %d active products: %w", count, shared.ErrEntityInUse)
	}
	return nil
}

// CanDeleteAttributeValue returns ErrEntityInUse when assignment rows still
// select the value.
func (g *Guard) CanDeleteAttributeValue(ctx context.Context, id int64) error {
	count, err := g.assignments.CountByValue(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("attribute value selected by %d assignments: %w", count, shared.ErrEntityInUse)
	}
	return nil
}
