package products

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

// Service owns the product row and its category/set joins. Product business
// flows (pricing, stock, media) live outside this core; the assignment store
// and the usage counters only need the rows and links to exist.
type Service struct {
	repo  Repository
	audit *shared.AuditLogger
}

func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, fmt.Errorf("invalid product id: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, sku string) (Product, error) {
	if strings.TrimSpace(sku) == "" {
		return Product{}, fmt.Errorf("sku is required: %w", shared.ErrValidation)
	}
	created, err := s.repo.Create(ctx, Product{SKU: sku})
	if err != nil {
		return Product{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "create", Entity: "product", EntityID: strconv.FormatInt(created.ID, 10)})
	return created, nil
}

func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid product id: %w", shared.ErrValidation)
	}
	if err := s.repo.SetDeleted(ctx, id); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "soft_delete", Entity: "product", EntityID: strconv.FormatInt(id, 10)})
	return nil
}

// LinkCategories attaches the product to categories, idempotently.
func (s *Service) LinkCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	if _, err := s.Get(ctx, productID); err != nil {
		return err
	}
	return s.repo.LinkCategories(ctx, productID, categoryIDs)
}

// LinkAttributeSets attaches the product to attribute sets, idempotently.
func (s *Service) LinkAttributeSets(ctx context.Context, productID int64, setIDs []int64) error {
	if _, err := s.Get(ctx, productID); err != nil {
		return err
	}
	return s.repo.LinkAttributeSets(ctx, productID, setIDs)
}

func (s *Service) CategoryIDs(ctx context.Context, productID int64) ([]int64, error) {
	return s.repo.CategoryIDs(ctx, productID)
}

func (s *Service) AttributeSetIDs(ctx context.Context, productID int64) ([]int64, error) {
	return s.repo.AttributeSetIDs(ctx, productID)
}
