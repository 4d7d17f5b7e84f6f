package categories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

// Input carries an already-authorized create/update command.
type Input struct {
	Name                string `validate:"required"`
	Slug                string `validate:"required"`
	ParentID            *int64
	MaxSingleCatLimit   int `validate:"gte=0"`
	MaxMultipleCatLimit int `validate:"gte=0"`
}

type Service struct {
	repo     Repository
	audit    *shared.AuditLogger
	validate *validator.Validate
}

func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, fmt.Errorf("invalid category id: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Category, error) {
	if err := s.validateInput(input); err != nil {
		return Category{}, err
	}
	exists, err := s.repo.SiblingNameExists(ctx, input.Name, input.ParentID, 0)
	if err != nil {
		return Category{}, err
	}
	if exists {
		return Category{}, fmt.Errorf("category %q already exists under the same parent: %w", input.Name, shared.ErrValidation)
	}

	created, err := s.repo.Create(ctx, Category{
		Name:                input.Name,
		Slug:                shared.Slugify(input.Slug),
		ParentID:            input.ParentID,
		MaxSingleCatLimit:   input.MaxSingleCatLimit,
		MaxMultipleCatLimit: input.MaxMultipleCatLimit,
	})
	if err != nil {
		return Category{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "create", Entity: "category", EntityID: strconv.FormatInt(created.ID, 10)})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, input Input) error {
	if id <= 0 {
		return fmt.Errorf("invalid category id: %w", shared.ErrValidation)
	}
	if err := s.validateInput(input); err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	exists, err := s.repo.SiblingNameExists(ctx, input.Name, input.ParentID, id)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("category %q already exists under the same parent: %w", input.Name, shared.ErrValidation)
	}

	err = s.repo.Update(ctx, id, Category{
		Name:                input.Name,
		Slug:                shared.Slugify(input.Slug),
		ParentID:            input.ParentID,
		MaxSingleCatLimit:   input.MaxSingleCatLimit,
		MaxMultipleCatLimit: input.MaxMultipleCatLimit,
	})
	if err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "update", Entity: "category", EntityID: strconv.FormatInt(id, 10)})
	return nil
}

// Tree returns the category plus its full descendant subtree.
func (s *Service) Tree(ctx context.Context, rootID int64) (*Node, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	byParent := childIndex(all)
	for i := range all {
		if all[i].ID == rootID {
			return buildNode(all[i], byParent), nil
		}
	}
	return nil, fmt.Errorf("category %d: %w", rootID, shared.ErrNotFound)
}

// Forest returns every root category with its subtree.
func (s *Service) Forest(ctx context.Context) ([]*Node, error) {
	all, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	byParent := childIndex(all)
	var roots []*Node
	for i := range all {
		if all[i].ParentID == nil {
			roots = append(roots, buildNode(all[i], byParent))
		}
	}
	return roots, nil
}

// CountActiveProducts reports live product usage for the category and its
// immediate children. This is the pre-delete guard input.
func (s *Service) CountActiveProducts(ctx context.Context, id int64) (int, error) {
	if id <= 0 {
		return 0, fmt.Errorf("invalid category id: %w", shared.ErrValidation)
	}
	return s.repo.CountActiveProducts(ctx, id)
}

// SoftDelete flags the category deleted unless active products still
// reference it. The usage check and the flag update are separate round
// trips; a reference created in between is not detected.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	count, err := s.CountActiveProducts(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("category has %d active products: %w", count, shared.ErrEntityInUse)
	}
	if err := s.repo.SetDeleted(ctx, id); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "soft_delete", Entity: "category", EntityID: strconv.FormatInt(id, 10)})
	return nil
}

func childIndex(all []Category) map[int64][]Category {
	byParent := make(map[int64][]Category)
	for _, c := range all {
		if c.ParentID != nil {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}
	return byParent
}

func buildNode(c Category, byParent map[int64][]Category) *Node {
	node := &Node{Category: c}
	for _, child := range byParent[c.ID] {
		node.Children = append(node.Children, buildNode(child, byParent))
	}
	return node
}
