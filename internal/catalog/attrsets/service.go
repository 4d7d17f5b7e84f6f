package attrsets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

// Input carries an already-authorized set create/update command.
type Input struct {
	Name string `validate:"required"`
	Slug string `validate:"required"`
}

type Service struct {
	repo     Repository
	audit    *shared.AuditLogger
	validate *validator.Validate
}

func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]AttributeSet, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (AttributeSet, error) {
	if id <= 0 {
		return AttributeSet{}, fmt.Errorf("invalid attribute set id: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (AttributeSet, error) {
	if err := s.validate.Struct(input); err != nil {
		return AttributeSet{}, fmt.Errorf("%v: %w", err, shared.ErrValidation)
	}
	created, err := s.repo.Create(ctx, AttributeSet{Name: input.Name, Slug: shared.Slugify(input.Slug)})
	if err != nil {
		return AttributeSet{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "create", Entity: "attribute_set", EntityID: strconv.FormatInt(created.ID, 10)})
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, input Input) error {
	if id <= 0 {
		return fmt.Errorf("invalid attribute set id: %w", shared.ErrValidation)
	}
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%v: %w", err, shared.ErrValidation)
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, AttributeSet{Name: input.Name, Slug: shared.Slugify(input.Slug)}); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "update", Entity: "attribute_set", EntityID: strconv.FormatInt(id, 10)})
	return nil
}

// SyncMembership inserts missing (attribute, set) memberships and never
// removes extras; removal is DeleteMembership only. The loop is not atomic.
func (s *Service) SyncMembership(ctx context.Context, setID int64, attributeIDs []int64) error {
	if _, err := s.Get(ctx, setID); err != nil {
		return err
	}
	for _, attributeID := range attributeIDs {
		exists, err := s.repo.MembershipExists(ctx, attributeID, setID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := s.repo.InsertMembership(ctx, attributeID, setID); err != nil {
			return err
		}
	}
	return nil
}

// DeleteMembership removes the given attributes from the set. The id list is
// the caller's explicit decision, never derived from a sync diff.
func (s *Service) DeleteMembership(ctx context.Context, attributeIDs []int64, setID int64) error {
	if setID <= 0 {
		return fmt.Errorf("invalid attribute set id: %w", shared.ErrValidation)
	}
	return s.repo.DeleteMemberships(ctx, attributeIDs, setID)
}

// Members returns the set's non-deleted attributes with their values and the
// comma-joined attribute id string bulk-edit forms expect.
func (s *Service) Members(ctx context.Context, setID int64) (Members, error) {
	if _, err := s.Get(ctx, setID); err != nil {
		return Members{}, err
	}
	items, err := s.repo.ListMembers(ctx, setID)
	if err != nil {
		return Members{}, err
	}
	ids := make([]string, 0, len(items))
	for _, m := range items {
		ids = append(ids, strconv.FormatInt(m.Attribute.ID, 10))
	}
	return Members{Items: items, IDList: strings.Join(ids, ",")}, nil
}

// LinkCategories marks the set eligible for the given categories,
// idempotently.
func (s *Service) LinkCategories(ctx context.Context, setID int64, categoryIDs []int64) error {
	if _, err := s.Get(ctx, setID); err != nil {
		return err
	}
	for _, categoryID := range categoryIDs {
		if err := s.repo.LinkCategory(ctx, setID, categoryID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) EligibleCategories(ctx context.Context, setID int64) ([]int64, error) {
	if setID <= 0 {
		return nil, fmt.Errorf("invalid attribute set id: %w", shared.ErrValidation)
	}
	return s.repo.EligibleCategoryIDs(ctx, setID)
}

// CountActiveProductUsage reports live product references to the set.
// Guard input consulted by callers before SoftDelete.
func (s *Service) CountActiveProductUsage(ctx context.Context, setID int64) (int, error) {
	if setID <= 0 {
		return 0, fmt.Errorf("invalid attribute set id: %w", shared.ErrValidation)
	}
	return s.repo.CountActiveProductUsage(ctx, setID)
}

// SoftDelete flags the set deleted. It does not itself consult the usage
// count; callers check CountActiveProductUsage first.
func (s *Service) SoftDelete(ctx context.Context, setID int64) error {
	if setID <= 0 {
		return fmt.Errorf("invalid attribute set id: %w", shared.ErrValidation)
	}
	if err := s.repo.SetDeleted(ctx, setID); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "soft_delete", Entity: "attribute_set", EntityID: strconv.FormatInt(setID, 10)})
	return nil
}
