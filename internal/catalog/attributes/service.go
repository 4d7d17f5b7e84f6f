package attributes

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

// Input carries an already-authorized attribute create command.
type Input struct {
	Name           string `validate:"required"`
	Slug           string `validate:"required"`
	Kind           Kind   `validate:"required,oneof=dropdown free_text"`
	IsSearchable   bool
	IsDiscoverable bool
	TitleID        int64 `validate:"gt=0"`
}

// TitleInput carries an attribute-title create command.
type TitleInput struct {
	Title string `validate:"required"`
}

type Service struct {
	repo     Repository
	audit    *shared.AuditLogger
	validate *validator.Validate
}

func NewService(repo Repository, audit *shared.AuditLogger) *Service {
	return &Service{repo: repo, audit: audit, validate: validator.New()}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Attribute, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Attribute, error) {
	if id <= 0 {
		return Attribute{}, fmt.Errorf("invalid attribute id: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (Attribute, error) {
	if err := s.validate.Struct(input); err != nil {
		return Attribute{}, fmt.Errorf("%v: %w", err, shared.ErrValidation)
	}
	if _, err := s.repo.GetTitle(ctx, input.TitleID); err != nil {
		return Attribute{}, fmt.Errorf("attribute title %d: %w", input.TitleID, err)
	}

	created, err := s.repo.Create(ctx, Attribute{
		Name:           input.Name,
		Slug:           shared.Slugify(input.Slug),
		Kind:           input.Kind,
		IsSearchable:   input.IsSearchable,
		IsDiscoverable: input.IsDiscoverable,
		TitleID:        input.TitleID,
	})
	if err != nil {
		return Attribute{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "create", Entity: "attribute", EntityID: strconv.FormatInt(created.ID, 10)})
	return created, nil
}

func (s *Service) CreateTitle(ctx context.Context, input TitleInput) (Title, error) {
	if err := s.validate.Struct(input); err != nil {
		return Title{}, fmt.Errorf("%v: %w", err, shared.ErrValidation)
	}
	created, err := s.repo.CreateTitle(ctx, Title{Title: input.Title})
	if err != nil {
		return Title{}, err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "create", Entity: "attribute_title", EntityID: strconv.FormatInt(created.ID, 10)})
	return created, nil
}

// Values returns all non-deleted values of the attribute.
func (s *Service) Values(ctx context.Context, attributeID int64) ([]Value, error) {
	if attributeID <= 0 {
		return nil, fmt.Errorf("invalid attribute id: %w", shared.ErrValidation)
	}
	return s.repo.ListValues(ctx, attributeID)
}

// SyncValues reconciles the attribute's enumerated values additively: a
// desired text that already exists is updated in place, a missing one is
// inserted. Stored values absent from desired are left alone; removal goes
// through DeleteValues only. The loop is not atomic; rows applied before a
// failure stay applied.
func (s *Service) SyncValues(ctx context.Context, attributeID int64, desired []string) error {
	attr, err := s.Get(ctx, attributeID)
	if err != nil {
		return err
	}
	if attr.Kind != KindDropdown {
		return fmt.Errorf("attribute %d is not a dropdown: %w", attributeID, shared.ErrValidation)
	}
	for _, text := range desired {
		existing, err := s.repo.FindValue(ctx, attributeID, text)
		switch {
		case err == nil:
			if err := s.repo.UpdateValue(ctx, existing.ID, text); err != nil {
				return err
			}
		case errors.Is(err, shared.ErrNotFound):
			if _, err := s.repo.InsertValue(ctx, Value{AttributeID: attributeID, Value: text}); err != nil {
				return err
			}
		default:
			return err
		}
	}
	return nil
}

// DeleteValues hard-removes the given value rows. Callers compute the id
// list explicitly; sync never removes on their behalf.
func (s *Service) DeleteValues(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.repo.DeleteValues(ctx, ids); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "delete_values", Entity: "attribute_value", EntityID: strconv.Itoa(len(ids)), Meta: map[string]any{"ids": ids}})
	return nil
}

// SoftDeleteAttribute flags the attribute deleted. Usage gating is the
// caller's responsibility via the safe-delete guard.
func (s *Service) SoftDeleteAttribute(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid attribute id: %w", shared.ErrValidation)
	}
	if err := s.repo.SetAttributeDeleted(ctx, id); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "soft_delete", Entity: "attribute", EntityID: strconv.FormatInt(id, 10)})
	return nil
}

func (s *Service) SoftDeleteValue(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("invalid attribute value id: %w", shared.ErrValidation)
	}
	if err := s.repo.SetValueDeleted(ctx, id); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Action: "soft_delete", Entity: "attribute_value", EntityID: strconv.FormatInt(id, 10)})
	return nil
}

// UsageInActiveSets reports how many non-deleted attribute sets still hold
// the attribute. Guard input for attribute soft deletion.
func (s *Service) UsageInActiveSets(ctx context.Context, attributeID int64) (int, error) {
	if attributeID <= 0 {
		return 0, fmt.Errorf("invalid attribute id: %w", shared.ErrValidation)
	}
	return s.repo.CountActiveSetMemberships(ctx, attributeID)
}
