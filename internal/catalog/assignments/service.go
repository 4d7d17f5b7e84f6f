package assignments

import (
	"context"
	"errors"
	"fmt"

	"github.com/lattice-commerce/lattice-catalog/internal/catalog/attributes"
	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

// AttributeResolver supplies attribute definitions for kind and title
// checks. Satisfied by attributes.Service.
type AttributeResolver interface {
	Get(ctx context.Context, id int64) (attributes.Attribute, error)
}

type Service struct {
	repo  Repository
	attrs AttributeResolver
}

func NewService(repo Repository, attrs AttributeResolver) *Service {
	return &Service{repo: repo, attrs: attrs}
}

// Assign is the insert-only path used at product creation. Dropdown inputs
// produce one row per selected value id; free-text inputs produce exactly
// one row. The batch is not atomic; earlier inputs stay applied when a
// later one fails.
func (s *Service) Assign(ctx context.Context, productID, setID int64, inputs []Input) error {
	for _, input := range inputs {
		attr, err := s.attrs.Get(ctx, input.AttributeID)
		if err != nil {
			return err
		}
		rows, err := buildRows(productID, setID, attr, input)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := s.repo.Insert(ctx, row); err != nil {
				return err
			}
		}
	}
	return nil
}

// Update applies a diff asymmetric by kind. Dropdown: desired value ids
// missing a row are inserted, present ones are left alone, and absent ones
// are never removed (append-only). Free text: the single existing row is
// updated in place, or inserted when absent. Removal only ever happens
// through Remove.
func (s *Service) Update(ctx context.Context, productID, setID int64, inputs []Input) error {
	for _, input := range inputs {
		attr, err := s.attrs.Get(ctx, input.AttributeID)
		if err != nil {
			return err
		}
		switch attr.Kind {
		case attributes.KindDropdown:
			for _, valueID := range input.ValueIDs {
				exists, err := s.repo.DropdownRowExists(ctx, productID, attr.ID, valueID)
				if err != nil {
					return err
				}
				if exists {
					continue
				}
				v := valueID
				if _, err := s.repo.Insert(ctx, Assignment{ProductID: productID, AttributeID: attr.ID, SetID: setID, TitleID: input.TitleID, ValueID: &v}); err != nil {
					return err
				}
			}
		case attributes.KindFreeText:
			existing, err := s.repo.FindFreeTextRow(ctx, productID, attr.ID)
			switch {
			case err == nil:
				if err := s.repo.UpdateFreeText(ctx, existing.ID, input.Text); err != nil {
					return err
				}
			case errors.Is(err, shared.ErrNotFound):
				text := input.Text
				if _, err := s.repo.Insert(ctx, Assignment{ProductID: productID, AttributeID: attr.ID, SetID: setID, TitleID: input.TitleID, Text: &text}); err != nil {
					return err
				}
			default:
				return err
			}
		default:
			return fmt.Errorf("attribute %d has unknown kind %q: %w", attr.ID, attr.Kind, shared.ErrValidation)
		}
	}
	return nil
}

// Remove is the explicit deletion counterpart: dropdown rows by value id,
// or the free-text row by exact content.
func (s *Service) Remove(ctx context.Context, productID, attributeID int64, selector Selector) error {
	attr, err := s.attrs.Get(ctx, attributeID)
	if err != nil {
		return err
	}
	switch attr.Kind {
	case attributes.KindDropdown:
		if len(selector.ValueIDs) == 0 {
			return fmt.Errorf("dropdown removal requires value ids: %w", shared.ErrValidation)
		}
		return s.repo.DeleteDropdownRows(ctx, productID, attributeID, selector.ValueIDs)
	case attributes.KindFreeText:
		if selector.Text == "" {
			return fmt.Errorf("free-text removal requires the exact text: %w", shared.ErrValidation)
		}
		return s.repo.DeleteFreeTextRow(ctx, productID, attributeID, selector.Text)
	default:
		return fmt.Errorf("attribute %d has unknown kind %q: %w", attributeID, attr.Kind, shared.ErrValidation)
	}
}

// ValidateTitleConsistency reports whether every input's title id matches
// its attribute's stored title id. A single mismatch invalidates the whole
// batch; callers reject the write wholesale.
func (s *Service) ValidateTitleConsistency(ctx context.Context, inputs []Input) (bool, error) {
	for _, input := range inputs {
		attr, err := s.attrs.Get(ctx, input.AttributeID)
		if err != nil {
			return false, err
		}
		if attr.TitleID != input.TitleID {
			return false, nil
		}
	}
	return true, nil
}

// ListForProduct reshapes the product's flat rows into the nested display
// document: title → attribute name → scalar (free text) or ordered list
// (dropdown).
func (s *Service) ListForProduct(ctx context.Context, productID int64) (Document, error) {
	rows, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	doc := make(Document)
	for _, row := range rows {
		section, ok := doc[row.TitleName]
		if !ok {
			section = make(map[string]any)
			doc[row.TitleName] = section
		}
		switch row.Kind {
		case attributes.KindFreeText:
			if row.Text != nil {
				section[row.AttributeName] = *row.Text
			}
		case attributes.KindDropdown:
			list, _ := section[row.AttributeName].([]string)
			section[row.AttributeName] = append(list, row.ValueText)
		}
	}
	return doc, nil
}

// CountByValue reports assignment rows holding the attribute value. Guard
// input for value soft deletion.
func (s *Service) CountByValue(ctx context.Context, valueID int64) (int, error) {
	if valueID <= 0 {
		return 0, fmt.Errorf("invalid attribute value id: %w", shared.ErrValidation)
	}
	return s.repo.CountByValue(ctx, valueID)
}

// buildRows expands one input into assignment rows and rejects writes whose
// value representation disagrees with the attribute kind.
func buildRows(productID, setID int64, attr attributes.Attribute, input Input) ([]Assignment, error) {
	switch attr.Kind {
	case attributes.KindDropdown:
		if len(input.ValueIDs) == 0 {
			return nil, fmt.Errorf("dropdown attribute %d requires at least one value id: %w", attr.ID, shared.ErrValidation)
		}
		if input.Text != "" {
			return nil, fmt.Errorf("dropdown attribute %d cannot carry free text: %w", attr.ID, shared.ErrValidation)
		}
		rows := make([]Assignment, 0, len(input.ValueIDs))
		for _, valueID := range input.ValueIDs {
			v := valueID
			row := Assignment{ProductID: productID, AttributeID: attr.ID, SetID: setID, TitleID: input.TitleID, ValueID: &v}
			if !row.variantConsistent(attr.Kind) {
				return nil, fmt.Errorf("attribute %d: inconsistent value variant: %w", attr.ID, shared.ErrValidation)
			}
			rows = append(rows, row)
		}
		return rows, nil
	case attributes.KindFreeText:
		if len(input.ValueIDs) > 0 {
			return nil, fmt.Errorf("free-text attribute %d cannot carry value ids: %w", attr.ID, shared.ErrValidation)
		}
		text := input.Text
		row := Assignment{ProductID: productID, AttributeID: attr.ID, SetID: setID, TitleID: input.TitleID, Text: &text}
		if !row.variantConsistent(attr.Kind) {
			return nil, fmt.Errorf("attribute %d: inconsistent value variant: %w", attr.ID, shared.ErrValidation)
		}
		return []Assignment{row}, nil
	default:
		return nil, fmt.Errorf("attribute %d has unknown kind %q: %w", attr.ID, attr.Kind, shared.ErrValidation)
	}
}
