package categories

import (
	"fmt"

	"github.com/lattice-commerce/lattice-catalog/internal/shared"
)

func (s *Service) validateInput(input Input) error {
	if err := s.validate.Struct(input); err != nil {
		return fmt.Errorf("%v: %w", err, shared.ErrValidation)
	}
	return nil
}
