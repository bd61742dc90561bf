// Package security sanitizes and validates user-supplied market text before
// it reaches the ledger.
package security

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// MarketInput is the free-text portion of a market creation request.
type MarketInput struct {
	Question    string `validate:"required,min=1,max=160"`
	Description string `validate:"max=2000"`
	MetadataRef string `validate:"omitempty,max=256"`
}

// Service strips markup from market text and enforces length limits.
type Service struct {
	policy   *bluemonday.Policy
	validate *validator.Validate
}

// NewService builds a service with the strict policy: no HTML survives.
func NewService() *Service {
	return &Service{
		policy:   bluemonday.StrictPolicy(),
		validate: validator.New(),
	}
}

// ValidateAndSanitizeMarketInput strips markup, trims whitespace and checks
// length limits, returning the cleaned input.
func (s *Service) ValidateAndSanitizeMarketInput(in MarketInput) (MarketInput, error) {
	out := MarketInput{
		Question:    strings.TrimSpace(s.policy.Sanitize(in.Question)),
		Description: strings.TrimSpace(s.policy.Sanitize(in.Description)),
		MetadataRef: strings.TrimSpace(in.MetadataRef),
	}
	if err := s.validate.Struct(out); err != nil {
		return MarketInput{}, fmt.Errorf("invalid market input: %w", err)
	}
	return out, nil
}
