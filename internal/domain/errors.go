package domain

import (
	"errors"
	"fmt"
)

// Error types for consistent error handling across the advisor.

// ErrInvalidInput indicates a request value the caller must correct
// (non-positive amount, malformed date).
type ErrInvalidInput struct {
	Field   string
	Message string
}

func (e *ErrInvalidInput) Error() string {
	return fmt.Sprintf("invalid input on '%s': %s", e.Field, e.Message)
}

// ErrUnknownCategory indicates a category without a reward rule. It points at
// a catalog defect, not at bad user input. Card is empty when the category is
// missing from the catalog as a whole.
type ErrUnknownCategory struct {
	Category Category
	Card     string
}

func (e *ErrUnknownCategory) Error() string {
	if e.Card != "" {
		return fmt.Sprintf("unknown category %q for card %q", e.Category, e.Card)
	}
	return fmt.Sprintf("unknown category %q", e.Category)
}

// ErrNoEligibleCards is returned when no card has a billing window covering the
// planned date. It is a normal outcome, not a fault.
var ErrNoEligibleCards = errors.New("no cards in active billing cycle")

// ErrCatalog indicates an invalid catalog definition.
type ErrCatalog struct {
	Card    string
	Message string
}

func (e *ErrCatalog) Error() string {
	if e.Card == "" {
		return fmt.Sprintf("invalid catalog: %s", e.Message)
	}
	return fmt.Sprintf("invalid catalog entry %q: %s", e.Card, e.Message)
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrValidation indicates a malformed request body.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}
