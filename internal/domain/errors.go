package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrAlreadyTerminal = errors.New("order already filled or cancelled")
	ErrEngineClosed    = errors.New("engine closed")
	ErrDuplicateOrder  = errors.New("order already in book")
)

// ValidationError rejects malformed input before the book is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a *ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks the fields a new order must carry.
func (o *Order) Validate() error {
	if o.InstrumentID == "" {
		return NewValidationError("instrument_id", "required")
	}
	if o.OwnerID == "" {
		return NewValidationError("owner_id", "required")
	}
	if !o.Side.Valid() {
		return NewValidationError("side", fmt.Sprintf("unknown side %q", o.Side))
	}
	if !o.Type.Valid() {
		return NewValidationError("type", fmt.Sprintf("unknown order type %q", o.Type))
	}
	if !o.Quantity.IsPositive() {
		return NewValidationError("quantity", "must be > 0")
	}
	if o.Type == Limit && !o.Price.IsPositive() {
		return NewValidationError("price", "must be > 0 for LIMIT orders")
	}
	return nil
}
