package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrTransientIO       = errors.New("transient io error")
	ErrConfiguration     = errors.New("configuration error")
	ErrItemNotFound      = errors.New("item not found")
	ErrItemExists        = errors.New("item already exists")
	ErrVersionConflict   = errors.New("item version conflict")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ValidationError describes a malformed item record or request.
type ValidationError struct {
	ItemID string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("item %s: invalid %s: %s", e.ItemID, e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
