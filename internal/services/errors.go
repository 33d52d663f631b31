package services

import (
	"errors"
	"fmt"
)

// Sentinel outcomes returned by the service layer. The HTTP layer is the only
// place these are mapped to status codes.
var (
	// ErrNotFound covers both a genuinely absent record and a record owned
	// by a different user; the two must stay indistinguishable.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials covers unknown login and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrStoreUnavailable wraps store connectivity failures so they are
	// never mistaken for not-found or validation outcomes.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrStoreUnavailable, err)
}
