package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the directory wraps exactly one of these.
var (
	// ErrValidation indicates malformed input (email shape, non-numeric phone).
	// HTTP Status: 400 Bad Request
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the client, or the phone for a client, does not exist.
	// HTTP Status: 404 Not Found
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates the email or phone is already registered.
	// HTTP Status: 409 Conflict
	ErrDuplicate = errors.New("already exists")

	// ErrStorage indicates a connection or database failure not otherwise classified.
	// HTTP Status: 500 Internal Server Error
	ErrStorage = errors.New("storage failure")
)

// Sentinel errors for directory operations.
var (
	ErrInvalidEmail   = fmt.Errorf("invalid email address: %w", ErrValidation)
	ErrInvalidPhone   = fmt.Errorf("phone number must be numeric: %w", ErrValidation)
	ErrInvalidName    = fmt.Errorf("name and surname must be 1-40 characters: %w", ErrValidation)
	ErrInvalidID      = fmt.Errorf("client id must be a positive integer: %w", ErrValidation)
	ErrClientNotFound = fmt.Errorf("client: %w", ErrNotFound)
	ErrPhoneNotFound  = fmt.Errorf("phone for client: %w", ErrNotFound)
	ErrEmailExists    = fmt.Errorf("email: %w", ErrDuplicate)
	ErrPhoneExists    = fmt.Errorf("phone number: %w", ErrDuplicate)
)

// Kind names reported by KindOf.
const (
	KindValidation = "validation"
	KindNotFound   = "not_found"
	KindDuplicate  = "duplicate"
	KindStorage    = "storage"
)

// KindOf returns the kind name of err, or "" for nil.
// Errors that wrap none of the kinds are reported as storage errors.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicate):
		return KindDuplicate
	default:
		return KindStorage
	}
}

// StorageError marks err as an unclassified storage failure.
func StorageError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
