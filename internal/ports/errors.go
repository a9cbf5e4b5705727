package ports

import "errors"

// Standard application-level errors.
// Adapters should wrap underlying infrastructure errors with these standard errors.
var (
	// General Errors
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Lifecycle Errors
	ErrInvalidTransition = errors.New("invalid trade status transition")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
	ErrUpdateFailed = errors.New("database update failed")
	ErrDeleteFailed = errors.New("database delete failed")
)

// IsStorageError reports whether err stems from the persistence layer.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrDBConnection) ||
		errors.Is(err, ErrQueryFailed) ||
		errors.Is(err, ErrUpdateFailed) ||
		errors.Is(err, ErrDeleteFailed)
}
