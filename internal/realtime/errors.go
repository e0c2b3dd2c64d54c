package realtime

import (
	"errors"
	"fmt"
)

var (
	// ErrNotStarted is returned when a dispatch is attempted before the hub
	// has been started. Treated as fatal during bootstrap.
	ErrNotStarted = errors.New("realtime: hub not started")

	// ErrUnknownConnection is returned for operations referencing a
	// connection id that was never registered or has already been removed.
	ErrUnknownConnection = errors.New("realtime: unknown connection")

	// ErrNotAuthenticated is returned for operations that require the
	// connection to hold an active session.
	ErrNotAuthenticated = errors.New("realtime: connection not authenticated")
)

// ValidationError rejects malformed input (empty identity, empty room name).
// It is reported to the originating connection only and never mutates state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("realtime: invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
