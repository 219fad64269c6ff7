package core

import (
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// Failure taxonomy. Callers branch with errors.Is; services wrap these with
// context via fmt.Errorf("...: %w", ...).
var (
	// ErrNotFound — missing item, location, or stock record. Never retried.
	ErrNotFound = errors.New("not found")
	// ErrValidation — negative quantity, empty name, missing reason. Never retried.
	ErrValidation = errors.New("validation failed")
	// ErrConflict — concurrent write detected at the record level.
	ErrConflict = errors.New("concurrent write conflict")
	// ErrTransient — backing store or network failure; retried with bounded backoff.
	ErrTransient = errors.New("transient storage failure")
	// ErrPartialFailure — some items of a bulk run failed while others succeeded.
	ErrPartialFailure = errors.New("partial failure")
)

// validationf wraps ErrValidation with a formatted message.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFoundf wraps ErrNotFound with a formatted message.
func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// classifyStorageErr maps low-level pgx failures onto the taxonomy so callers
// never need to inspect SQLSTATEs themselves. Errors that are neither
// serialization conflicts nor connection-level failures pass through as-is.
func classifyStorageErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == "40001" || pgErr.Code == "40P01":
			// serialization_failure / deadlock_detected
			return fmt.Errorf("%w: %v", ErrConflict, err)
		case len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08":
			// connection exceptions
			return fmt.Errorf("%w: %v", ErrTransient, err)
		case pgErr.Code == "57P01" || pgErr.Code == "53300":
			// admin_shutdown / too_many_connections
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	if pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return err
}

// IsTransient reports whether err should be retried.
func IsTransient(err error) bool {
	return errors.Is(classifyStorageErr(err), ErrTransient)
}
