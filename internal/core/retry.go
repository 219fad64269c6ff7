package core

import (
	"context"
	"fmt"
	"time"
)

const (
	retryAttempts = 3
	retryBackoff  = 50 * time.Millisecond
)

// withRetry runs fn, retrying only transient storage failures with doubling
// backoff. NotFound, Validation, and Conflict surface immediately. Exhausted
// retries surface as ErrTransient.
func withRetry(ctx context.Context, fn func(context.Context) error) error {
	backoff := retryBackoff
	var err error
	for attempt := 1; attempt <= retryAttempts; attempt++ {
		err = fn(ctx)
		if err == nil || !IsTransient(err) {
			return err
		}
		if attempt == retryAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("%w: %d attempts exhausted: %v", ErrTransient, retryAttempts, err)
}
