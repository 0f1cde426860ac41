package model

import (
	"errors"
	"fmt"
	"time"
)

// Configuration and verification errors terminate the run outside the
// network phase; they are never retried.
var (
	// ErrConfig indicates a required credential or setting is missing or empty.
	ErrConfig = errors.New("missing required configuration")

	// ErrVerification indicates an upserted secret did not appear in the
	// repository's secret listing.
	ErrVerification = errors.New("secret verification failed")
)

// API errors classify failures of the hosting API by recovery strategy.
var (
	// ErrAuth indicates the token is invalid or lacks the required scopes.
	ErrAuth = errors.New("authentication failed")

	// ErrNotFound indicates the repository or workflow does not exist, or the
	// token cannot see it.
	ErrNotFound = errors.New("not found")

	// ErrWrite indicates the secret store rejected the payload, e.g. an
	// invalid secret name or an oversized value.
	ErrWrite = errors.New("secret store rejected write")

	// ErrTransient marks a retryable failure (rate limit or server error).
	// Match with errors.Is; the concrete value is a *TransientError.
	ErrTransient = errors.New("transient api error")
)

// ErrInvalidPublicKey indicates the repository public key could not be
// decoded into a valid sealed-box recipient key.
var ErrInvalidPublicKey = errors.New("invalid repository public key")

// TransientError wraps a retryable API failure and carries the server's
// retry-after hint when one was provided. RetryAfter is zero when the server
// gave no hint.
type TransientError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *TransientError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("transient api error (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("transient api error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTransient) match any TransientError.
func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}
