package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/gilshabo/tic-tac-two/internal/apperror"
)

// RetryPolicy bounds how long an operation may chase optimistic-transaction
// conflicts: at most Attempts tries, sleeping Backoff × attempt between them.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// runWithRetry drives op until it succeeds, fails terminally, or the bound
// is exhausted. Only ErrStateConflict is retried; every other error passes
// through untouched. Exhaustion is tagged with ErrTooManyConflicts so the
// caller can tell "gave up on contention" from a real failure.
func runWithRetry(ctx context.Context, policy RetryPolicy, op func() error) error {
	for attempt := 1; attempt <= policy.Attempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}

		if !errors.Is(err, apperror.ErrStateConflict) {
			return err
		}

		if attempt == policy.Attempts {
			break
		}

		select {
		case <-time.After(policy.Backoff * time.Duration(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return apperror.ErrTooManyConflicts
}
