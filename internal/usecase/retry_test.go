package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilshabo/tic-tac-two/internal/apperror"
)

func TestRunWithRetry(t *testing.T) {
	ctx := context.Background()
	policy := RetryPolicy{Attempts: 3, Backoff: time.Millisecond}

	t.Run("returns immediately on success", func(t *testing.T) {
		calls := 0

		err := runWithRetry(ctx, policy, func() error {
			calls++
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries only on conflict", func(t *testing.T) {
		calls := 0

		err := runWithRetry(ctx, policy, func() error {
			calls++
			if calls < 3 {
				return apperror.ErrStateConflict
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("terminal errors pass through untouched", func(t *testing.T) {
		calls := 0

		err := runWithRetry(ctx, policy, func() error {
			calls++
			return apperror.ErrNotYourTurn
		})

		require.ErrorIs(t, err, apperror.ErrNotYourTurn)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhaustion is tagged", func(t *testing.T) {
		calls := 0

		err := runWithRetry(ctx, policy, func() error {
			calls++
			return apperror.ErrStateConflict
		})

		require.ErrorIs(t, err, apperror.ErrTooManyConflicts)
		assert.False(t, errors.Is(err, apperror.ErrStateConflict))
		assert.Equal(t, policy.Attempts, calls)
	})

	t.Run("canceled context stops the loop between attempts", func(t *testing.T) {
		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		err := runWithRetry(canceled, policy, func() error {
			return apperror.ErrStateConflict
		})

		require.ErrorIs(t, err, context.Canceled)
	})
}
