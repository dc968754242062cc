package services

import (
	"context"
	"errors"
	"time"

	"gymdesk-backend/models"

	"github.com/cenkalti/backoff/v5"
)

const maxAttempts = 5

// withRetry reruns op while it loses an optimistic-concurrency race.
// Any other error stops immediately.
func withRetry(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 100 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		switch {
		case err == nil:
			return struct{}{}, nil
		case errors.Is(err, models.ErrConflict):
			return struct{}{}, err
		default:
			return struct{}{}, backoff.Permanent(err)
		}
	}, backoff.WithBackOff(b), backoff.WithMaxTries(maxAttempts))
	return err
}
