package utils

import (
	"context"
	"errors"
	"time"

	"github.com/datazip-inc/olake-ticketmatic/constants"
	"github.com/datazip-inc/olake-ticketmatic/utils/logger"
	"github.com/hashicorp/go-multierror"
)

// ErrExecSequential executes every function in order and accumulates the errors
func ErrExecSequential(functions ...func() error) error {
	var multErr error
	for _, one := range functions {
		if err := one(); err != nil {
			multErr = multierror.Append(multErr, err)
		}
	}

	return multErr
}

// RetryOnBackoff retries f with exponential backoff. Errors wrapping
// constants.ErrNonRetryable and context cancellation stop the loop.
func RetryOnBackoff(ctx context.Context, attempts int, sleep time.Duration, f func() error) (err error) {
	if attempts < 1 {
		attempts = 1
	}

	for cur := 0; cur < attempts; cur++ {
		if err = f(); err == nil {
			return nil
		}
		if errors.Is(err, constants.ErrNonRetryable) || ctx.Err() != nil {
			return err
		}
		if cur == attempts-1 {
			break
		}

		logger.Infof("retry attempt[%d], retrying after %.2f seconds due to err: %s", cur+1, sleep.Seconds(), err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
		sleep *= 2
	}

	return err
}
