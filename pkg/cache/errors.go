package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNetwork marks a remote backend that could not be reached. Redis
	// errors of this kind are retried.
	ErrNetwork = errors.New("network error")

	// ErrClosed is returned by a backend after Close.
	ErrClosed = errors.New("cache closed")
)

const retryAttempts = 3

// retryBaseDelay doubles after each failed attempt. Tests shorten it.
var retryBaseDelay = 100 * time.Millisecond

// RetryableError marks a failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable marks err for RetryWithBackoff. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err, or anything it wraps, was marked Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff calls fn until it succeeds, returns an error that is not
// retryable, or has failed three times. Waiting between attempts stops early
// when ctx is done.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	delay := retryBaseDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == retryAttempts {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}
