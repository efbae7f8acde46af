package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"syscall"
	"time"
)

// ReadRetryDelay is the pause before the single retry of a failed read.
var ReadRetryDelay = 100 * time.Millisecond

// IsTransient reports whether err looks like a dropped connection that a
// fresh attempt from the pool may not hit again.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// WithReadRetry runs fn and, if it fails with a transient error, runs it one
// more time. Only use it for idempotent reads.
func WithReadRetry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	v, err := fn(ctx)
	if err == nil || !IsTransient(err) {
		return v, err
	}

	timer := time.NewTimer(ReadRetryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-timer.C:
	}
	return fn(ctx)
}
