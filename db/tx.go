package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxRetries = 3
	retryDelay = 10 * time.Millisecond
)

// ErrNotConnected is returned when a query runs before Connect.
var ErrNotConnected = errors.New("database pool not initialized")

// isRetryableError checks if an error is safe to retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// connection errors before any data was sent
	if pgconn.SafeToRetry(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001": // serialization_failure
			return true
		case "40P01": // deadlock_detected
			return true
		case "08000", "08003", "08006": // connection errors
			return true
		}
	}

	return false
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// withRetry runs op until it succeeds, fails with a non-retryable error or
// runs out of attempts. The delay doubles after every failed attempt.
func withRetry[T any](ctx context.Context, what string, op func() (T, error)) (T, error) {
	var zero T
	if defaultPool == nil {
		return zero, ErrNotConnected
	}

	var lastErr error
	for attempt := range maxRetries {
		if attempt > 0 {
			delay := retryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}

		result, err := op()
		if err == nil {
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			return zero, err
		}
	}

	return zero, fmt.Errorf("%s failed after %d attempts: %w", what, maxRetries, lastErr)
}

// Query runs fn with a Queries instance.
// Automatically retries on transient errors.
func Query(ctx context.Context, fn func(*Queries) error) error {
	_, err := withRetry(ctx, "query", func() (struct{}, error) {
		return struct{}{}, fn(New(defaultPool))
	})
	return err
}

// Query1 runs fn and returns a single result.
// Automatically retries on transient errors.
func Query1[T any](ctx context.Context, fn func(*Queries) (T, error)) (T, error) {
	return withRetry(ctx, "query", func() (T, error) {
		return fn(New(defaultPool))
	})
}

// Tx runs fn within a transaction.
// Automatically retries on transient errors.
func Tx(ctx context.Context, fn func(*Queries) error) error {
	_, err := Tx1(ctx, func(q *Queries) (struct{}, error) {
		return struct{}{}, fn(q)
	})
	return err
}

// Tx1 runs fn within a transaction and returns a result.
// Automatically retries on transient errors.
func Tx1[T any](ctx context.Context, fn func(*Queries) (T, error)) (T, error) {
	return withRetry(ctx, "transaction", func() (T, error) {
		var zero T
		conn, err := defaultPool.Acquire(ctx)
		if err != nil {
			return zero, err
		}
		defer conn.Release()
		return executeTx(ctx, conn, fn)
	})
}

func executeTx[T any](ctx context.Context, conn *pgxpool.Conn, fn func(*Queries) (T, error)) (T, error) {
	var zero T

	tx, err := conn.Begin(ctx)
	if err != nil {
		return zero, err
	}
	defer tx.Rollback(ctx)

	result, err := fn(New(tx))
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, err
	}

	return result, nil
}
