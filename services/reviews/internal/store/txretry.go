package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// maxTxAttempts bounds how often a serializable transaction is retried
// before the conflict is surfaced to the caller.
const maxTxAttempts = 5

// retryDelay backs off between attempts: 20ms, 40ms, 80ms ... capped so an
// interactive submission never stalls for long.
func retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := time.Duration(1<<(attempt-1)) * 20 * time.Millisecond
	if d > 250*time.Millisecond {
		d = 250 * time.Millisecond
	}
	return d
}

// isSerializationFailure reports whether err is a conflict the transaction
// executor should retry: SQLSTATE 40001 (serialization_failure) or
// 40P01 (deadlock_detected).
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

// withRetry runs attempt until it succeeds, fails with a non-retryable
// error, or the retry budget is spent. Each retry observes the latest
// committed state because attempt re-reads inside a fresh transaction.
// Non-retryable errors leave through wrapDBErr so a dropped connection
// mid-transaction surfaces as ErrUnavailable, not a raw driver error.
func withRetry(ctx context.Context, attempt func() error) error {
	var lastErr error
	for i := 1; i <= maxTxAttempts; i++ {
		err := attempt()
		if err == nil {
			return nil
		}
		if !isSerializationFailure(err) {
			return wrapDBErr(err)
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay(i)):
		}
	}
	return fmt.Errorf("%w: %v", ErrConflict, lastErr)
}

// txBeginner is the slice of *pgxpool.Pool runSerializable needs.
type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

var _ txBeginner = (*pgxpool.Pool)(nil)

// runSerializable executes fn inside a SERIALIZABLE transaction with
// automatic bounded retry on serialization conflicts. fn must be a pure
// read-compute-write function: it is re-run from the top on every retry.
func runSerializable(ctx context.Context, db txBeginner, fn func(pgx.Tx) error) error {
	return withRetry(ctx, func() error {
		tx, err := db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
		if err != nil {
			return wrapDBErr(err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
}
