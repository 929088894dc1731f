// Package repository is the PostgreSQL implementation of ports.Store.
//
// A unit of work is one pgx transaction at READ COMMITTED. Quotes and leads
// are row-locked when loaded inside a unit of work; invoice transitions are
// serialized by a conditional UPDATE on the stored status.
package repository

import (
	"context"
	"errors"
	"fmt"

	"agency_crm_backend/internal/ports"
	"agency_crm_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// Store implements ports.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var (
	_ ports.Store      = (*Store)(nil)
	_ ports.Repository = (*txRepo)(nil)
)

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// WithinTx implements ports.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, &txRepo{q: tx}); err != nil {
		return mapError("unit of work", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}

// txRepo is the transaction-scoped ports.Repository.
type txRepo struct {
	q querier
}

// PostgreSQL error codes that mean a concurrent writer won.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
)

// mapError turns driver errors into apperr kinds. Errors that already carry
// a kind pass through unchanged.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return apperr.Wrap(apperr.KindConcurrencyConflict, "concurrent update, retry the request", err).WithOp(op)
		case codeUniqueViolation:
			return apperr.Wrap(apperr.KindConflict, "duplicate record", err).WithOp(op).
				WithDetails(map[string]string{"constraint": pgErr.ConstraintName})
		case codeForeignKeyViolation:
			return apperr.Wrap(apperr.KindValidation, "referenced record does not exist", err).WithOp(op)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func notFoundOr(err error, message, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(message)
	}
	return mapError(op, err)
}
