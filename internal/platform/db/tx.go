package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNoPrincipal is returned when a principal-bound transaction is
// requested without a principal identity. Callers must treat this as a
// fatal configuration fault, not as an empty result.
var ErrNoPrincipal = errors.New("platform/db: principal not bound")

// WithTx executes fn within a transaction.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("platform/db: begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit tx: %w", err)
	}

	return nil
}

// WithPrincipalTx executes fn within a transaction whose session carries
// the requesting principal's identity and role. The binding uses
// set_config(..., is_local=true), so it lasts exactly as long as the
// transaction: every checkout from the pool gets a fresh binding and a
// pooled connection can never carry one requester's identity into
// another's request. Row-level security policies on the documents table
// read these settings to filter visibility.
//
// The binding is the must-not-skip step of store-enforced authorization.
// A zero principal id fails closed before any statement executes.
func WithPrincipalTx(ctx context.Context, pool *pgxpool.Pool, principalID int64, role string, fn func(pgx.Tx) error) error {
	if principalID <= 0 {
		return ErrNoPrincipal
	}

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("platform/db: begin principal tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// SET LOCAL does not accept bind parameters; set_config does.
	if _, err := tx.Exec(ctx,
		`SELECT set_config('app.principal_id', $1, true), set_config('app.principal_role', $2, true)`,
		strconv.FormatInt(principalID, 10), role,
	); err != nil {
		return fmt.Errorf("platform/db: bind principal: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("platform/db: commit principal tx: %w", err)
	}

	return nil
}
