package documents

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docshield/docshield/internal/authz"
	"github.com/docshield/docshield/internal/platform/db"
	"github.com/docshield/docshield/internal/shared"
)

// RLSRepository is the store-enforced gateway (Mode B). It carries no
// authorization logic of its own: every statement runs inside a
// transaction whose session is bound to the requesting principal via
// db.WithPrincipalTx, and the row-level security policies installed on
// the documents table hide rows the bound principal does not own
// (unless the bound role is administrator).
//
// Because the filter lives in the store, any future query against the
// table inherits it; there is no per-handler check to forget. The one
// failure that must never happen is querying without a binding, so a
// missing principal fails closed with shared.ErrPrincipalUnbound before
// any statement executes.
type RLSRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRLSRepository constructs the store-enforced repository. The pool
// must connect as the restricted role the RLS policy binds to; the
// privileged application role bypasses the policy and must never be
// used here.
func NewRLSRepository(pool *pgxpool.Pool, logger *slog.Logger) *RLSRepository {
	return &RLSRepository{pool: pool, logger: logger}
}

// Get fetches a document visible to the requester. A row hidden by the
// policy is indistinguishable from an absent row.
func (r *RLSRepository) Get(ctx context.Context, id int64, requester authz.Principal) (*Document, error) {
	var doc *Document
	err := r.inPrincipalTx(ctx, requester, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
		var scanErr error
		doc, scanErr = scanDocument(row)
		return scanErr
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns every document the policy exposes to the requester:
// their own rows, or all rows for an administrator. No owner predicate
// appears in the query; the filtering is entirely the store's.
func (r *RLSRepository) List(ctx context.Context, requester authz.Principal) ([]Document, error) {
	var docs []Document
	err := r.inPrincipalTx(ctx, requester, func(tx pgx.Tx) error {
		rows, queryErr := tx.Query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY id`)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()
		var collectErr error
		docs, collectErr = collectDocuments(rows)
		return collectErr
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// Update mutates a visible document. An UPDATE against a hidden row
// affects zero rows, which surfaces as ErrNotFound.
func (r *RLSRepository) Update(ctx context.Context, id int64, params UpdateParams, requester authz.Principal) (*Document, error) {
	var doc *Document
	err := r.inPrincipalTx(ctx, requester, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx,
			`UPDATE documents
			 SET title = COALESCE($2, title), content = COALESCE($3, content), updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+documentColumns,
			id, params.Title, params.Content,
		)
		var scanErr error
		doc, scanErr = scanDocument(row)
		return scanErr
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Delete removes a visible document. Hidden and missing rows both
// report ErrNotFound.
func (r *RLSRepository) Delete(ctx context.Context, id int64, requester authz.Principal) error {
	return r.inPrincipalTx(ctx, requester, func(tx pgx.Tx) error {
		tag, execErr := tx.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
		if execErr != nil {
			return execErr
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func (r *RLSRepository) inPrincipalTx(ctx context.Context, requester authz.Principal, fn func(pgx.Tx) error) error {
	if requester.ID <= 0 {
		r.logger.Error("row-filtered query attempted without bound principal")
		return shared.ErrPrincipalUnbound
	}
	err := db.WithPrincipalTx(ctx, r.pool, requester.ID, string(requester.Role), fn)
	if errors.Is(err, db.ErrNoPrincipal) {
		r.logger.Error("row-filtered query attempted without bound principal")
		return shared.ErrPrincipalUnbound
	}
	return err
}
