package documents

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docshield/docshield/internal/shared"
)

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const documentColumns = `id, title, content, owner_id, created_at, updated_at`

// Get fetches a document by id without any ownership filtering.
func (r *PGRepository) Get(ctx context.Context, id int64) (*Document, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	return scanDocument(row)
}

// ListByOwner returns all documents owned by ownerID.
func (r *PGRepository) ListByOwner(ctx context.Context, ownerID int64) ([]Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE owner_id = $1 ORDER BY id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// Create inserts a new document owned by ownerID.
func (r *PGRepository) Create(ctx context.Context, title, content string, ownerID int64) (*Document, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO documents (title, content, owner_id) VALUES ($1, $2, $3) RETURNING `+documentColumns,
		title, content, ownerID,
	)
	return scanDocument(row)
}

// Update persists title and content changes.
func (r *PGRepository) Update(ctx context.Context, doc *Document) (*Document, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE documents SET title = $2, content = $3, updated_at = NOW() WHERE id = $1 RETURNING `+documentColumns,
		doc.ID, doc.Title, doc.Content,
	)
	return scanDocument(row)
}

// Delete removes a document row.
func (r *PGRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanDocument(row pgx.Row) (*Document, error) {
	var doc Document
	err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.OwnerID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func collectDocuments(rows pgx.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.OwnerID, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

var _ Repository = (*PGRepository)(nil)
