package documents

import "context"

// Repository provides authorization-blind CRUD against document rows.
// Callers are responsible for access control; nothing in this interface
// filters by requester.
type Repository interface {
	Get(ctx context.Context, id int64) (*Document, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Document, error)
	Create(ctx context.Context, title, content string, ownerID int64) (*Document, error)
	Update(ctx context.Context, doc *Document) (*Document, error)
	Delete(ctx context.Context, id int64) error
}
