package users

import "context"

// Lister abstracts persistence for the handler; satisfied by Repository
// and by test stubs.
type Lister interface {
	ListUsers(ctx context.Context) ([]User, error)
	GetUser(ctx context.Context, id int64) (*User, error)
}

// Service exposes read-only account queries.
type Service struct {
	repo Lister
}

// NewService constructs a Service.
func NewService(repo Lister) *Service {
	return &Service{repo: repo}
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.ListUsers(ctx)
}

// GetUser returns a single account.
func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetUser(ctx, id)
}
