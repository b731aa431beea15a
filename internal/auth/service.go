package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/docshield/docshield/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials. Every failure
// mode (unknown user, disabled account, wrong password) collapses into
// ErrInvalidCredentials so the response cannot be used as an account
// oracle.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Register creates a new standard-role account.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.Create(ctx, username, email, string(hash))
	if err != nil {
		if errors.Is(err, shared.ErrDuplicate) {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return user, nil
}

// Lookup fetches an account by id for principal resolution.
func (s *Service) Lookup(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
