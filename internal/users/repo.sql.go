package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/docshield/docshield/internal/authz"
	"github.com/docshield/docshield/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all accounts. The directory is public by design so
// workshop attendees can pick ids to probe.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, username, email, role, is_active, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []User
	for rows.Next() {
		var user User
		var role string
		if err := rows.Scan(&user.ID, &user.Username, &user.Email, &role, &user.IsActive, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.Role = authz.ParseRole(role)
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser returns a single account by id.
func (r *Repository) GetUser(ctx context.Context, id int64) (*User, error) {
	var user User
	var role string
	err := r.pool.QueryRow(ctx, `SELECT id, username, email, role, is_active, created_at FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Username, &user.Email, &role, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	user.Role = authz.ParseRole(role)
	return &user, nil
}
