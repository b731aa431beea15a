package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/docshield/docshield/internal/shared"
)

// Claims carries the principal identity inside a bearer token. Role is
// included for information only; the middleware re-reads the account so
// a role change takes effect on the next request, not at token expiry.
type Claims struct {
	UserID int64  `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 bearer tokens.
type TokenService struct {
	secret   []byte
	ttl      time.Duration
	denylist *Denylist
}

// NewTokenService constructs a TokenService. denylist may be nil, in
// which case logout revocation is disabled.
func NewTokenService(secret string, ttl time.Duration, denylist *Denylist) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl, denylist: denylist}
}

// TTL exposes the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the given account.
func (s *TokenService) Issue(user *User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify parses and validates a bearer token. Malformed, expired and
// revoked tokens all map to shared.ErrUnauthorized; the distinction is
// logged server side but never surfaced to the caller.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUnauthorized, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, shared.ErrUnauthorized
	}

	if s.denylist != nil {
		revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, shared.ErrUnauthorized
		}
	}

	return claims, nil
}

// Revoke invalidates the token for the remainder of its lifetime.
func (s *TokenService) Revoke(ctx context.Context, claims *Claims) error {
	if s.denylist == nil {
		return errors.New("auth: revocation disabled")
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return s.denylist.Revoke(ctx, claims.ID, ttl)
}

// Denylist tracks revoked token ids in Redis until their natural expiry.
type Denylist struct {
	client *redis.Client
}

// NewDenylist constructs a Denylist.
func NewDenylist(client *redis.Client) *Denylist {
	return &Denylist{client: client}
}

// Revoke records a token id as revoked for ttl.
func (d *Denylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("auth: empty token id")
	}
	return d.client.Set(ctx, denyKey(jti), "1", ttl).Err()
}

// IsRevoked reports whether a token id has been revoked.
func (d *Denylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	err := d.client.Get(ctx, denyKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func denyKey(jti string) string {
	return "token:denied:" + jti
}
