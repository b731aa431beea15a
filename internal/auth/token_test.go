package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/internal/auth"
	"github.com/docshield/docshield/internal/authz"
	"github.com/docshield/docshield/internal/shared"
	_ "github.com/docshield/docshield/testing"
)

func testUser() *auth.User {
	return &auth.User{ID: 7, Username: "alice", Role: authz.RoleStandard, IsActive: true}
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour, nil)

	raw, err := tokens.Issue(testUser())
	require.NoError(t, err)

	claims, err := tokens.Verify(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "standard", claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenExpired(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", -time.Minute, nil)

	raw, err := tokens.Issue(testUser())
	require.NoError(t, err)

	_, err = tokens.Verify(context.Background(), raw)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestTokenGarbage(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour, nil)

	for _, raw := range []string{"", "garbage", "aaa.bbb.ccc"} {
		_, err := tokens.Verify(context.Background(), raw)
		assert.ErrorIs(t, err, shared.ErrUnauthorized, "token %q", raw)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := auth.NewTokenService("secret-one", time.Hour, nil)
	verifier := auth.NewTokenService("secret-two", time.Hour, nil)

	raw, err := issuer.Issue(testUser())
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), raw)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
}

func TestTokenRevocation(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokens := auth.NewTokenService("test-secret", time.Hour, auth.NewDenylist(client))

	raw, err := tokens.Issue(testUser())
	require.NoError(t, err)

	claims, err := tokens.Verify(context.Background(), raw)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(context.Background(), claims))

	_, err = tokens.Verify(context.Background(), raw)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	// Revocation expires with the token itself.
	mr.FastForward(2 * time.Hour)
	revoked, err := auth.NewDenylist(client).IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeWithoutDenylist(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", time.Hour, nil)
	raw, err := tokens.Issue(testUser())
	require.NoError(t, err)
	claims, err := tokens.Verify(context.Background(), raw)
	require.NoError(t, err)

	err = tokens.Revoke(context.Background(), claims)
	require.Error(t, err)
	assert.False(t, errors.Is(err, shared.ErrUnauthorized))
}
