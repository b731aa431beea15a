package auth_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docshield/docshield/internal/auth"
	"github.com/docshield/docshield/internal/authz"
	"github.com/docshield/docshield/internal/shared"
	_ "github.com/docshield/docshield/testing"
)

func newAuthRouter(t *testing.T, repo auth.Repository) (chi.Router, *auth.TokenService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := auth.NewService(repo)
	tokens := auth.NewTokenService("test-secret", time.Hour, nil)
	handler := auth.NewHandler(logger, service, tokens)
	r := chi.NewRouter()
	r.Route("/auth", handler.MountRoutes)
	return r, tokens
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestLoginIssuesToken(t *testing.T) {
	repo := newStubRepo()
	repo.add(&auth.User{ID: 1, Username: "alice", PasswordHash: hashPassword(t, "correctpass"), Role: authz.RoleStandard, IsActive: true})
	router, tokens := newAuthRouter(t, repo)

	res := doJSON(t, router, http.MethodPost, "/auth/login", `{"username":"alice","password":"correctpass"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, "bearer", payload.TokenType)
	assert.Equal(t, int64(3600), payload.ExpiresIn)

	claims, err := tokens.Verify(context.Background(), payload.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	repo := newStubRepo()
	repo.add(&auth.User{ID: 1, Username: "alice", PasswordHash: hashPassword(t, "correctpass"), Role: authz.RoleStandard, IsActive: true})
	router, _ := newAuthRouter(t, repo)

	wrongPass := doJSON(t, router, http.MethodPost, "/auth/login", `{"username":"alice","password":"wrongpass"}`)
	unknownUser := doJSON(t, router, http.MethodPost, "/auth/login", `{"username":"nobody","password":"wrongpass"}`)

	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	// No account oracle: both bodies must be identical.
	assert.Equal(t, wrongPass.Body.String(), unknownUser.Body.String())
}

func TestRegisterValidation(t *testing.T) {
	router, _ := newAuthRouter(t, newStubRepo())

	cases := []struct {
		name string
		body string
	}{
		{"short password", `{"username":"carol","email":"carol@example.com","password":"short"}`},
		{"bad email", `{"username":"carol","email":"not-an-email","password":"longenoughpass"}`},
		{"missing username", `{"email":"carol@example.com","password":"longenoughpass"}`},
		{"broken json", `{"username":`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := doJSON(t, router, http.MethodPost, "/auth/register", tc.body)
			assert.Equal(t, http.StatusBadRequest, res.Code)
		})
	}
}

func TestRegisterCreatesStandardRole(t *testing.T) {
	repo := newStubRepo()
	router, _ := newAuthRouter(t, repo)

	res := doJSON(t, router, http.MethodPost, "/auth/register", `{"username":"carol","email":"carol@example.com","password":"longenoughpass"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	var payload struct {
		ID   int64  `json:"id"`
		Role string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &payload))
	assert.Equal(t, "standard", payload.Role)

	dup := doJSON(t, router, http.MethodPost, "/auth/register", `{"username":"carol","email":"carol@example.com","password":"longenoughpass"}`)
	assert.Equal(t, http.StatusConflict, dup.Code)
}

func TestRequireAuthRejectsUniformly(t *testing.T) {
	repo := newStubRepo()
	repo.add(&auth.User{ID: 1, Username: "alice", PasswordHash: hashPassword(t, "correctpass"), Role: authz.RoleStandard, IsActive: true})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenService("test-secret", time.Hour, nil)
	mw := auth.NewMiddleware(tokens, auth.NewService(repo), logger, shared.NopSink{})

	var sawPrincipal bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawPrincipal = shared.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := mw.RequireAuth(next)

	bodies := map[string]string{}
	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer not-a-token",
		"basic":   "Basic Zm9vOmJhcg==",
	} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		res := httptest.NewRecorder()
		protected.ServeHTTP(res, req)
		assert.Equal(t, http.StatusUnauthorized, res.Code, name)
		bodies[name] = res.Body.String()
	}
	assert.Equal(t, bodies["missing"], bodies["garbage"])
	assert.Equal(t, bodies["garbage"], bodies["basic"])
	assert.False(t, sawPrincipal)

	// Valid token reaches the handler with a bound principal.
	user, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	raw, err := tokens.Issue(user)
	require.NoError(t, err)

	okReq := httptest.NewRequest(http.MethodGet, "/protected", nil)
	okReq.Header.Set("Authorization", "Bearer "+raw)
	okRes := httptest.NewRecorder()
	protected.ServeHTTP(okRes, okReq)
	require.Equal(t, http.StatusOK, okRes.Code)
	assert.True(t, sawPrincipal)
}
