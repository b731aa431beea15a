package auth

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/docshield/docshield/internal/platform/httpx"
	"github.com/docshield/docshield/internal/shared"
)

// Middleware authenticates bearer tokens and binds the resulting
// principal into the request context. Every failure produces the same
// 401 problem response regardless of cause.
type Middleware struct {
	tokens  *TokenService
	service *Service
	logger  *slog.Logger
	events  shared.SecurityEventSink
}

// NewMiddleware constructs the authentication middleware.
func NewMiddleware(tokens *TokenService, service *Service, logger *slog.Logger, events shared.SecurityEventSink) *Middleware {
	if events == nil {
		events = shared.NopSink{}
	}
	return &Middleware{tokens: tokens, service: service, logger: logger, events: events}
}

// RequireAuth rejects requests without a valid bearer token. On success
// the principal (id and role, re-read from the credential store so role
// changes apply immediately) is stored in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			m.reject(w, r, "missing bearer token")
			return
		}

		claims, err := m.tokens.Verify(r.Context(), token)
		if err != nil {
			m.reject(w, r, "token rejected")
			return
		}

		user, err := m.service.Lookup(r.Context(), claims.UserID)
		if err != nil || !user.IsActive {
			m.reject(w, r, "principal not resolvable")
			return
		}

		ctx := shared.ContextWithPrincipal(r.Context(), user.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, reason string) {
	m.logger.Warn("authentication rejected", slog.String("path", r.URL.Path), slog.String("reason", reason))
	if err := m.events.Publish(r.Context(), shared.SecurityEvent{
		Kind:       shared.EventAuthFailure,
		Entity:     "request",
		EntityID:   r.URL.Path,
		Detail:     reason,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		m.logger.Warn("publish auth failure event", slog.Any("error", err))
	}
	httpx.RespondError(w, shared.ErrUnauthorized)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
