package shared

import (
	"context"

	"github.com/docshield/docshield/internal/authz"
)

type principalContextKey struct{}

// ContextWithPrincipal stores the authenticated principal in context.
// The principal travels as an explicit per-request value; there is no
// process-global identity state that could leak across concurrent
// requests.
func ContextWithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the authenticated principal, reporting
// whether one was bound by the authentication middleware.
func PrincipalFromContext(ctx context.Context) (authz.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(authz.Principal)
	return p, ok
}
