package http

import (
	"context"

	"linguahub/internal/identity"
)

type contextKey string

const principalKey contextKey = "principal"

// ContextWithPrincipal attaches the authenticated caller to the request
// context.
func ContextWithPrincipal(ctx context.Context, p identity.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (identity.Principal, bool) {
	p, ok := ctx.Value(principalKey).(identity.Principal)
	return p, ok
}
