package authz

import "context"

// Principal is the resolved identity and authorization context for one
// request. It is built fresh per request by the authentication layer, carried
// on the context, and never persisted or mutated.
type Principal struct {
	UserID string
	Role   Role

	// TenantID is empty for principals not bound to a company (SuperAdmin,
	// or users predating tenant assignment).
	TenantID string

	// TeamID is empty for principals outside any team.
	TeamID string
}

type principalContextKey struct{}

// ContextWithPrincipal attaches the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the authenticated principal from the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	if !ok || p.UserID == "" {
		return Principal{}, false
	}
	return p, true
}
