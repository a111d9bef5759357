package auth

import "context"

// Identity is the per-request result of validating a bearer token. It is
// constructed once by the authentication middleware, read-only for the
// remainder of the request, and never shared across requests.
type Identity struct {
	Username string
	Role     Role
}

type identityContextKey struct{}

// ContextWithIdentity attaches the authenticated identity to the context.
// An identity already present is not overwritten.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	if _, ok := IdentityFromContext(ctx); ok {
		return ctx
	}
	return context.WithValue(ctx, identityContextKey{}, &identity)
}

// IdentityFromContext extracts the authenticated identity from the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	v, ok := ctx.Value(identityContextKey{}).(*Identity)
	if !ok || v == nil || v.Username == "" {
		return Identity{}, false
	}
	return *v, true
}
