package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"zenithcloud.org/internal/auth"
	"zenithcloud.org/internal/obs"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// WithAuth validates a bearer token if one is presented and attaches the
// resulting identity to the request context. Requests without a usable
// token proceed unauthenticated: rejecting them is the job of the
// endpoint guards and the access engine, not this layer. Failures here
// never abort the pipeline.
func WithAuth(tokens *auth.TokenService, next http.Handler) http.Handler {
	if tokens == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(authHeader)
		if header == "" || !strings.HasPrefix(header, bearerPrefix) {
			next.ServeHTTP(w, r)
			return
		}
		// Do not overwrite an identity established earlier in the chain.
		if _, ok := auth.IdentityFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		token := strings.TrimSpace(header[len(bearerPrefix):])
		claims, err := tokens.ParseAndValidate(token)
		if err != nil {
			logTokenRejected(r, "token validation failed")
			next.ServeHTTP(w, r)
			return
		}
		role, err := auth.ParseRole(claims.Role)
		if err != nil {
			// A role claim outside the closed set is an invalid token;
			// no default role is ever assigned.
			logTokenRejected(r, "role claim rejected")
			next.ServeHTTP(w, r)
			return
		}

		ctx := auth.ContextWithIdentity(r.Context(), auth.Identity{
			Username: claims.Subject,
			Role:     role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func logTokenRejected(r *http.Request, reason string) {
	obs.LogEntry(map[string]any{
		"level":      "warn",
		"msg":        "bearer token rejected, proceeding unauthenticated",
		"reason":     reason,
		"request_id": RequestIDFromContext(r.Context()),
		"path":       r.URL.Path,
	})
}

// extractBearerToken pulls the raw token out of an Authorization header.
func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}

// requireIdentity is the explicit guard for endpoints that demand an
// authenticated caller. It writes the 401 itself and reports whether the
// handler may continue.
func requireIdentity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return auth.Identity{}, false
	}
	return identity, true
}
