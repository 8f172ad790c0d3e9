package middleware

import (
	"context"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Context key type to avoid collisions
type contextKey string

// PrincipalKey is the context key for the authenticated principal
const PrincipalKey contextKey = "principal"

// Principal is the authenticated identity of the current request. It only
// exists for the lifetime of the request context.
type Principal struct {
	// Subject is the verified token subject, the user's email
	Subject string
}

// GetRequestIDFromContext returns the ID assigned by chi's RequestID
// middleware, or "" outside it.
func GetRequestIDFromContext(ctx context.Context) string {
	return chimiddleware.GetReqID(ctx)
}

// GetPrincipalFromContext retrieves the authenticated principal, or nil on
// public routes and unauthenticated requests.
func GetPrincipalFromContext(ctx context.Context) *Principal {
	if val := ctx.Value(PrincipalKey); val != nil {
		if p, ok := val.(*Principal); ok {
			return p
		}
	}
	return nil
}

// WithPrincipal adds the authenticated principal to the context
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}
