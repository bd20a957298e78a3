package context

import (
	"context"

	"github.com/mkrupp/shop/internal/domain"
)

const (
	contextKeyIdentity  = contextKey("identity")
	contextKeySessionID = contextKey("sessionID")
)

// IdentityFromContext returns the identity attached by the authorizing middleware,
// or domain.Unauthenticated.
func IdentityFromContext(ctx context.Context) domain.Identity {
	identity, ok := ctx.Value(contextKeyIdentity).(domain.Identity)
	if !ok {
		return domain.Unauthenticated
	}

	return identity
}

// WithIdentity attaches the authenticated identity to the context.
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, identity)
}

// SessionIDFromContext returns the session id the request was authenticated with.
func SessionIDFromContext(ctx context.Context) (domain.SessionID, bool) {
	id, ok := ctx.Value(contextKeySessionID).(domain.SessionID)

	return id, ok
}

// WithSessionID attaches the session id the request was authenticated with.
func WithSessionID(ctx context.Context, id domain.SessionID) context.Context {
	return context.WithValue(ctx, contextKeySessionID, id)
}
