package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mkrupp/shop/internal/domain"
	context_ "github.com/mkrupp/shop/internal/infra/context"
	"github.com/mkrupp/shop/internal/infra/logging"
)

const AuthorizationHeader = "Authorization"

// Authenticator resolves session ids to identities.
type Authenticator interface {
	IdentityOf(ctx context.Context, id domain.SessionID) (domain.Identity, error)
}

// SessionIDFromRequest reads the session id from the named cookie, falling back to
// an "Authorization: Bearer <id>" header for non-browser clients.
func SessionIDFromRequest(r *http.Request, cookieName string) domain.SessionID {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return domain.SessionID(cookie.Value)
	}

	if token, ok := strings.CutPrefix(r.Header.Get(AuthorizationHeader), "Bearer "); ok {
		return domain.SessionID(strings.TrimSpace(token))
	}

	return ""
}

// AuthorizingMiddleware creates middleware that rejects requests without a live session
// with 401 before the wrapped handler runs. On success the identity and session id
// are added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	auth Authenticator,
	cookieName string,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := SessionIDFromRequest(r, cookieName)
		if sessionID == "" {
			log.WarnContext(r.Context(), "no session provided")
			WriteError(w, domain.ErrUnauthenticated)

			return
		}

		identity, err := auth.IdentityOf(r.Context(), sessionID)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				log.WarnContext(r.Context(), "invalid session", logging.Err(err))
			} else {
				log.ErrorContext(r.Context(), "resolve session failed", logging.Err(err))
			}

			WriteError(w, err)

			return
		}

		ctx := context_.WithIdentity(r.Context(), identity)
		ctx = context_.WithSessionID(ctx, sessionID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Gate wraps handlers with AuthorizingMiddleware.
type Gate struct {
	Auth       Authenticator
	CookieName string
	Log        logging.Logger
}

// Require returns h behind the authorizing middleware.
func (g Gate) Require(h http.HandlerFunc) http.Handler {
	return AuthorizingMiddleware(h, g.Auth, g.CookieName, g.Log)
}
