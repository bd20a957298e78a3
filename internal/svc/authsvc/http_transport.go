package authsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mkrupp/shop/internal/domain"
	context_ "github.com/mkrupp/shop/internal/infra/context"
	"github.com/mkrupp/shop/internal/infra/logging"
	http_ "github.com/mkrupp/shop/internal/infra/transport/http"
)

var (
	// ErrNoUsername is returned when the username is missing from the request.
	ErrNoUsername = errors.New("no username")
	// ErrNoPassword is returned when the password is missing from the request.
	ErrNoPassword = errors.New("no password")
)

const (
	msgLoginSuccessful = "Login successful!"
	msgLoggedOut       = "Logged out successfully!"
	msgMissingFields   = "Username and password are required"
)

const maxBodySize = 1 << 16

// HTTPTransportConfig contains the session cookie settings.
type HTTPTransportConfig struct {
	// CookieName is the name of the session cookie
	CookieName string `env:"COOKIE_NAME" default:"session_id"`
	// CookieSecure restricts the cookie to HTTPS
	CookieSecure bool `env:"COOKIE_SECURE" default:"false"`
}

// HTTPTransport handles HTTP requests for the session gate.
type HTTPTransport struct {
	authSvc *AuthService
	gate    http_.Gate
	limiter *http_.RateLimiter
	log     logging.Logger
	cfg     HTTPTransportConfig
}

// NewHTTPTransport creates a new HTTPTransport. Logout is wrapped by gate;
// login is throttled by limiter unless it is nil.
func NewHTTPTransport(
	authSvc *AuthService,
	cfg HTTPTransportConfig,
	gate http_.Gate,
	limiter *http_.RateLimiter,
) *HTTPTransport {
	return &HTTPTransport{
		authSvc: authSvc,
		gate:    gate,
		limiter: limiter,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		cfg:     cfg,
	}
}

// Register implements http_.Route:
// - POST /login: check credentials and open a session
// - POST /logout: terminate the current session (auth).
func (ht *HTTPTransport) Register(mux *http.ServeMux) {
	var login http.Handler = http.HandlerFunc(ht.HandleLogin)
	if ht.limiter != nil {
		login = ht.limiter.Limit(login)
	}

	mux.Handle("POST /login", login)
	mux.Handle("POST /logout", ht.gate.Require(ht.HandleLogout))
}

var _ http_.Route = (*HTTPTransport)(nil)

type loginRequest struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// HandleLogin processes user login requests.
// Expects a JSON body {username, password}. On success the session id is set
// as a cookie and {message, user_id} is returned.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "user login failed", logging.Err(err))
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		http_.WriteMessage(w, http.StatusBadRequest, msgMissingFields)

		return errors.Join(domain.ErrInvalidInput, fmt.Errorf("decode body: %w", err))
	}

	if req.Username == nil || *req.Username == "" {
		http_.WriteMessage(w, http.StatusBadRequest, msgMissingFields)

		return ErrNoUsername
	}

	log = log.With(logging.Group("user", "username", *req.Username))

	if req.Password == nil || *req.Password == "" {
		http_.WriteMessage(w, http.StatusBadRequest, msgMissingFields)

		return ErrNoPassword
	}

	sess, err := ht.authSvc.Login(r.Context(), *req.Username, *req.Password)
	if err != nil {
		http_.WriteError(w, err)

		return fmt.Errorf("login user: %w", err)
	}

	//nolint:exhaustruct
	http.SetCookie(w, &http.Cookie{
		Name:     ht.cfg.CookieName,
		Value:    sess.ID.String(),
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   max(int(time.Until(sess.ExpiresAt).Seconds()), 1),
		HttpOnly: true,
		Secure:   ht.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	if err := http_.WriteJSON(w, http.StatusOK, domain.LoginResponse{
		Message: msgLoginSuccessful,
		UserID:  sess.UserID,
	}); err != nil {
		return fmt.Errorf("encode response: %w", err)
	}

	return nil
}

// HandleLogout terminates the session the request was authenticated with
// and expires the session cookie.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogout(w, r)
}

func (ht *HTTPTransport) handleLogout(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "user logout failed", logging.Err(err))
		} else {
			log.DebugContext(ctx, "user logged out")
		}
	}(r.Context())

	sessionID, _ := context_.SessionIDFromContext(r.Context())

	if err := ht.authSvc.Logout(r.Context(), sessionID); err != nil {
		http_.WriteError(w, err)

		return fmt.Errorf("logout user: %w", err)
	}

	//nolint:exhaustruct
	http.SetCookie(w, &http.Cookie{
		Name:     ht.cfg.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   ht.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http_.WriteMessage(w, http.StatusOK, msgLoggedOut)

	return nil
}
