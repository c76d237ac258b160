package auth

// Terminology: Session
//   - Token:  the opaque bearer credential issued by the backend on login
//   - UserID: the backend user id, carried in its own signed cookie and only
//             trusted once it matches the subject the backend validated

import (
	"context"
	"crypto/sha256"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
	"golang.org/x/crypto/hkdf"
)

// Cookie names shared with the browser.
const (
	TokenCookie  = "token"
	UserIDCookie = "user-id"
)

// Default cookie lifetimes.
const (
	DefaultTokenMaxAge = 7 * 24 * time.Hour
)

// Session error classification for logging and monitoring.
type sessionErrorType int

const (
	sessionErrUnknown   sessionErrorType = iota
	sessionErrExpired                    // timestamp expired - normal
	sessionErrTampered                   // MAC invalid - potential attack
	sessionErrCorrupted                  // decode failed - corruption or key rotation
	sessionErrBackend                    // encoder failure
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session value object                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// Session is the pair of cookies a browser presents. It is only meaningful as
// a whole: see Verify for the consistency rule between Token and UserID.
type Session struct {
	Token  string
	UserID string
}

// HasToken reports whether a token cookie was presented.
func (s Session) HasToken() bool { return s.Token != "" }

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager - cookie reading and writing                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager reads and writes the session cookies.
// Use NewSessionManager to create an instance.
type SessionManager struct {
	codec        *securecookie.SecureCookie
	logger       *zap.Logger
	domain       string
	tokenMaxAge  time.Duration
	userIDMaxAge time.Duration
	secure       bool
	loginPath    string
}

// Options configures a SessionManager.
type Options struct {
	CookieKey    string        // signs the user-id cookie (must be ≥32 chars in production)
	Domain       string        // cookie domain (empty means current host)
	TokenMaxAge  time.Duration // token cookie lifetime (default 7 days)
	UserIDMaxAge time.Duration // user-id cookie lifetime (default: TokenMaxAge)
	Secure       bool          // production mode: Secure user-id cookie, strong key required
	LoginPath    string        // login page path (default /auth/login)
}

// NewSessionManager creates a SessionManager.
//
// Returns an error if the cookie key is empty or too weak for production mode.
func NewSessionManager(opts Options, logger *zap.Logger) (*SessionManager, error) {
	key := opts.CookieKey
	if key == "" {
		return nil, &SessionConfigError{Message: "cookie key is empty; provide ≥32 random chars"}
	}

	isWeak := len(key) < 32 || isDefaultKey(key)
	if opts.Secure {
		if isWeak {
			return nil, &SessionConfigError{
				Message: "cookie key is too weak for production; provide ≥32 random chars (not the default dev key)",
			}
		}
	} else if isWeak {
		logger.Warn("cookie key is weak; 32+ random chars required in production",
			zap.Int("length", len(key)),
			zap.Bool("is_default", isDefaultKey(key)))
	}

	if opts.TokenMaxAge <= 0 {
		opts.TokenMaxAge = DefaultTokenMaxAge
	}
	if opts.UserIDMaxAge <= 0 {
		opts.UserIDMaxAge = opts.TokenMaxAge
	}
	if opts.LoginPath == "" {
		opts.LoginPath = "/auth/login"
	}

	hashKey, err := DeriveKey(key, "user-id cookie", 64)
	if err != nil {
		return nil, err
	}
	codec := securecookie.New(hashKey, nil)
	codec.MaxAge(int(opts.UserIDMaxAge.Seconds()))
	codec.SetSerializer(securecookie.JSONEncoder{})

	logger.Info("session manager initialized",
		zap.Bool("secure", opts.Secure),
		zap.String("domain", opts.Domain),
		zap.Duration("token_max_age", opts.TokenMaxAge),
		zap.Duration("user_id_max_age", opts.UserIDMaxAge))

	return &SessionManager{
		codec:        codec,
		logger:       logger,
		domain:       opts.Domain,
		tokenMaxAge:  opts.TokenMaxAge,
		userIDMaxAge: opts.UserIDMaxAge,
		secure:       opts.Secure,
		loginPath:    opts.LoginPath,
	}, nil
}

// SessionConfigError is returned when session configuration is invalid.
type SessionConfigError struct {
	Message string
}

func (e *SessionConfigError) Error() string {
	return e.Message
}

// LoginPath returns the configured login page path.
func (sm *SessionManager) LoginPath() string {
	return sm.loginPath
}

// Read returns the session cookies presented with r. A user-id cookie that
// fails signature or age checks reads as absent.
func (sm *SessionManager) Read(r *http.Request) Session {
	var s Session
	if c, err := r.Cookie(TokenCookie); err == nil {
		s.Token = c.Value
	}
	c, err := r.Cookie(UserIDCookie)
	if err != nil || c.Value == "" {
		return s
	}
	var id string
	if err := sm.codec.Decode(UserIDCookie, c.Value, &id); err != nil {
		errType, errCategory := classifySessionError(err)
		switch errType {
		case sessionErrExpired:
			sm.logger.Debug("user-id cookie expired",
				zap.String("category", errCategory),
				zap.String("path", r.URL.Path))
		case sessionErrTampered:
			sm.logger.Warn("user-id cookie MAC validation failed (possible tampering)",
				zap.String("category", errCategory),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()))
		default:
			sm.logger.Info("user-id cookie unreadable",
				zap.String("category", errCategory),
				zap.String("path", r.URL.Path))
		}
		return s
	}
	s.UserID = id
	return s
}

// Establish writes both session cookies after a successful login.
func (sm *SessionManager) Establish(w http.ResponseWriter, token, userID string) error {
	encoded, err := sm.codec.Encode(UserIDCookie, userID)
	if err != nil {
		return err
	}
	http.SetCookie(w, sm.cookie(TokenCookie, token, sm.tokenMaxAge, false))
	http.SetCookie(w, sm.cookie(UserIDCookie, encoded, sm.userIDMaxAge, sm.secure))
	return nil
}

// Clear expires both session cookies. It is safe to call with no session.
func (sm *SessionManager) Clear(w http.ResponseWriter) {
	for _, name := range []string{TokenCookie, UserIDCookie} {
		c := sm.cookie(name, "", 0, name == UserIDCookie && sm.secure)
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
		http.SetCookie(w, c)
	}
}

func (sm *SessionManager) cookie(name, value string, maxAge time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   sm.domain,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the authenticated identity in the request context. ID is
// the subject the backend validated, never the raw cookie value.
type SessionUser struct {
	ID    string
	Token string
}

// SessionToken returns the bearer token to forward to the backend.
func (u *SessionUser) SessionToken() string {
	return u.Token
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag from the request context.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithUser returns r carrying u as the authenticated identity.
func WithUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// WithTestUser injects a SessionUser into the request context for testing.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return WithUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// LoginRedirect returns the login URL carrying the original path and query
// of r as returnTo.
func LoginRedirect(loginPath string, r *http.Request) string {
	return loginPath + "?returnTo=" + url.QueryEscape(currentURI(r))
}

// SafeReturnTo returns target if it is a same-origin absolute path, or
// fallback otherwise.
func SafeReturnTo(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return target
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}

// DeriveKey expands secret into an n-byte key bound to purpose. Different
// purposes yield independent keys from the same secret.
func DeriveKey(secret, purpose string, n int) ([]byte, error) {
	out := make([]byte, n)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("gestaoalimentar "+purpose))
	if _, err := io.ReadFull(kdf, out); err != nil {
		return nil, err
	}
	return out, nil
}

// isDefaultKey checks if the key appears to be a default/placeholder value.
func isDefaultKey(key string) bool {
	lower := strings.ToLower(key)
	patterns := []string{
		"dev-only",
		"change-me",
		"placeholder",
		"default",
		"example",
		"insecure",
		"test-key",
		"secret123",
		"password",
	}
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// IsWeakKey reports whether key is too short or a known placeholder.
func IsWeakKey(key string) bool {
	return len(key) < 32 || isDefaultKey(key)
}

// classifySessionError categorizes a cookie decode error for appropriate logging.
func classifySessionError(err error) (sessionErrorType, string) {
	if err == nil {
		return sessionErrUnknown, "none"
	}

	errStr := strings.ToLower(err.Error())

	var scErr securecookie.Error
	if errors.As(err, &scErr) {
		if !scErr.IsDecode() {
			return sessionErrBackend, "backend"
		}

		switch {
		case strings.Contains(errStr, "expired timestamp"):
			return sessionErrExpired, "expired"
		case strings.Contains(errStr, "mac") || strings.Contains(errStr, "hash"):
			return sessionErrTampered, "mac_invalid"
		case strings.Contains(errStr, "base64") || strings.Contains(errStr, "decode"):
			return sessionErrCorrupted, "decode_failed"
		default:
			return sessionErrCorrupted, "decode_other"
		}
	}

	return sessionErrBackend, "unknown"
}
