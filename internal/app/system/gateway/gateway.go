// Package gateway is the edge access check every request passes through
// before reaching a page or API handler.
//
// For each request it decides one of six terminal states: pass a static
// asset through, pass a public path through, send an already signed-in user
// away from a public page, send an anonymous or invalid session to the login
// page, or forward an authenticated request with the validated subject
// attached. Decisions depend only on the request's cookies and one token
// validation round trip; nothing is shared between requests.
package gateway

import (
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/auth"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/backend"
	"go.uber.org/zap"
)

// State is the terminal state of one request.
type State string

const (
	StaticAsset            State = "static_asset"
	PublicUnauthenticated  State = "public_unauthenticated"
	PublicAuthenticated    State = "public_authenticated"
	ProtectedNoToken       State = "protected_no_token"
	ProtectedInvalidToken  State = "protected_invalid_token"
	ProtectedAuthenticated State = "protected_authenticated"
)

// Redirects reports whether the state ends in a redirect.
func (s State) Redirects() bool {
	switch s {
	case PublicAuthenticated, ProtectedNoToken, ProtectedInvalidToken:
		return true
	}
	return false
}

// Decision is the outcome for one request.
type Decision struct {
	State    State
	Location string      // redirect target when State.Redirects()
	Subject  string      // validated subject for ProtectedAuthenticated
	Reason   auth.Reason // why a session was not accepted, if one was presented
	Err      error       // validator error, if any

	// Session is the cookie pair read for this request, decoded once.
	Session auth.Session
}

// SessionReader reads the session cookies of a request.
type SessionReader interface {
	Read(r *http.Request) auth.Session
}

// Observer is notified of every decision.
type Observer interface {
	ObserveGatewayDecision(state, reason string)
}

// Auditor records rejected sessions.
type Auditor interface {
	SessionRejected(r *http.Request, userID, reason string)
}

// Config configures a Gateway. Zero values fall back to the defaults.
type Config struct {
	PublicPaths      []string
	PassThroughPaths []string
	LoginPath        string // default /auth/login
	LogoutPath       string // default /api/auth/logout
	HomePath         string // default /
	IdentityHeader   string // default X-User-Id
}

// Gateway implements the access decision and its middleware.
type Gateway struct {
	sessions    SessionReader
	validator   auth.TokenValidator
	public      Matcher
	passThrough Matcher
	loginPath   string
	logoutPath  string
	homePath    string
	header      string
	observer    Observer
	auditor     Auditor
	logger      *zap.Logger
}

// New creates a Gateway.
func New(cfg Config, sessions SessionReader, validator auth.TokenValidator, logger *zap.Logger) *Gateway {
	if cfg.PublicPaths == nil {
		cfg.PublicPaths = DefaultPublicPaths
	}
	if cfg.PassThroughPaths == nil {
		cfg.PassThroughPaths = DefaultPassThroughPaths
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/auth/login"
	}
	if cfg.LogoutPath == "" {
		cfg.LogoutPath = "/api/auth/logout"
	}
	if cfg.HomePath == "" {
		cfg.HomePath = "/"
	}
	if cfg.IdentityHeader == "" {
		cfg.IdentityHeader = "X-User-Id"
	}
	return &Gateway{
		sessions:    sessions,
		validator:   validator,
		public:      NewMatcher(cfg.PublicPaths...),
		passThrough: NewMatcher(cfg.PassThroughPaths...),
		loginPath:   cfg.LoginPath,
		logoutPath:  cfg.LogoutPath,
		homePath:    cfg.HomePath,
		header:      cfg.IdentityHeader,
		logger:      logger,
	}
}

// SetObserver installs o for subsequent decisions.
func (g *Gateway) SetObserver(o Observer) { g.observer = o }

// SetAuditor installs a for subsequent decisions.
func (g *Gateway) SetAuditor(a Auditor) { g.auditor = a }

// IdentityHeader returns the header carrying the validated subject.
func (g *Gateway) IdentityHeader() string { return g.header }

// Decide classifies r. It reads the session cookies once and performs at
// most one token validation.
func (g *Gateway) Decide(r *http.Request) Decision {
	if g.passThrough.Match(r.URL.Path) {
		return Decision{State: StaticAsset}
	}
	s := g.sessions.Read(r)
	d := g.decide(r, s)
	d.Session = s
	return d
}

func (g *Gateway) decide(r *http.Request, s auth.Session) Decision {
	path := r.URL.Path

	if g.public.Match(path) {
		if path == g.logoutPath || !s.HasToken() {
			return Decision{State: PublicUnauthenticated}
		}
		switch v := auth.Verify(r.Context(), g.validator, s).(type) {
		case auth.Authenticated:
			return Decision{State: PublicAuthenticated, Location: g.homePath, Subject: v.Subject}
		case auth.Unauthenticated:
			return Decision{State: PublicUnauthenticated, Reason: v.Reason, Err: v.Err}
		}
		return Decision{State: PublicUnauthenticated}
	}

	if !s.HasToken() {
		return Decision{State: ProtectedNoToken, Location: auth.LoginRedirect(g.loginPath, r), Reason: auth.ReasonNoToken}
	}
	switch v := auth.Verify(r.Context(), g.validator, s).(type) {
	case auth.Authenticated:
		return Decision{State: ProtectedAuthenticated, Subject: v.Subject}
	case auth.Unauthenticated:
		return Decision{State: ProtectedInvalidToken, Location: auth.LoginRedirect(g.loginPath, r), Reason: v.Reason, Err: v.Err}
	}
	return Decision{State: ProtectedInvalidToken, Location: auth.LoginRedirect(g.loginPath, r)}
}

// Middleware applies Decide to every request. A client-supplied identity
// header is always removed; only the gateway sets it.
func (g *Gateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(g.header)

		d := g.Decide(r)
		g.record(r, d)

		switch d.State {
		case PublicAuthenticated, ProtectedNoToken, ProtectedInvalidToken:
			http.Redirect(w, r, d.Location, http.StatusSeeOther)
			return
		case ProtectedAuthenticated:
			r.Header.Set(g.header, d.Subject)
			r = auth.WithUser(r, &auth.SessionUser{ID: d.Subject, Token: d.Session.Token})
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gateway) record(r *http.Request, d Decision) {
	if g.observer != nil {
		g.observer.ObserveGatewayDecision(string(d.State), string(d.Reason))
	}
	if d.State == StaticAsset {
		return
	}

	g.logger.Debug("gateway decision",
		zap.String("state", string(d.State)),
		zap.String("path", r.URL.Path),
		zap.String("reason", string(d.Reason)))

	switch d.Reason {
	case "", auth.ReasonNoToken:
		return
	case auth.ReasonInvalidToken:
		if backend.Classify(d.Err) == backend.KindUnavailable {
			g.logger.Warn("token validation unavailable; treating session as invalid",
				zap.String("path", r.URL.Path),
				zap.Error(d.Err))
		} else {
			g.logger.Info("session rejected",
				zap.String("state", string(d.State)),
				zap.String("path", r.URL.Path),
				zap.String("reason", string(d.Reason)))
		}
	default:
		g.logger.Info("session rejected",
			zap.String("state", string(d.State)),
			zap.String("path", r.URL.Path),
			zap.String("reason", string(d.Reason)))
	}

	if g.auditor != nil {
		g.auditor.SessionRejected(r, d.Session.UserID, string(d.Reason))
	}
}
