// internal/app/features/login/login.go
package login

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/gestaoalimentar/internal/app/features/authapi"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/auditlog"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/auth"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/backend"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/flash"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/formutil"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/inputval"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/network"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Messages shown above the form.
const (
	MsgMissingCredentials = "Informe e-mail e senha."
	MsgInvalidCredentials = "E-mail ou senha inválidos."
	MsgTooManyAttempts    = "Muitas tentativas. Aguarde um momento e tente novamente."
	MsgUnavailable        = "Serviço indisponível. Tente novamente em instantes."
)

// SessionWriter writes the session cookies after a successful sign-in.
type SessionWriter interface {
	Establish(w http.ResponseWriter, token, userID string) error
}

// Handler provides login handlers.
type Handler struct {
	backend  authapi.LoginBackend
	sessions SessionWriter
	flash    *flash.Store
	limiter  *ratelimit.Limiter // nil disables throttling
	audit    *auditlog.Logger
	logger   *zap.Logger
}

// NewHandler creates a new login Handler. limiter and audit may be nil.
func NewHandler(
	b authapi.LoginBackend,
	sessions SessionWriter,
	fl *flash.Store,
	limiter *ratelimit.Limiter,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		backend:  b,
		sessions: sessions,
		flash:    fl,
		limiter:  limiter,
		audit:    audit,
		logger:   logger,
	}
}

// LoginVM is the view model for the login page.
type LoginVM struct {
	formutil.Base
	Action   string
	Email    string
	ReturnTo string
}

// Routes returns a chi.Router with login routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.showLogin)
	r.Post("/", h.handleLogin)
	return r
}

// showLogin displays the login form. A failed attempt arrives here through
// a redirect with its message in the flash cookie.
func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	vm := LoginVM{
		Base:     formutil.NewBase(r, "Entrar", "/"),
		Action:   r.URL.Path,
		Email:    strings.TrimSpace(r.URL.Query().Get("email")),
		ReturnTo: auth.SafeReturnTo(r.URL.Query().Get("returnTo"), ""),
	}
	vm.SetError(h.flash.First(w, r))

	templates.Render(w, r, "login/index", vm)
}

// handleLogin signs a gestor in and resumes the page that sent them here.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	returnTo := auth.SafeReturnTo(r.PostFormValue("returnTo"), "")

	if h.limiter != nil && !h.limiter.Allow(network.ClientIP(r)) {
		h.audit.LoginRateLimited(r)
		h.fail(w, r, MsgTooManyAttempts, email, returnTo)
		return
	}
	if email == "" || password == "" {
		h.fail(w, r, MsgMissingCredentials, email, returnTo)
		return
	}
	if !inputval.IsValidEmail(email) {
		h.fail(w, r, authapi.MsgInvalidEmail, email, returnTo)
		return
	}

	res, err := authapi.Authenticate(r.Context(), h.backend, email, password)
	switch {
	case errors.Is(err, authapi.ErrRoleNotAllowed):
		h.audit.LoginForbiddenRole(r, res.User.ID.String(), res.User.Role)
		h.fail(w, r, authapi.MsgRoleNotAllowed, email, returnTo)
		return
	case err != nil:
		h.fail(w, r, h.failureMessage(r, email, err), email, returnTo)
		return
	}

	if err := h.sessions.Establish(w, res.AccessToken, res.User.ID.String()); err != nil {
		h.logger.Error("failed to write session cookies", zap.Error(err))
		h.fail(w, r, MsgUnavailable, email, returnTo)
		return
	}
	h.audit.LoginSuccess(r, res.User.ID.String(), email)

	http.Redirect(w, r, auth.SafeReturnTo(returnTo, "/"), http.StatusSeeOther)
}

// failureMessage audits a failed sign-in and picks the text shown for it.
func (h *Handler) failureMessage(r *http.Request, email string, err error) string {
	if se, ok := backend.AsStatus(err); ok {
		h.audit.LoginFailed(r, email, se.Status)
		if se.Status == http.StatusUnauthorized || se.Status == http.StatusBadRequest || se.Status == http.StatusNotFound {
			return MsgInvalidCredentials
		}
		if se.Detail != "" {
			return se.Detail
		}
		return authapi.MsgLoginFailed
	}
	status := 0
	if errors.Is(err, authapi.ErrIncompleteLogin) {
		status = http.StatusBadGateway
	}
	h.audit.LoginFailed(r, email, status)
	h.logger.Warn("login failed", zap.Error(err))
	return MsgUnavailable
}

// fail sends the browser back to the form with msg. The password is never
// echoed.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg, email, returnTo string) {
	h.flash.Add(w, r, msg)
	q := url.Values{}
	if email != "" {
		q.Set("email", email)
	}
	if returnTo != "" {
		q.Set("returnTo", returnTo)
	}
	target := r.URL.Path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
