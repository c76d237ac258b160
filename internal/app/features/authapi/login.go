package authapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/backend"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/inputval"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
	"go.uber.org/zap"
)

// User-facing login messages.
const (
	MsgMissingCredentials = "Email ou senha ausente na requisição."
	MsgInvalidEmail       = "Informe um e-mail válido."
	MsgLoginFailed        = "Falha no login."
	MsgRoleNotAllowed     = "Acesso não permitido."
)

// Sign-in outcomes other than backend errors.
var (
	ErrIncompleteLogin = errors.New("backend login response missing token or user")
	ErrRoleNotAllowed  = errors.New("role not allowed to sign in")
)

// LoginBackend exchanges credentials for a token.
type LoginBackend interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
}

// Authenticate checks credentials with the backend and accepts only a
// gestor. On ErrRoleNotAllowed the result is returned too, so callers can
// record who was refused.
func Authenticate(ctx context.Context, b LoginBackend, email, password string) (*models.LoginResult, error) {
	res, err := b.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if res == nil || res.AccessToken == "" || res.User == nil || res.User.ID.IsZero() {
		return nil, ErrIncompleteLogin
	}
	if res.User.Role != models.RoleManager {
		return res, ErrRoleNotAllowed
	}
	return res, nil
}

func statusOf(err error) int {
	if se, ok := backend.AsStatus(err); ok {
		return se.Status
	}
	return 0
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials with the backend and, for a gestor, sets the
// token and user-id cookies.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := jsonutil.Decode(w, r, &in); err != nil {
		jsonutil.BadRequest(w, MsgMissingCredentials)
		return
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || in.Password == "" {
		jsonutil.BadRequest(w, MsgMissingCredentials)
		return
	}
	if !inputval.IsValidEmail(in.Email) {
		jsonutil.BadRequest(w, MsgInvalidEmail)
		return
	}

	res, err := Authenticate(r.Context(), h.backend, in.Email, in.Password)
	switch {
	case errors.Is(err, ErrIncompleteLogin):
		h.logger.Warn("backend login response missing token or user")
		h.audit.LoginFailed(r, in.Email, http.StatusBadGateway)
		jsonutil.Error(w, http.StatusBadGateway, MsgLoginFailed)
		return
	case errors.Is(err, ErrRoleNotAllowed):
		h.audit.LoginForbiddenRole(r, res.User.ID.String(), res.User.Role)
		jsonutil.Forbidden(w, MsgRoleNotAllowed)
		return
	case err != nil:
		h.audit.LoginFailed(r, in.Email, statusOf(err))
		jsonutil.FromBackend(w, h.logger, "auth.login", err, MsgLoginFailed)
		return
	}

	if err := h.sessions.Establish(w, res.AccessToken, res.User.ID.String()); err != nil {
		h.logger.Error("failed to write session cookies", zap.Error(err))
		jsonutil.InternalError(w, jsonutil.MsgBackendUnreachable)
		return
	}

	h.audit.LoginSuccess(r, res.User.ID.String(), in.Email)
	jsonutil.Success(w)
}

// Logout clears both cookies. It never fails: a missing or stale session
// still gets {"ok": true}.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Read(r)
	h.sessions.Clear(w)
	if s.HasToken() {
		h.audit.Logout(r, s.UserID)
	}
	jsonutil.Success(w)
}
