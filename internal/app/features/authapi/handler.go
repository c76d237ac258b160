// Package authapi serves the JSON auth endpoints under /api/auth: login,
// logout, password reset codes and e-mail verification codes.
//
// Every endpoint except logout forwards to the backend's /auth routes.
// Login is the only place session cookies are written.
package authapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/auditlog"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/auth"
	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
	"go.uber.org/zap"
)

// Backend is the part of the backend client these endpoints call.
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	SendResetCode(ctx context.Context, email string) (json.RawMessage, error)
	ValidateResetCode(ctx context.Context, code string) (json.RawMessage, error)
	ResetPassword(ctx context.Context, password, confirm, resetToken string) (json.RawMessage, error)
	SendVerifyEmailCode(ctx context.Context, email string) (json.RawMessage, error)
	VerifyEmail(ctx context.Context, code string) (json.RawMessage, error)
}

// Sessions reads and writes the session cookies.
type Sessions interface {
	Read(r *http.Request) auth.Session
	Establish(w http.ResponseWriter, token, userID string) error
	Clear(w http.ResponseWriter)
}

// Handler serves /api/auth.
type Handler struct {
	backend  Backend
	sessions Sessions
	audit    *auditlog.Logger
	logger   *zap.Logger
}

// NewHandler creates a Handler. audit may be nil.
func NewHandler(b Backend, sessions Sessions, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		backend:  b,
		sessions: sessions,
		audit:    audit,
		logger:   logger,
	}
}
