// Package authz resolves who an API request acts for: the caller the
// gateway authenticated and the unit that caller manages.
package authz

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/auth"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
)

// User-facing messages.
const (
	MsgNoToken = "Token não encontrado"
	MsgNoUnits = "Usuário não possui unidades associadas"
)

// ErrNoUnits reports a user linked to no unit. It is an empty state, not a
// backend failure.
var ErrNoUnits = errors.New("user has no units")

// Caller is the authenticated user on whose behalf the backend is called.
type Caller struct {
	UserID string
	Token  string
}

// CallerFrom returns the caller the gateway put in the request context.
// UserID is the validated token subject, never the raw cookie.
func CallerFrom(r *http.Request) (Caller, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok || u.Token == "" || u.ID == "" {
		return Caller{}, false
	}
	return Caller{UserID: u.ID, Token: u.Token}, true
}

// RequireCaller answers 401 JSON when the request carries no caller.
func RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CallerFrom(r); !ok {
			jsonutil.Unauthorized(w, MsgNoToken)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UnitLister lists the units of a user.
type UnitLister interface {
	UserUnits(ctx context.Context, token, userID string) ([]models.Unit, error)
}

// PrimaryUnit returns the first unit of the caller, the one every
// unit-scoped API acts on. It returns ErrNoUnits when there is none.
func PrimaryUnit(ctx context.Context, l UnitLister, c Caller) (models.Unit, error) {
	units, err := l.UserUnits(ctx, c.Token, c.UserID)
	if err != nil {
		return models.Unit{}, err
	}
	if len(units) == 0 {
		return models.Unit{}, ErrNoUnits
	}
	return units[0], nil
}
