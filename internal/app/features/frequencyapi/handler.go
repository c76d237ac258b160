// Package frequencyapi manages the daily attendance ("frequência") records
// of the signed-in user's unit.
package frequencyapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// User-facing messages.
const (
	MsgUnitsFailed     = "Erro ao buscar unidades do usuário"
	MsgListFailed      = "Erro ao buscar frequências"
	MsgCreateFailed    = "Erro ao criar frequência"
	MsgUpdateFailed    = "Erro ao atualizar frequência"
	MsgMissingFields   = "Campos obrigatórios ausentes"
	MsgInvalidAmount   = "Amount deve ser um número válido maior ou igual a zero"
	MsgInvalidDate     = "Data deve estar no formato YYYY-MM-DD"
	MsgMissingID       = "ID da frequência é obrigatório"
	MsgNothingToUpdate = "Pelo menos um campo deve ser fornecido (amount ou date)"
)

// Backend is the part of the backend client these endpoints call.
type Backend interface {
	authz.UnitLister
	Unit(ctx context.Context, token string, id models.ID) (models.Unit, error)
	Frequencies(ctx context.Context, token string, unitID models.ID) (json.RawMessage, error)
	CreateFrequency(ctx context.Context, token string, f models.NewFrequency) (json.RawMessage, error)
	UpdateFrequency(ctx context.Context, token, id string, p models.FrequencyPatch) (json.RawMessage, error)
}

// Handler serves /api/frequency.
type Handler struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandler creates a Handler.
func NewHandler(b Backend, logger *zap.Logger) *Handler {
	return &Handler{backend: b, logger: logger, now: time.Now}
}

// Routes mounts the endpoints.
//
// When mounted at /api/frequency:
//   - GET  /my-frequencies
//   - POST /create
//   - PUT  /update?frequency_id=
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(authz.RequireCaller)
	r.Get("/my-frequencies", h.MyFrequencies)
	r.Post("/create", h.Create)
	r.Put("/update", h.Update)
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		switch {
		case strings.HasSuffix(req.URL.Path, "/create"):
			jsonutil.MethodNotAllowed(w, http.MethodPost)
		case strings.HasSuffix(req.URL.Path, "/update"):
			jsonutil.MethodNotAllowed(w, http.MethodPut)
		default:
			jsonutil.MethodNotAllowed(w, http.MethodGet)
		}
	})
	return r
}

type listResponse struct {
	OK             bool            `json:"ok"`
	Frequencies    json.RawMessage `json:"frequencies"`
	Unit           *models.Unit    `json:"unit"`
	TodayFrequency json.RawMessage `json:"todayFrequency"`
	Message        string          `json:"message,omitempty"`
}

type recordResponse struct {
	OK        bool            `json:"ok"`
	Frequency json.RawMessage `json:"frequency"`
}

// primaryUnit resolves the caller's unit, writing the error response
// itself. noUnits decides what a user without units gets.
func (h *Handler) primaryUnit(w http.ResponseWriter, r *http.Request, caller authz.Caller, noUnits func()) (models.Unit, bool) {
	unit, err := authz.PrimaryUnit(r.Context(), h.backend, caller)
	switch {
	case err == nil:
		return unit, true
	case errors.Is(err, authz.ErrNoUnits):
		noUnits()
	default:
		jsonutil.FromBackendAs(w, h.logger, "units.list", err, MsgUnitsFailed)
	}
	return models.Unit{}, false
}

// withDetail enriches unit with the unit detail endpoint. The detail is
// optional: on failure the list entry is used as is.
func (h *Handler) withDetail(ctx context.Context, token string, unit models.Unit) models.Unit {
	detail, err := h.backend.Unit(ctx, token, unit.ID)
	if err != nil {
		h.logger.Debug("unit detail unavailable, using list entry",
			zap.String("unit_id", unit.ID.String()),
			zap.Error(err))
		return unit
	}
	return unit.Merge(detail)
}
