// Package storageapi lists the stock of the signed-in user's unit and
// registers food entering and leaving it.
package storageapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// User-facing messages.
const (
	MsgUnitsFailed     = "Erro ao buscar unidades do usuário"
	MsgListFailed      = "Erro ao buscar estoque"
	MsgEntryFailed     = "Erro ao registrar entrada no estoque"
	MsgExitFailed      = "Erro ao registrar saída do estoque"
	MsgEntryFields     = "Campos obrigatórios: name, amount, type, responsible, date, initial_quantity"
	MsgExitFields      = "Campos obrigatórios: items, purpose, responsible, date"
	MsgExitNoItems     = "É necessário informar ao menos um item para saída"
	MsgInvalidNumber   = "Quantidades devem ser números válidos"
	MsgInvalidDate     = "Data deve estar no formato YYYY-MM-DD"
	MsgEntryRegistered = "Entrada registrada com sucesso"
	MsgExitRegistered  = "Saída registrada com sucesso"
)

// Backend is the part of the backend client these endpoints call.
type Backend interface {
	authz.UnitLister
	Storage(ctx context.Context, token string, unitID models.ID) (json.RawMessage, error)
	StorageEntry(ctx context.Context, token string, e models.StorageEntry) (json.RawMessage, error)
	StorageExit(ctx context.Context, token string, e models.StorageExit) (json.RawMessage, error)
}

// Handler serves /api/storage.
type Handler struct {
	backend Backend
	logger  *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(b Backend, logger *zap.Logger) *Handler {
	return &Handler{backend: b, logger: logger}
}

// Routes mounts the endpoints.
//
// When mounted at /api/storage:
//   - GET  /my-storage
//   - POST /entry
//   - POST /exit
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(authz.RequireCaller)
	r.Get("/my-storage", h.MyStorage)
	r.Post("/entry", h.Entry)
	r.Post("/exit", h.Exit)
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, "/my-storage") {
			jsonutil.MethodNotAllowed(w, http.MethodGet)
			return
		}
		jsonutil.MethodNotAllowed(w, http.MethodPost)
	})
	return r
}

type listResponse struct {
	OK      bool            `json:"ok"`
	Storage json.RawMessage `json:"storage"`
	Unit    *models.Unit    `json:"unit"`
	Message string          `json:"message,omitempty"`
}

// MyStorage returns the stock of the caller's unit. A user without units
// gets an empty 200.
func (h *Handler) MyStorage(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	unit, err := authz.PrimaryUnit(r.Context(), h.backend, caller)
	if errors.Is(err, authz.ErrNoUnits) {
		jsonutil.OK(w, listResponse{OK: true, Storage: json.RawMessage("[]"), Message: authz.MsgNoUnits})
		return
	}
	if err != nil {
		jsonutil.FromBackendAs(w, h.logger, "units.list", err, MsgUnitsFailed)
		return
	}

	stock, err := h.backend.Storage(r.Context(), caller.Token, unit.ID)
	if err != nil {
		jsonutil.FromBackendAs(w, h.logger, "storage.list", err, MsgListFailed)
		return
	}
	jsonutil.OK(w, listResponse{OK: true, Storage: stock, Unit: &unit})
}

// unitFor resolves the unit a write acts on, answering 400 when the user
// has none.
func (h *Handler) unitFor(w http.ResponseWriter, r *http.Request, caller authz.Caller) (models.Unit, bool) {
	unit, err := authz.PrimaryUnit(r.Context(), h.backend, caller)
	switch {
	case err == nil:
		return unit, true
	case errors.Is(err, authz.ErrNoUnits):
		jsonutil.BadRequest(w, authz.MsgNoUnits)
	default:
		jsonutil.FromBackendAs(w, h.logger, "units.list", err, MsgUnitsFailed)
	}
	return models.Unit{}, false
}
