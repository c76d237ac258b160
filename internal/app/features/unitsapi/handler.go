// Package unitsapi lists the units of the signed-in user.
package unitsapi

import (
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MsgListFailed is returned when the backend refuses the unit list.
const MsgListFailed = "Erro ao buscar unidades do usuário"

// Handler serves /api/units.
type Handler struct {
	units  authz.UnitLister
	logger *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(units authz.UnitLister, logger *zap.Logger) *Handler {
	return &Handler{units: units, logger: logger}
}

// Routes mounts GET /my-units.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonutil.MethodNotAllowed(w, http.MethodGet)
	})
	r.Use(authz.RequireCaller)
	r.Get("/my-units", h.MyUnits)
	return r
}

type unitsResponse struct {
	OK    bool          `json:"ok"`
	Units []models.Unit `json:"units"`
}

// MyUnits returns {"ok": true, "units": [...]}. No units is an empty list.
func (h *Handler) MyUnits(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)

	units, err := h.units.UserUnits(r.Context(), caller.Token, caller.UserID)
	if err != nil {
		jsonutil.FromBackendAs(w, h.logger, "units.list", err, MsgListFailed)
		return
	}
	if units == nil {
		units = []models.Unit{}
	}
	jsonutil.OK(w, unitsResponse{OK: true, Units: units})
}
