// Package ordersapi lists the orders placed for a unit.
package ordersapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	MsgListFailed = "Erro ao buscar pedidos"
	MsgMissingID  = "ID da unidade é obrigatório"
)

// Backend is the backend call this feature makes.
type Backend interface {
	UnitOrders(ctx context.Context, token, unitID string) (json.RawMessage, error)
}

// Handler serves /api/orders.
type Handler struct {
	backend Backend
	logger  *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(b Backend, logger *zap.Logger) *Handler {
	return &Handler{backend: b, logger: logger}
}

// Routes mounts GET /{id}.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonutil.MethodNotAllowed(w, http.MethodGet)
	})
	r.Use(authz.RequireCaller)
	r.Get("/{id}", h.UnitOrders)
	return r
}

type ordersResponse struct {
	OK     bool            `json:"ok"`
	Orders json.RawMessage `json:"orders"`
}

// UnitOrders returns {"ok": true, "orders": ...} for the unit in the path.
// The backend decides whether the caller may see that unit.
func (h *Handler) UnitOrders(w http.ResponseWriter, r *http.Request) {
	caller, _ := authz.CallerFrom(r)
	unitID := strings.TrimSpace(chi.URLParam(r, "id"))
	if unitID == "" {
		jsonutil.BadRequest(w, MsgMissingID)
		return
	}

	orders, err := h.backend.UnitOrders(r.Context(), caller.Token, unitID)
	if err != nil {
		jsonutil.FromBackendAs(w, h.logger, "orders.list", err, MsgListFailed)
		return
	}
	jsonutil.OK(w, ordersResponse{OK: true, Orders: orders})
}
