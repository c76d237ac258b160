// Package reports serves the monthly management report: the raw backend
// report and its derived view as JSON, the report screen and the PDF export.
package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/flash"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/locale"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/reportload"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	MsgReportFailed = "Erro ao buscar relatório"
	MsgInvalidMonth = "Mês inválido. Use o formato YYYY-MM"
	MsgNoUnit       = "Nenhuma unidade associada ao seu usuário."
	MsgExportFailed = "Erro ao gerar o PDF do relatório."
)

// monthChoices is how many months the report screen offers.
const monthChoices = 12

// Backend is the raw report call used by /api/reports/my-report.
type Backend interface {
	MyReportRaw(ctx context.Context, token, month string) (json.RawMessage, error)
}

// Loader fetches a month together with the month before it.
type Loader interface {
	Load(ctx context.Context, token string, month locale.MonthKey) (reportload.Result, error)
}

// Handler serves /api/reports and /relatorios.
type Handler struct {
	backend Backend
	loader  Loader
	flash   *flash.Store
	logger  *zap.Logger
	now     func() time.Time
}

// NewHandler creates a Handler. fl may be nil.
func NewHandler(b Backend, loader Loader, fl *flash.Store, logger *zap.Logger) *Handler {
	return &Handler{backend: b, loader: loader, flash: fl, logger: logger, now: time.Now}
}

// APIRoutes mounts the JSON endpoints under /api/reports.
func APIRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonutil.MethodNotAllowed(w, http.MethodGet)
	})
	r.Use(authz.RequireCaller)
	r.Get("/my-report", h.MyReport)
	r.Get("/view", h.View)
	return r
}

// PageRoutes mounts the report screen and its export under /relatorios.
// The gateway has already sent visitors without a session to the login page.
func PageRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Page)
	r.Get("/export", h.Export)
	return r
}

// selectedMonth reads ?month=, accepting "YYYY-MM" or a full label such as
// "Novembro 2025". Empty selects the current month.
func (h *Handler) selectedMonth(r *http.Request) (locale.MonthKey, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("month"))
	if raw == "" {
		return locale.KeyOf(h.now()), true
	}
	k, err := locale.ParseAny(raw)
	if err != nil {
		return locale.MonthKey{}, false
	}
	return k, true
}
