// internal/app/features/home/home.go
package home

import (
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler provides home page handlers.
type Handler struct {
	units  authz.UnitLister
	logger *zap.Logger
}

// NewHandler creates a new home Handler.
func NewHandler(units authz.UnitLister, logger *zap.Logger) *Handler {
	return &Handler{
		units:  units,
		logger: logger,
	}
}

// Link is one entry of the home shell.
type Link struct {
	Label string
	Href  string
	Hint  string
}

// HomeVM is the view model for the home page.
type HomeVM struct {
	viewdata.BaseVM
	UnitNames []string
	Links     []Link
}

// Links lists the screens of the application.
var Links = []Link{
	{Label: "Relatórios", Href: "/relatorios", Hint: "Relatório de gestão mensal e exportação em PDF"},
}

// Routes returns a chi.Router with home routes mounted.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Index)
	return r
}

// Index renders the home page. A failed unit lookup only hides the unit
// names.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	vm := HomeVM{
		BaseVM: viewdata.NewBaseVM(r, "Início", "/"),
		Links:  Links,
	}

	if caller, ok := authz.CallerFrom(r); ok && h.units != nil {
		units, err := h.units.UserUnits(r.Context(), caller.Token, caller.UserID)
		if err != nil {
			h.logger.Warn("failed to load units for home page", zap.Error(err))
		}
		for _, u := range units {
			if u.Name != "" {
				vm.UnitNames = append(vm.UnitNames, u.Name)
			}
		}
	}

	templates.Render(w, r, "home/index", vm)
}
