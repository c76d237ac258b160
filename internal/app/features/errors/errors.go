// internal/app/features/errors/errors.go
package errors

import (
	"net/http"
	"strings"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// ErrorVM is the view model of every error page.
type ErrorVM struct {
	viewdata.BaseVM
	Code    int
	Message string
}

// Handler provides error page handlers. Requests under /api/ get a JSON
// body instead of a page.
type Handler struct{}

// NewHandler creates a new error Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders the 403 page.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, "Acesso negado", "Você não tem permissão para acessar esta página.")
}

// Unauthorized renders the 401 page.
func (h *Handler) Unauthorized(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusUnauthorized, "Não autorizado", "Entre novamente para continuar.")
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "Página não encontrada", "O endereço acessado não existe.")
}

// MethodNotAllowed renders the 405 page.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusMethodNotAllowed, "Método não permitido", "Esta página não aceita este tipo de requisição.")
}

// InternalError renders the 500 page.
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusInternalServerError, "Erro no servidor", "Ocorreu um erro inesperado. Tente novamente em instantes.")
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, code int, title, msg string) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		jsonutil.Error(w, code, title)
		return
	}

	vm := ErrorVM{BaseVM: viewdata.New(r), Code: code, Message: msg}
	vm.Title = title

	w.WriteHeader(code)
	templates.Render(w, r, "errors/page", vm)
}
