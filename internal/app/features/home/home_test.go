package home

import (
	"net/http"
	"testing"

	"github.com/dalemusser/gestaoalimentar/internal/testutil"
	"go.uber.org/zap"
)

func TestIndex(t *testing.T) {
	testutil.MustBootTemplates(t)
	fb := testutil.NewFakeBackend(t)
	fb.JSON("GET /user-unit/42/units", http.StatusOK, `[{"id":1,"name":"Escola Central"},{"id":2,"name":"Creche Sul"}]`)
	h := NewHandler(fb.Client(t), zap.NewNop())

	rec := testutil.NewRecorder()
	Routes(h).ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", "", testutil.Manager()))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Unidades: Escola Central, Creche Sul")
	rec.AssertContains(t, `href="/relatorios"`)
}

func TestIndex_UnitsUnavailable(t *testing.T) {
	testutil.MustBootTemplates(t)
	fb := testutil.NewFakeBackend(t)
	fb.JSON("GET /user-unit/42/units", http.StatusInternalServerError, `{}`)
	h := NewHandler(fb.Client(t), zap.NewNop())

	rec := testutil.NewRecorder()
	h.Index(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", "", testutil.Manager()))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `href="/relatorios"`)
}
