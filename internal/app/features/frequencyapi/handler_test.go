package frequencyapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/testutil"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, fb *testutil.FakeBackend) *Handler {
	t.Helper()
	h := NewHandler(fb.Client(t), zap.NewNop())
	h.now = func() time.Time { return time.Date(2025, 10, 14, 15, 0, 0, 0, time.UTC) }
	return h
}

func TestMyFrequencies(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.JSON("GET /user-unit/42/units", http.StatusOK, `[{"id":3,"name":"Centro"}]`)
	fb.JSON("GET /units/3", http.StatusOK, `{"id":3,"name":"Centro Comunitário","capacity":150}`)
	fb.JSON("GET /frequency", http.StatusOK, `[{"id":1,"date":"2025-10-13","amount":90},{"id":2,"date":"2025-10-14","amount":110}]`)
	h := newHandler(t, fb)

	rec := testutil.NewRecorder()
	h.MyFrequencies(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/api/frequency/my-frequencies", "", testutil.Manager()))

	rec.AssertStatus(t, http.StatusOK)
	var body struct {
		OK             bool              `json:"ok"`
		Frequencies    []json.RawMessage `json:"frequencies"`
		Unit           map[string]any    `json:"unit"`
		TodayFrequency map[string]any    `json:"todayFrequency"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Frequencies) != 2 {
		t.Errorf("frequencies = %d, want 2", len(body.Frequencies))
	}
	if body.Unit["name"] != "Centro Comunitário" || body.Unit["capacity"] != float64(150) {
		t.Errorf("unit not merged with detail: %v", body.Unit)
	}
	if body.TodayFrequency["amount"] != float64(110) {
		t.Errorf("todayFrequency = %v", body.TodayFrequency)
	}

	call, _ := fb.LastCall("/frequency")
	if call.Query != "unit_id=3" {
		t.Errorf("frequency query = %q", call.Query)
	}
}

func TestMyFrequencies_DetailOptional(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.JSON("GET /user-unit/42/units", http.StatusOK, `[{"id":3,"name":"Centro"}]`)
	fb.JSON("GET /units/3", http.StatusInternalServerError, `{}`)
	fb.JSON("GET /frequency", http.StatusOK, `[]`)
	h := newHandler(t, fb)

	rec := testutil.NewRecorder()
	h.MyFrequencies(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", "", testutil.Manager()))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"name":"Centro"`)
	rec.AssertContains(t, `"todayFrequency":null`)
}

func TestMyFrequencies_NoUnits(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.JSON("GET /user-unit/42/units", http.StatusOK, `[]`)
	h := newHandler(t, fb)

	rec := testutil.NewRecorder()
	h.MyFrequencies(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/", "", testutil.Manager()))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"frequencies":[]`)
	rec.AssertContains(t, `"unit":null`)
	rec.AssertContains(t, authz.MsgNoUnits)
}

func TestCreate(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.JSON("GET /user-unit/42/units", http.StatusOK, `[{"id":3,"capacity":100}]`)
	fb.JSON("POST /frequency", http.StatusOK, `{"id":9,"unit_id":3,"amount":80,"date":"2025-10-14"}`)
	h := newHandler(t, fb)

	rec := testutil.NewRecorder()
	h.Create(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/api/frequency/create",
		`{"amount":"80","date":"2025-10-14"}`, testutil.Manager()))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"frequency":{"id":9`)

	call, _ := fb.LastCall("/frequency")
	if call.Body != `{"unit_id":3,"amount":80,"date":"2025-10-14"}` {
		t.Errorf("backend body = %s", call.Body)
	}
	if call.Authorization != "Bearer test-token" {
		t.Errorf("Authorization = %q", call.Authorization)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"missing amount", `{"date":"2025-10-14"}`, MsgMissingFields},
		{"missing date", `{"amount":3}`, MsgMissingFields},
		{"negative amount", `{"amount":-1,"date":"2025-10-14"}`, MsgInvalidAmount},
		{"text amount", `{"amount":"muitos","date":"2025-10-14"}`, MsgInvalidAmount},
		{"fractional amount", `{"amount":2.5,"date":"2025-10-14"}`, MsgInvalidAmount},
		{"brazilian date", `{"amount":3,"date":"14/10/2025"}`, MsgInvalidDate},
		{"impossible date", `{"amount":3,"date":"2025-02-30"}`, MsgInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := testutil.NewFakeBackend(t)
			h := newHandler(t, fb)

			rec := testutil.NewRecorder()
			h.Create(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", tt.body, testutil.Manager()))

			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, tt.wantMsg)
			if n := len(fb.Calls()); n != 0 {
				t.Errorf("backend called %d times for invalid input", n)
			}
		})
	}
}

func TestCreate_ZeroAmountAllowed(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.JSON("GET /user-unit/42/units", http.StatusOK, `[{"id":3,"capacity":100}]`)
	fb.JSON("POST /frequency", http.StatusOK, `{"id":1}`)
	h := newHandler(t, fb)

	rec := testutil.NewRecorder()
	h.Create(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", `{"amount":0,"date":"2025-10-12"}`, testutil.Manager()))

	rec.AssertStatus(t, http.StatusOK)
}

func TestCreate_ExceedsCapacity(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.JSON("GET /user-unit/42/units", http.StatusOK, `[{"id":3}]`)
	fb.JSON("GET /units/3", http.StatusOK, `{"id":3,"capacity":50}`)
	h := newHandler(t, fb)

	rec := testutil.NewRecorder()
	h.Create(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", `{"amount":51,"date":"2025-10-14"}`, testutil.Manager()))

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, capacityMessage(50))
	if _, called := fb.LastCall("/frequency"); called {
		t.Error("record must not be created above capacity")
	}
}

func TestCreate_NoUnits(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.JSON("GET /user-unit/42/units", http.StatusOK, `[]`)
	h := newHandler(t, fb)

	rec := testutil.NewRecorder()
	h.Create(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", `{"amount":1,"date":"2025-10-14"}`, testutil.Manager()))

	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, authz.MsgNoUnits)
}

func TestCreate_BackendRejects(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.JSON("GET /user-unit/42/units", http.StatusOK, `[{"id":3,"capacity":100}]`)
	fb.JSON("POST /frequency", http.StatusConflict, `{"detail":"Frequência já registrada"}`)
	h := newHandler(t, fb)

	rec := testutil.NewRecorder()
	h.Create(rec, testutil.NewAuthenticatedRequest(http.MethodPost, "/", `{"amount":1,"date":"2025-10-14"}`, testutil.Manager()))

	rec.AssertStatus(t, http.StatusConflict)
	rec.AssertContains(t, MsgCreateFailed)
	rec.AssertContains(t, "Frequência já registrada")
}

func TestUpdate(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.JSON("PUT /frequency/{id}", http.StatusOK, `{"id":7,"amount":12}`)
	h := newHandler(t, fb)

	rec := testutil.NewRecorder()
	h.Update(rec, testutil.NewAuthenticatedRequest(http.MethodPut, "/api/frequency/update?frequency_id=7", `{"amount":12}`, testutil.Manager()))

	rec.AssertStatus(t, http.StatusOK)
	call, _ := fb.LastCall("/frequency/7")
	if call.Method != http.MethodPut || call.Body != `{"amount":12}` {
		t.Errorf("backend call = %+v", call)
	}
}

func TestUpdate_Validation(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		body    string
		wantMsg string
	}{
		{"missing id", "/update", `{"amount":1}`, MsgMissingID},
		{"no fields", "/update?frequency_id=7", `{}`, MsgNothingToUpdate},
		{"bad amount", "/update?frequency_id=7", `{"amount":"x"}`, MsgInvalidAmount},
		{"bad date", "/update?frequency_id=7", `{"date":"ontem"}`, MsgInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := testutil.NewFakeBackend(t)
			h := newHandler(t, fb)

			rec := testutil.NewRecorder()
			h.Update(rec, testutil.NewAuthenticatedRequest(http.MethodPut, tt.target, tt.body, testutil.Manager()))

			rec.AssertStatus(t, http.StatusBadRequest)
			rec.AssertContains(t, tt.wantMsg)
			if len(fb.Calls()) != 0 {
				t.Error("backend must not be called")
			}
		})
	}
}

func TestRoutes_MethodNotAllowed(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	router := Routes(newHandler(t, fb))

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest(http.MethodGet, "/create", "", testutil.Manager()))

	rec.AssertStatus(t, http.StatusMethodNotAllowed)
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodPost) {
		t.Errorf("Allow = %q", allow)
	}
}
