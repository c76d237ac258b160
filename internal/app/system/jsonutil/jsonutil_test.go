package jsonutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/backend"
	"go.uber.org/zap"
)

func TestJSON(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		data       any
		wantStatus int
		wantBody   string
	}{
		{"200 with data", http.StatusOK, map[string]string{"message": "olá"}, http.StatusOK, `{"message":"olá"}`},
		{"201 with data", http.StatusCreated, map[string]int{"id": 123}, http.StatusCreated, `{"id":123}`},
		{"nil data", http.StatusOK, nil, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			JSON(rec, tt.status, tt.data)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	Success(rec)
	if got := strings.TrimSpace(rec.Body.String()); got != `{"ok":true}` {
		t.Errorf("body = %q", got)
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(http.ResponseWriter)
		status int
		body   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "Data inválida") }, 400, `{"error":"Data inválida"}`},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "Não autenticado") }, 401, `{"error":"Não autenticado"}`},
		{"forbidden", func(w http.ResponseWriter) { Forbidden(w, "Acesso não permitido.") }, 403, `{"error":"Acesso não permitido."}`},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "x") }, 404, `{"error":"x"}`},
		{"too many", func(w http.ResponseWriter) { TooManyRequests(w, "calma") }, 429, `{"error":"calma"}`},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "falha") }, 500, `{"error":"falha"}`},
		{"with details", func(w http.ResponseWriter) { ErrorWithDetails(w, 422, "x", map[string]int{"a": 1}) }, 422, `{"error":"x","details":{"a":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.body {
				t.Errorf("body = %s, want %s", got, tt.body)
			}
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	MethodNotAllowed(rec, http.MethodPost)
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != "POST" {
		t.Errorf("got %d Allow=%q", rec.Code, rec.Header().Get("Allow"))
	}
}

func TestFromBackend(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantDetail string
	}{
		{
			name:       "status with detail",
			err:        &backend.StatusError{Op: "frequency.create", Status: 422, Body: []byte(`{"detail":"Data futura"}`), Detail: "Data futura"},
			wantStatus: 422,
			wantError:  "Data futura",
			wantDetail: `{"detail":"Data futura"}`,
		},
		{
			name:       "status without detail",
			err:        fmt.Errorf("wrapped: %w", &backend.StatusError{Status: 404, Body: []byte("not found")}),
			wantStatus: 404,
			wantError:  "Erro ao buscar",
			wantDetail: `"not found"`,
		},
		{
			name:       "transport",
			err:        fmt.Errorf("%w: dial tcp", backend.ErrUnavailable),
			wantStatus: 500,
			wantError:  MsgBackendUnreachable,
		},
		{
			name:       "malformed",
			err:        backend.ErrMalformed,
			wantStatus: 500,
			wantError:  MsgBackendUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FromBackend(rec, zap.NewNop(), "op", tt.err, "Erro ao buscar")

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body struct {
				Error   string          `json:"error"`
				Details json.RawMessage `json:"details"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantError {
				t.Errorf("error = %q, want %q", body.Error, tt.wantError)
			}
			if string(body.Details) != tt.wantDetail {
				t.Errorf("details = %s, want %s", body.Details, tt.wantDetail)
			}
		})
	}
}

func TestFromBackendAs(t *testing.T) {
	err := &backend.StatusError{Status: 422, Body: []byte(`{"detail":"Data futura"}`), Detail: "Data futura"}

	rec := httptest.NewRecorder()
	FromBackendAs(rec, zap.NewNop(), "frequency.create", err, "Erro ao criar frequência")

	if rec.Code != 422 {
		t.Errorf("status = %d, want 422", rec.Code)
	}
	var body struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "Erro ao criar frequência" {
		t.Errorf("error = %q, fixed message expected", body.Error)
	}
	if string(body.Details) != `{"detail":"Data futura"}` {
		t.Errorf("details = %s", body.Details)
	}
}

func TestDecode(t *testing.T) {
	type input struct {
		Email string `json:"email"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    string
	}{
		{"valid", `{"email":"a@b.com"}`, false, "a@b.com"},
		{"empty", ``, true, ""},
		{"invalid", `{email}`, true, ""},
		{"trailing data", `{"email":"a@b.com"}{"x":1}`, true, "a@b.com"},
		{"too large", `{"email":"` + strings.Repeat("a", MaxBodyBytes) + `"}`, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var in input
			err := Decode(httptest.NewRecorder(), req, &in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if in.Email != tt.want {
				t.Errorf("Email = %q, want %q", in.Email, tt.want)
			}
		})
	}
}

func TestBodyDetails(t *testing.T) {
	if bodyDetails(nil) != nil {
		t.Error("bodyDetails(nil) != nil")
	}
	if _, ok := bodyDetails([]byte("<html>")).(string); !ok {
		t.Error("non-JSON body not kept as string")
	}
}
