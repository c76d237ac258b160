package authapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/gestaoalimentar/internal/app/store/audit"
	"github.com/dalemusser/gestaoalimentar/internal/testutil"
)

func TestSendCode(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		reply      any
		wantStatus int
		wantBody   string
	}{
		{"acknowledged", http.StatusOK, map[string]string{"message": "enviado"}, http.StatusOK, `{"ok":true}`},
		{"no message", http.StatusOK, map[string]string{}, http.StatusBadGateway, MsgSendCodeFailed},
		{"unknown email", http.StatusNotFound, map[string]string{"detail": "Usuário não encontrado"}, http.StatusNotFound, "Usuário não encontrado"},
		{"rejected without detail", http.StatusBadRequest, map[string]string{}, http.StatusBadRequest, MsgSendCodeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.fb.JSON("POST /auth/send-code", tt.status, tt.reply)

			rec := httptest.NewRecorder()
			f.h.SendCode(rec, testutil.NewRequest(http.MethodPost, "/api/auth/send-code", `{"email":"a@b.com"}`))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %s, want %s", rec.Body.String(), tt.wantBody)
			}
			if got := f.sink.types(); len(got) != 1 || got[0] != audit.EventResetCodeRequested {
				t.Errorf("audit events = %v", got)
			}
		})
	}
}

func TestSendCode_MissingEmail(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.h.SendCode(rec, testutil.NewRequest(http.MethodPost, "/api/auth/send-code", `{"email":"  "}`))

	if rec.Code != http.StatusBadRequest || errorOf(t, rec) != MsgMissingEmail {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestValidateCode(t *testing.T) {
	f := newFixture(t)
	f.fb.JSON("POST /auth/validate-code", http.StatusOK, map[string]string{
		"message":              "ok",
		"reset_password_token": "reset-abc",
	})

	rec := httptest.NewRecorder()
	f.h.ValidateCode(rec, testutil.NewRequest(http.MethodPost, "/api/auth/validate-code", `{"code":"123456"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		OK    bool   `json:"ok"`
		Token string `json:"reset_password_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.OK || body.Token != "reset-abc" {
		t.Errorf("body = %+v", body)
	}
}

func TestValidateCode_MissingToken(t *testing.T) {
	f := newFixture(t)
	f.fb.JSON("POST /auth/validate-code", http.StatusOK, map[string]string{"message": "ok"})

	rec := httptest.NewRecorder()
	f.h.ValidateCode(rec, testutil.NewRequest(http.MethodPost, "/api/auth/validate-code", `{"code":"123456"}`))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", rec.Code)
	}
	if got := f.sink.types(); len(got) != 1 || got[0] != audit.EventVerificationCodeError {
		t.Errorf("audit events = %v", got)
	}
}

func TestResetPassword(t *testing.T) {
	f := newFixture(t)
	f.fb.JSON("POST /auth/reset-password", http.StatusOK, map[string]string{"message": "senha alterada"})

	rec := httptest.NewRecorder()
	f.h.ResetPassword(rec, testutil.NewRequest(http.MethodPost, "/api/auth/reset-password",
		`{"password":"nova","confirm":"nova","token":"reset-abc"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	call, _ := f.fb.LastCall("/auth/reset-password")
	if !strings.Contains(call.Body, `"token":"reset-abc"`) || !strings.Contains(call.Body, `"confirm":"nova"`) {
		t.Errorf("backend body = %s", call.Body)
	}

	rec = httptest.NewRecorder()
	f.h.ResetPassword(rec, testutil.NewRequest(http.MethodPost, "/api/auth/reset-password", `{"password":"nova"}`))
	if rec.Code != http.StatusBadRequest || errorOf(t, rec) != MsgMissingResetToken {
		t.Errorf("missing token: got %d %s", rec.Code, rec.Body.String())
	}
}

func TestVerifyEmailFlow_PassesBodyThrough(t *testing.T) {
	f := newFixture(t)
	f.fb.JSON("POST /auth/send-code-verify-email", http.StatusOK, map[string]string{"status": "sent"})
	f.fb.JSON("POST /auth/verify-email", http.StatusOK, map[string]bool{"verified": true})

	rec := httptest.NewRecorder()
	f.h.SendVerifyEmailCode(rec, testutil.NewRequest(http.MethodPost, "/", `{"email":"a@b.com"}`))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"sent"`) {
		t.Errorf("send: got %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	f.h.VerifyEmail(rec, testutil.NewRequest(http.MethodPost, "/", `{"code":"999"}`))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"verified":true`) {
		t.Errorf("verify: got %d %s", rec.Code, rec.Body.String())
	}

	want := []string{audit.EventVerifyEmailRequested, audit.EventEmailVerified}
	if got := f.sink.types(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("audit events = %v, want %v", got, want)
	}
}

func TestVerifyEmail_Rejected(t *testing.T) {
	f := newFixture(t)
	f.fb.JSON("POST /auth/verify-email", http.StatusBadRequest, map[string]string{"detail": "Código inválido"})

	rec := httptest.NewRecorder()
	f.h.VerifyEmail(rec, testutil.NewRequest(http.MethodPost, "/", `{"code":"000"}`))

	if rec.Code != http.StatusBadRequest || errorOf(t, rec) != "Código inválido" {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}
