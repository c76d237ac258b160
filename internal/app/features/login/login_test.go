package login

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/flash"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/ratelimit"
	"github.com/dalemusser/gestaoalimentar/internal/testutil"
	"go.uber.org/zap"
)

type fakeSessions struct {
	token, userID string
	err           error
}

func (f *fakeSessions) Establish(w http.ResponseWriter, token, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.token, f.userID = token, userID
	return nil
}

type fixture struct {
	fb       *testutil.FakeBackend
	sessions *fakeSessions
	flash    *flash.Store
	h        *Handler
}

func newFixture(t *testing.T, limiter *ratelimit.Limiter) *fixture {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	fl, err := flash.New(strings.Repeat("f", 40), false, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	s := &fakeSessions{}
	return &fixture{
		fb:       fb,
		sessions: s,
		flash:    fl,
		h:        NewHandler(fb.Client(t), s, fl, limiter, nil, zap.NewNop()),
	}
}

func postForm(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// follow replays the cookies set by rec on a GET to its Location.
func follow(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, rec.Header().Get("Location"), nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestHandleLogin_Success(t *testing.T) {
	f := newFixture(t, nil)
	f.fb.JSON("POST /auth/login", http.StatusOK, `{"access_token":"tok-1","user":{"id":42,"role":"gestor"}}`)

	rec := httptest.NewRecorder()
	f.h.handleLogin(rec, postForm(url.Values{
		"email":    {"ana@escola.org"},
		"password": {"segredo"},
		"returnTo": {"/relatorios?month=2025-10"},
	}))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/relatorios?month=2025-10" {
		t.Errorf("Location = %q", loc)
	}
	if f.sessions.token != "tok-1" || f.sessions.userID != "42" {
		t.Errorf("session = %+v", f.sessions)
	}
}

func TestHandleLogin_UnsafeReturnTo(t *testing.T) {
	f := newFixture(t, nil)
	f.fb.JSON("POST /auth/login", http.StatusOK, `{"access_token":"tok-1","user":{"id":42,"role":"gestor"}}`)

	rec := httptest.NewRecorder()
	f.h.handleLogin(rec, postForm(url.Values{
		"email":    {"ana@escola.org"},
		"password": {"segredo"},
		"returnTo": {"//evil.example/steal"},
	}))

	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestHandleLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		form    url.Values
		wantMsg string
	}{
		{"wrong password", http.StatusUnauthorized, `{"detail":"Credenciais inválidas"}`,
			url.Values{"email": {"ana@escola.org"}, "password": {"x"}}, MsgInvalidCredentials},
		{"other role", http.StatusOK, `{"access_token":"t","user":{"id":7,"role":"nutricionista"}}`,
			url.Values{"email": {"ana@escola.org"}, "password": {"x"}}, "Acesso não permitido."},
		{"incomplete response", http.StatusOK, `{"user":{"id":7,"role":"gestor"}}`,
			url.Values{"email": {"ana@escola.org"}, "password": {"x"}}, MsgUnavailable},
		{"missing password", 0, "",
			url.Values{"email": {"ana@escola.org"}}, MsgMissingCredentials},
		{"invalid email", 0, "",
			url.Values{"email": {"ana"}, "password": {"x"}}, "Informe um e-mail válido."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			if tt.status != 0 {
				f.fb.JSON("POST /auth/login", tt.status, tt.body)
			}

			rec := httptest.NewRecorder()
			f.h.handleLogin(rec, postForm(tt.form))

			if rec.Code != http.StatusSeeOther {
				t.Fatalf("status = %d", rec.Code)
			}
			loc := rec.Header().Get("Location")
			if !strings.HasPrefix(loc, "/auth/login") {
				t.Errorf("Location = %q", loc)
			}
			if strings.Contains(loc, "password") {
				t.Error("password must not be echoed")
			}
			if f.sessions.token != "" {
				t.Error("no session may be established")
			}

			rec2 := httptest.NewRecorder()
			if got := f.flash.First(rec2, follow(rec)); got != tt.wantMsg {
				t.Errorf("flash = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestHandleLogin_RateLimited(t *testing.T) {
	limiter := ratelimit.New(ratelimit.Config{Enabled: true, PerMinute: 1, Burst: 1}, zap.NewNop())
	f := newFixture(t, limiter)
	f.fb.JSON("POST /auth/login", http.StatusUnauthorized, `{}`)

	form := url.Values{"email": {"ana@escola.org"}, "password": {"x"}}
	f.h.handleLogin(httptest.NewRecorder(), postForm(form))

	rec := httptest.NewRecorder()
	f.h.handleLogin(rec, postForm(form))

	if got := f.flash.First(httptest.NewRecorder(), follow(rec)); got != MsgTooManyAttempts {
		t.Errorf("flash = %q", got)
	}
	if n := len(f.fb.Calls()); n != 1 {
		t.Errorf("backend calls = %d, want 1", n)
	}
}

func TestHandleLogin_SessionWriteFails(t *testing.T) {
	f := newFixture(t, nil)
	f.sessions.err = errors.New("encode failed")
	f.fb.JSON("POST /auth/login", http.StatusOK, `{"access_token":"tok-1","user":{"id":42,"role":"gestor"}}`)

	rec := httptest.NewRecorder()
	f.h.handleLogin(rec, postForm(url.Values{"email": {"ana@escola.org"}, "password": {"x"}}))

	if got := f.flash.First(httptest.NewRecorder(), follow(rec)); got != MsgUnavailable {
		t.Errorf("flash = %q", got)
	}
}

func TestShowLogin(t *testing.T) {
	testutil.MustBootTemplates(t)
	f := newFixture(t, nil)

	rec := testutil.NewRecorder()
	f.h.showLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/login?returnTo=%2Frelatorios&email=ana%40escola.org", nil))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `name="returnTo" value="/relatorios"`)
	rec.AssertContains(t, `value="ana@escola.org"`)
	rec.AssertContains(t, `action="/auth/login"`)
}

func TestShowLogin_DropsForeignReturnTo(t *testing.T) {
	testutil.MustBootTemplates(t)
	f := newFixture(t, nil)

	rec := testutil.NewRecorder()
	f.h.showLogin(rec, httptest.NewRequest(http.MethodGet, "/auth/login?returnTo=https%3A%2F%2Fevil.example", nil))

	if strings.Contains(rec.Body.String(), "evil.example") {
		t.Error("foreign returnTo must not be rendered")
	}
}
