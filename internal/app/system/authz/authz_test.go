package authz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/auth"
	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
)

func TestCallerFrom(t *testing.T) {
	tests := []struct {
		name   string
		user   *auth.SessionUser
		want   Caller
		wantOK bool
	}{
		{"no user", nil, Caller{}, false},
		{"user without token", &auth.SessionUser{ID: "7"}, Caller{}, false},
		{"user without id", &auth.SessionUser{Token: "t"}, Caller{}, false},
		{"authenticated", &auth.SessionUser{ID: "7", Token: "t"}, Caller{UserID: "7", Token: "t"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				req = auth.WithTestUser(req, tt.user)
			}
			got, ok := CallerFrom(req)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("CallerFrom() = %+v, %v; want %+v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRequireCaller(t *testing.T) {
	h := RequireCaller(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/units/my-units", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without caller: status = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := auth.WithTestUser(httptest.NewRequest(http.MethodGet, "/", nil), &auth.SessionUser{ID: "1", Token: "t"})
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("with caller: status = %d, want 204", rec.Code)
	}
}

type stubLister struct {
	units []models.Unit
	err   error
	token string
	user  string
}

func (s *stubLister) UserUnits(_ context.Context, token, userID string) ([]models.Unit, error) {
	s.token, s.user = token, userID
	return s.units, s.err
}

func TestPrimaryUnit(t *testing.T) {
	caller := Caller{UserID: "9", Token: "tok"}

	l := &stubLister{units: []models.Unit{{ID: models.NumberID(3), Name: "Centro"}, {ID: models.NumberID(4)}}}
	u, err := PrimaryUnit(context.Background(), l, caller)
	if err != nil {
		t.Fatalf("PrimaryUnit() error = %v", err)
	}
	if u.ID != models.NumberID(3) {
		t.Errorf("unit = %q, want first unit 3", u.ID)
	}
	if l.token != "tok" || l.user != "9" {
		t.Errorf("lister called with token=%q user=%q", l.token, l.user)
	}

	if _, err := PrimaryUnit(context.Background(), &stubLister{}, caller); !errors.Is(err, ErrNoUnits) {
		t.Errorf("no units: err = %v, want ErrNoUnits", err)
	}

	boom := errors.New("boom")
	if _, err := PrimaryUnit(context.Background(), &stubLister{err: boom}, caller); !errors.Is(err, boom) {
		t.Errorf("lister error: err = %v, want %v", err, boom)
	}
}
