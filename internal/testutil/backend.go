package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/backend"
	"go.uber.org/zap"
)

// Call is one request received by a FakeBackend.
type Call struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          string
}

// FakeBackend is an httptest server standing in for the external backend.
// Routes use http.ServeMux patterns ("GET /units/{id}").
type FakeBackend struct {
	Server *httptest.Server

	mux   *http.ServeMux
	mu    sync.Mutex
	calls []Call
}

// NewFakeBackend starts a server closed at test cleanup.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{mux: http.NewServeMux()}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Server.Close)
	return fb
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	fb.mu.Lock()
	fb.calls = append(fb.calls, Call{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		Body:          string(body),
	})
	fb.mu.Unlock()
	r.Body = io.NopCloser(bytes.NewReader(body))
	fb.mux.ServeHTTP(w, r)
}

// Handle registers h for pattern.
func (fb *FakeBackend) Handle(pattern string, h http.HandlerFunc) {
	fb.mux.HandleFunc(pattern, h)
}

// JSON registers a handler answering pattern with status and v encoded.
func (fb *FakeBackend) JSON(pattern string, status int, v any) {
	fb.Handle(pattern, func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, v)
	})
}

// Calls returns the requests received so far.
func (fb *FakeBackend) Calls() []Call {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]Call(nil), fb.calls...)
}

// LastCall returns the most recent request to path, if any.
func (fb *FakeBackend) LastCall(path string) (Call, bool) {
	calls := fb.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Path == path {
			return calls[i], true
		}
	}
	return Call{}, false
}

// Client returns a backend client pointed at the server.
func (fb *FakeBackend) Client(t *testing.T) *backend.Client {
	t.Helper()
	c, err := backend.New(backend.Config{BaseURL: fb.Server.URL}, zap.NewNop())
	if err != nil {
		t.Fatalf("backend.New() error = %v", err)
	}
	return c
}

// WriteJSON writes v as a JSON response. A string or []byte is written raw.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	switch b := v.(type) {
	case string:
		_, _ = io.WriteString(w, b)
	case []byte:
		_, _ = w.Write(b)
	default:
		_ = json.NewEncoder(w).Encode(v)
	}
}
