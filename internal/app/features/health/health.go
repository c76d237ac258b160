// internal/app/features/health/health.go
package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Pinger is a dependency that can be pinged.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MongoPinger pings the primary of a Mongo deployment.
type MongoPinger struct{ Client *mongo.Client }

// Ping implements Pinger.
func (m MongoPinger) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

// Handler provides health check endpoints.
type Handler struct {
	mongo   Pinger
	backend Pinger
	logger  *zap.Logger
}

// NewHandler creates a new health check Handler. mongo may be nil when
// audit storage is not configured.
func NewHandler(mongo Pinger, backend Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		mongo:   mongo,
		backend: backend,
		logger:  logger,
	}
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	return r
}

// MountRootEndpoints adds /readyz and /livez directly on the root router.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

func (h *Handler) ping(ctx context.Context, name string, p Pinger) bool {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Ping(), h.logger, "health "+name)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		h.logger.Warn("health check: dependency unavailable",
			zap.String("service", name),
			zap.Error(err))
		return false
	}
	return true
}

// Check pings MongoDB and the backend. Either failing degrades the
// service to 503.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := Response{
		Status:   "ok",
		Services: make(map[string]string),
	}

	for _, dep := range []struct {
		name string
		p    Pinger
	}{{"mongodb", h.mongo}, {"backend", h.backend}} {
		if dep.p == nil {
			continue
		}
		if h.ping(r.Context(), dep.name, dep.p) {
			resp.Services[dep.name] = "ok"
		} else {
			resp.Status = "degraded"
			resp.Services[dep.name] = "unavailable"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(resp)
}

// Ready reports whether the service can answer requests: the backend must
// be reachable, since every page depends on it.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.backend != nil && !h.ping(r.Context(), "backend", h.backend) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"not ready"}`))
		return
	}
	w.Write([]byte(`{"status":"ready"}`))
}

// Live checks if the process is alive.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"alive"}`))
}
