// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/gestaoalimentar/internal/app/store/audit"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/backend"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/drive"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/metrics"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the connections and long-lived clients built in ConnectDB
// and handed to EnsureSchema, Startup, BuildHandler and Shutdown.
type DBDeps struct {
	// MongoDB holds the audit trail only; all domain data lives in the backend.
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database
	AuditStore    *audit.Store

	// Backend is the client for the external backend API.
	Backend *backend.Client

	// Drive is nil when Google Drive credentials are not configured.
	Drive *drive.Uploader

	// Limiter guards login and verification-code endpoints.
	Limiter *ratelimit.Limiter

	// Metrics is the Prometheus registry shared by every observer.
	Metrics *metrics.Metrics
}
