// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/resources"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// rateLimitIdle is how long a client's bucket may sit unused before eviction.
const rateLimitIdle = 10 * time.Minute

// Startup runs once after DB connections and schema setup are complete,
// but before the HTTP handler is built. It registers the shared templates
// and starts the background task runner.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	startTaskRunner(appCfg, deps, logger)
	return nil
}

// taskRunner is the global task runner instance, used for graceful shutdown.
var taskRunner *tasks.Runner

func startTaskRunner(appCfg AppConfig, deps DBDeps, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	taskRunner.Register(tasks.RateLimitEvictionJob(deps.Limiter, rateLimitIdle, logger))

	if appCfg.AuditRetention > 0 && deps.AuditStore != nil {
		taskRunner.Register(tasks.AuditRetentionJob(deps.AuditStore, appCfg.AuditRetention, logger))
	}

	taskRunner.Start()
}
