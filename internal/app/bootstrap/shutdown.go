// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown runs after the HTTP server has drained. Background tasks stop
// first so no job touches Mongo after it disconnects. Every failure is
// logged; the joined errors are returned to WAFFLE.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	var errs []error

	if taskRunner != nil {
		if err := taskRunner.Stop(ctx); err != nil {
			logger.Warn("background tasks did not stop in time", zap.Error(err))
			errs = append(errs, fmt.Errorf("tasks: %w", err))
		}
	}

	if deps.MongoClient != nil {
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("mongo: %w", err))
		}
	}

	logger.Info("shutdown complete", zap.Int("errors", len(errs)))
	return errors.Join(errs...)
}
