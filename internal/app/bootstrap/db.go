// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/gestaoalimentar/internal/app/store/audit"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/backend"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/drive"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/indexes"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/metrics"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/ratelimit"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/timeouts"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// ConnectDB connects MongoDB and builds the clients every request shares:
// the backend client, the optional Drive uploader, the rate limiter and the
// metrics registry.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	poolCfg := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		poolCfg.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		poolCfg.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, poolCfg)
	if err != nil {
		return DBDeps{}, err
	}
	db := client.Database(appCfg.MongoDatabase)

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool_size", poolCfg.MaxPoolSize),
		zap.Uint64("min_pool_size", poolCfg.MinPoolSize),
	)

	timeouts.Configure(timeouts.Config{
		Backend:  appCfg.BackendTimeout,
		Validate: appCfg.ValidateTimeout,
	})

	m := metrics.New()

	bc, err := backend.New(backend.Config{
		BaseURL:         appCfg.BackendURL,
		Timeout:         appCfg.BackendTimeout,
		ValidateTimeout: appCfg.ValidateTimeout,
		Observer:        m,
	}, logger)
	if err != nil {
		return DBDeps{}, fmt.Errorf("backend client: %w", err)
	}
	logger.Info("backend client ready",
		zap.String("backend_url", appCfg.BackendURL),
		zap.Duration("timeout", appCfg.BackendTimeout),
	)

	// The uploader outlives ConnectDB's deadline; its token source refreshes
	// on later requests.
	up, err := drive.New(context.Background(), drive.Config{
		ClientID:     appCfg.GoogleClientID,
		ClientSecret: appCfg.GoogleClientSecret,
		RefreshToken: appCfg.GoogleRefreshToken,
		FolderID:     appCfg.GoogleDriveFolderID,
	}, logger)
	switch {
	case errors.Is(err, drive.ErrNotConfigured):
		logger.Info("google drive uploads disabled")
	case err != nil:
		return DBDeps{}, fmt.Errorf("google drive: %w", err)
	default:
		logger.Info("google drive uploads enabled", zap.String("folder_id", appCfg.GoogleDriveFolderID))
	}

	limiter := ratelimit.New(ratelimit.Config{
		Enabled:   appCfg.RateLimitEnabled,
		PerMinute: appCfg.RateLimitPerMinute,
		Burst:     appCfg.RateLimitBurst,
	}, logger)
	limiter.SetObserver(m)

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: db,
		AuditStore:    audit.New(db),
		Backend:       bc,
		Drive:         up,
		Limiter:       limiter,
		Metrics:       m,
	}, nil
}

// EnsureSchema creates the audit collection with its validator, then its
// indexes. The context carries coreCfg.IndexBootTimeout.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	logger.Info("ensuring collections and validators")
	if err := validators.EnsureAll(ctx, db, logger); err != nil {
		logger.Error("failed to ensure validators", zap.Error(err))
		return err
	}

	logger.Info("ensuring database indexes")
	if err := indexes.EnsureAll(ctx, db, logger); err != nil {
		logger.Error("failed to ensure indexes", zap.Error(err))
		return err
	}

	logger.Info("database schema ensured successfully")
	return nil
}
