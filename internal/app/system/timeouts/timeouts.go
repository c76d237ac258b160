// Package timeouts holds the deadlines applied to outbound work.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults, used until Configure is called.
const (
	DefaultBackend  = 10 * time.Second
	DefaultValidate = 3 * time.Second
	DefaultPing     = 2 * time.Second
	DefaultUpload   = 60 * time.Second
	DefaultStore    = 5 * time.Second
	DefaultBatch    = 60 * time.Second
)

var mu sync.RWMutex

var (
	backend  = DefaultBackend
	validate = DefaultValidate
	ping     = DefaultPing
	upload   = DefaultUpload
	store    = DefaultStore
	batch    = DefaultBatch
)

// Backend is the deadline of one backend API call.
func Backend() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Validate is the deadline of one token validation call.
func Validate() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return validate
}

// Ping is the deadline of health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Upload is the deadline of one Drive upload.
func Upload() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return upload
}

// Store is the deadline of one Mongo operation.
func Store() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return store
}

// Batch is the deadline of one background job run.
func Batch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return batch
}

// Config holds timeout values. Zero fields are left unchanged.
type Config struct {
	Backend  time.Duration
	Validate time.Duration
	Ping     time.Duration
	Upload   time.Duration
	Store    time.Duration
	Batch    time.Duration
}

// Configure sets custom timeout values.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Backend > 0 {
		backend = cfg.Backend
	}
	if cfg.Validate > 0 {
		validate = cfg.Validate
	}
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Upload > 0 {
		upload = cfg.Upload
	}
	if cfg.Store > 0 {
		store = cfg.Store
	}
	if cfg.Batch > 0 {
		batch = cfg.Batch
	}
}

// Reset restores the defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	backend = DefaultBackend
	validate = DefaultValidate
	ping = DefaultPing
	upload = DefaultUpload
	store = DefaultStore
	batch = DefaultBatch
}

// Current returns the current configuration.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Backend: backend, Validate: validate, Ping: ping, Upload: upload, Store: store, Batch: batch}
}

// WithTimeout derives a context with timeout whose cancel func logs when the
// deadline was hit.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
