package tasks

import (
	"context"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Evicter drops idle rate-limit buckets.
type Evicter interface {
	Evict(idle time.Duration) int
}

// Pruner deletes audit events older than a cutoff.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RateLimitEvictionJob drops buckets unused for longer than idle.
func RateLimitEvictionJob(l Evicter, idle time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "ratelimit-eviction",
		Interval: idle,
		Run: func(ctx context.Context) error {
			if n := l.Evict(idle); n > 0 {
				logger.Debug("evicted idle rate-limit buckets", zap.Int("count", n))
			}
			return nil
		},
	}
}

// AuditRetentionJob deletes audit events older than retention.
func AuditRetentionJob(p Pruner, retention time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "audit-retention",
		Interval: 6 * time.Hour,
		Timeout:  timeouts.Batch(),
		Run: func(ctx context.Context) error {
			n, err := p.DeleteOlderThan(ctx, time.Now().Add(-retention))
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("pruned audit events",
					zap.Int64("deleted", n),
					zap.Duration("retention", retention))
			}
			return nil
		},
	}
}
