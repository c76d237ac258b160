// Package ratelimit throttles sensitive endpoints (login and verification
// codes) with one token bucket per client IP.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/network"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// MsgTooManyRequests is the 429 body.
const MsgTooManyRequests = "Muitas tentativas. Aguarde um momento e tente novamente."

// Config configures a Limiter.
type Config struct {
	Enabled   bool
	PerMinute int // sustained requests per minute per client (default 10)
	Burst     int // bucket size (default 5)
}

// Observer is told about every rejected request.
type Observer interface {
	ObserveRateLimited(path string)
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// Limiter holds the buckets. The zero value is not usable; call New.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	limit    rate.Limit
	burst    int
	enabled  bool
	now      func() time.Time
	observer Observer
	logger   *zap.Logger
}

// New creates a Limiter.
func New(cfg Config, logger *zap.Logger) *Limiter {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 10
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 5
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Every(time.Minute / time.Duration(cfg.PerMinute)),
		burst:   cfg.Burst,
		enabled: cfg.Enabled,
		now:     time.Now,
		logger:  logger,
	}
}

// SetObserver installs o.
func (l *Limiter) SetObserver(o Observer) { l.observer = o }

// Allow consumes one token for key.
func (l *Limiter) Allow(key string) bool {
	if !l.enabled {
		return true
	}
	now := l.now()

	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	return b.lim.AllowN(now, 1)
}

// Middleware rejects requests over the limit with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return l.Guard(nil)(next)
}

// Guard is Middleware with onReject called for every rejected request
// before the 429 is written.
func (l *Limiter) Guard(onReject func(r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := network.ClientIP(r)
			if !l.Allow(ip) {
				l.logger.Warn("rate limit exceeded",
					zap.String("ip", ip),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method))
				if l.observer != nil {
					l.observer.ObserveRateLimited(r.URL.Path)
				}
				if onReject != nil {
					onReject(r)
				}
				w.Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
				jsonutil.TooManyRequests(w, MsgTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (l *Limiter) retryAfterSeconds() int {
	secs := int(time.Duration(float64(time.Second) / float64(l.limit)).Seconds())
	if secs < 1 {
		secs = 1
	}
	return secs
}

// Evict drops buckets idle for longer than idle and returns how many were
// removed.
func (l *Limiter) Evict(idle time.Duration) int {
	cutoff := l.now().Add(-idle)

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for k, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, k)
			n++
		}
	}
	return n
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
