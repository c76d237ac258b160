// Package reportload fetches the report of a selected month together with
// the report of the month before it, which only feeds the attendance trend.
package reportload

import (
	"context"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/locale"
	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
	"go.uber.org/zap"
)

// DefaultGrace is how long the previous month may lag behind the current one.
const DefaultGrace = 300 * time.Millisecond

// Causes passed to Observer.ObservePreviousDiscarded.
const (
	CauseLate  = "late"
	CauseError = "error"
)

// Fetcher loads one month's report.
type Fetcher interface {
	MyReport(ctx context.Context, token, month string) (*models.MonthlyReport, error)
}

// Observer is told when a previous-month result is not used.
type Observer interface {
	ObservePreviousDiscarded(cause string)
}

// Result is the outcome of Load. Previous is nil when it was unavailable.
type Result struct {
	Month    locale.MonthKey
	Current  *models.MonthlyReport
	Previous *models.MonthlyReport
}

type fetched struct {
	report *models.MonthlyReport
	err    error
}

// Loader runs the two fetches.
type Loader struct {
	fetcher  Fetcher
	grace    time.Duration
	observer Observer
	logger   *zap.Logger
}

// New creates a Loader. grace <= 0 uses DefaultGrace.
func New(f Fetcher, grace time.Duration, logger *zap.Logger) *Loader {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Loader{fetcher: f, grace: grace, logger: logger}
}

// SetObserver installs o.
func (l *Loader) SetObserver(o Observer) { l.observer = o }

// Load fetches month and month.Previous() concurrently.
//
// The current fetch decides success: its error is returned as is. The
// previous fetch is best effort; it is used only if it completes within the
// grace period after the current one. Each call owns its channel, so a
// result can never land on a later request for another month.
func (l *Loader) Load(ctx context.Context, token string, month locale.MonthKey) (Result, error) {
	prevCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	prevKey := month.Previous()
	prevCh := make(chan fetched, 1)
	go func() {
		r, err := l.fetcher.MyReport(prevCtx, token, prevKey.String())
		prevCh <- fetched{report: r, err: err}
	}()

	current, err := l.fetcher.MyReport(ctx, token, month.String())
	if err != nil {
		return Result{}, err
	}
	res := Result{Month: month, Current: current}

	timer := time.NewTimer(l.grace)
	defer timer.Stop()

	select {
	case p := <-prevCh:
		if p.err != nil {
			l.discard(CauseError, month, p.err)
		} else {
			res.Previous = p.report
		}
	case <-timer.C:
		l.discard(CauseLate, month, nil)
	case <-ctx.Done():
		l.discard(CauseLate, month, ctx.Err())
	}
	return res, nil
}

func (l *Loader) discard(cause string, month locale.MonthKey, err error) {
	fields := []zap.Field{
		zap.String("cause", cause),
		zap.String("month", month.String()),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	l.logger.Debug("previous month report discarded", fields...)
	if l.observer != nil {
		l.observer.ObservePreviousDiscarded(cause)
	}
}
