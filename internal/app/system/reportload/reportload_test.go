package reportload

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/locale"
	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	mu      sync.Mutex
	reports map[string]*models.MonthlyReport
	errs    map[string]error
	delays  map[string]time.Duration
	months  []string
}

func (f *fakeFetcher) MyReport(ctx context.Context, _ string, month string) (*models.MonthlyReport, error) {
	f.mu.Lock()
	f.months = append(f.months, month)
	d := f.delays[month]
	f.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[month]; err != nil {
		return nil, err
	}
	return f.reports[month], nil
}

type discards struct {
	mu     sync.Mutex
	causes []string
}

func (d *discards) ObservePreviousDiscarded(cause string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.causes = append(d.causes, cause)
}

func report(name string, pct float64) *models.MonthlyReport {
	r := &models.MonthlyReport{UnitName: name}
	r.Metrics.FrequencyPct = pct
	return r
}

func TestLoadBoth(t *testing.T) {
	f := &fakeFetcher{reports: map[string]*models.MonthlyReport{
		"2025-01": report("Escola A", 72),
		"2024-12": report("Escola A", 68),
	}}
	l := New(f, time.Second, zap.NewNop())

	res, err := l.Load(context.Background(), "tok", locale.MonthKey{Year: 2025, Month: time.January})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Current == nil || res.Current.Metrics.FrequencyPct != 72 {
		t.Errorf("Current = %+v", res.Current)
	}
	if res.Previous == nil || res.Previous.Metrics.FrequencyPct != 68 {
		t.Errorf("Previous = %+v, want the December report", res.Previous)
	}
}

func TestLoadCurrentErrorFails(t *testing.T) {
	boom := errors.New("boom")
	f := &fakeFetcher{errs: map[string]error{"2025-10": boom}}
	l := New(f, time.Second, zap.NewNop())

	_, err := l.Load(context.Background(), "tok", locale.MonthKey{Year: 2025, Month: time.October})
	if !errors.Is(err, boom) {
		t.Errorf("Load() error = %v, want boom", err)
	}
}

func TestLoadPreviousErrorIgnored(t *testing.T) {
	f := &fakeFetcher{
		reports: map[string]*models.MonthlyReport{"2025-10": report("Escola A", 72)},
		errs:    map[string]error{"2025-09": errors.New("404")},
	}
	d := &discards{}
	l := New(f, time.Second, zap.NewNop())
	l.SetObserver(d)

	res, err := l.Load(context.Background(), "tok", locale.MonthKey{Year: 2025, Month: time.October})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Previous != nil {
		t.Error("Previous should be nil")
	}
	if len(d.causes) != 1 || d.causes[0] != CauseError {
		t.Errorf("causes = %v", d.causes)
	}
}

func TestLoadPreviousLate(t *testing.T) {
	f := &fakeFetcher{
		reports: map[string]*models.MonthlyReport{
			"2025-10": report("Escola A", 72),
			"2025-09": report("Escola A", 60),
		},
		delays: map[string]time.Duration{"2025-09": 5 * time.Second},
	}
	d := &discards{}
	l := New(f, 20*time.Millisecond, zap.NewNop())
	l.SetObserver(d)

	start := time.Now()
	res, err := l.Load(context.Background(), "tok", locale.MonthKey{Year: 2025, Month: time.October})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Load() waited %v for a late previous month", elapsed)
	}
	if res.Previous != nil {
		t.Error("late Previous should be discarded")
	}
	if len(d.causes) != 1 || d.causes[0] != CauseLate {
		t.Errorf("causes = %v", d.causes)
	}
}

func TestLoadRequestsBothMonths(t *testing.T) {
	f := &fakeFetcher{reports: map[string]*models.MonthlyReport{}}
	l := New(f, time.Second, zap.NewNop())

	if _, err := l.Load(context.Background(), "tok", locale.MonthKey{Year: 2025, Month: time.March}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	for _, m := range f.months {
		seen[m] = true
	}
	if !seen["2025-03"] || !seen["2025-02"] || len(f.months) != 2 {
		t.Errorf("months fetched = %v", f.months)
	}
}

func TestNewDefaultGrace(t *testing.T) {
	if l := New(&fakeFetcher{}, 0, zap.NewNop()); l.grace != DefaultGrace {
		t.Errorf("grace = %v, want %v", l.grace, DefaultGrace)
	}
}

func TestLoadConcurrentSelectionsKeepTheirPrevious(t *testing.T) {
	f := &fakeFetcher{
		reports: map[string]*models.MonthlyReport{
			"2025-03": report("março", 70), "2025-02": report("fevereiro", 60),
			"2025-07": report("julho", 90), "2025-06": report("junho", 80),
		},
		// The earlier selection's previous month resolves last.
		delays: map[string]time.Duration{"2025-02": 40 * time.Millisecond},
	}
	l := New(f, time.Second, zap.NewNop())

	months := []locale.MonthKey{{Year: 2025, Month: time.March}, {Year: 2025, Month: time.July}}
	want := []string{"fevereiro", "junho"}
	results := make([]Result, len(months))

	var wg sync.WaitGroup
	for i, m := range months {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := l.Load(context.Background(), "tok", m)
			if err != nil {
				t.Errorf("Load(%s) error = %v", m, err)
			}
			results[i] = res
		}()
	}
	wg.Wait()

	for i, res := range results {
		if res.Previous == nil || res.Previous.UnitName != want[i] {
			t.Errorf("Load(%s).Previous = %+v, want %s", months[i], res.Previous, want[i])
		}
	}
}
