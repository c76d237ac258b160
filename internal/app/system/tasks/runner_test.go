package tasks_test

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/tasks"
	"go.uber.org/zap"
)

func counting(name string, interval time.Duration, n *atomic.Int32) tasks.Job {
	return tasks.Job{
		Name:     name,
		Interval: interval,
		Run: func(context.Context) error {
			n.Add(1)
			return nil
		},
	}
}

func stop(t *testing.T, r *tasks.Runner, within time.Duration) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), within)
	defer cancel()
	return r.Stop(ctx)
}

func TestRunner_RunsImmediatelyAndOnInterval(t *testing.T) {
	r := tasks.New(zap.NewNop())
	var evictions, prunes atomic.Int32
	r.Register(counting("ratelimit-eviction", 20*time.Millisecond, &evictions))
	r.Register(counting("audit-retention", time.Hour, &prunes))

	r.Start()
	time.Sleep(70 * time.Millisecond)
	if err := stop(t, r, time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if got := evictions.Load(); got < 2 {
		t.Errorf("short-interval job ran %d times, want at least 2", got)
	}
	if got := prunes.Load(); got != 1 {
		t.Errorf("long-interval job ran %d times, want exactly the initial run", got)
	}
}

func TestRunner_StopCancelsRunningJob(t *testing.T) {
	r := tasks.New(zap.NewNop())
	started := make(chan struct{})
	var sawCancel atomic.Bool
	r.Register(tasks.Job{
		Name:     "blocking",
		Interval: time.Hour,
		Run: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			sawCancel.Store(true)
			return ctx.Err()
		},
	})

	r.Start()
	<-started
	if err := stop(t, r, time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !sawCancel.Load() {
		t.Error("job context was not cancelled on Stop")
	}
}

func TestRunner_StopTimesOut(t *testing.T) {
	r := tasks.New(zap.NewNop())
	started := make(chan struct{})
	release := make(chan struct{})
	r.Register(tasks.Job{
		Name:     "stuck",
		Interval: time.Hour,
		Run: func(context.Context) error {
			close(started)
			<-release
			return nil
		},
	})

	r.Start()
	<-started
	err := stop(t, r, 20*time.Millisecond)
	close(release)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Stop = %v, want deadline exceeded", err)
	}
}

func TestRunner_JobTimeout(t *testing.T) {
	r := tasks.New(zap.NewNop())
	deadline := make(chan bool, 1)
	r.Register(tasks.Job{
		Name:     "bounded",
		Interval: time.Hour,
		Timeout:  15 * time.Millisecond,
		Run: func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			deadline <- ok
			<-ctx.Done()
			return ctx.Err()
		},
	})

	r.Start()
	select {
	case ok := <-deadline:
		if !ok {
			t.Error("job context has no deadline")
		}
	case <-time.After(time.Second):
		t.Fatal("job never ran")
	}
	if err := stop(t, r, time.Second); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestRunner_Jobs(t *testing.T) {
	r := tasks.New(zap.NewNop())
	var n atomic.Int32
	r.Register(counting("a", time.Hour, &n))
	r.Register(counting("b", time.Hour, &n))

	if got := r.Jobs(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("Jobs() = %v", got)
	}
}
