package timeouts

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestConfigure(t *testing.T) {
	t.Cleanup(Reset)

	Configure(Config{Backend: 4 * time.Second, Validate: 0})
	if Backend() != 4*time.Second {
		t.Errorf("Backend() = %v, want 4s", Backend())
	}
	if Validate() != DefaultValidate {
		t.Errorf("Validate() = %v, want default", Validate())
	}

	Reset()
	if got := Current(); got.Backend != DefaultBackend || got.Upload != DefaultUpload {
		t.Errorf("Current() after Reset = %+v", got)
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), time.Millisecond, zap.NewNop(), "test")
	<-ctx.Done()
	cancel()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("ctx.Err() = %v, want DeadlineExceeded", ctx.Err())
	}
}
