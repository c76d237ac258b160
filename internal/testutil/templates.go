package testutil

import (
	"sync"

	"github.com/dalemusser/gestaoalimentar/internal/app/resources"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

var (
	bootOnce sync.Once
	bootErr  error
)

// BootTemplatesOnce registers the shared templates and boots the engine
// once per process. Feature templates register themselves from init(), so
// importing a feature package makes its templates available.
func BootTemplatesOnce() error {
	bootOnce.Do(func() {
		resources.LoadSharedTemplates()

		eng := templates.New(false)
		logger := zap.NewNop()
		if bootErr = eng.Boot(logger); bootErr != nil {
			return
		}
		templates.UseEngine(eng, logger)
	})
	return bootErr
}

// MustBootTemplates boots templates or fails the test.
func MustBootTemplates(t interface{ Fatalf(string, ...any) }) {
	if err := BootTemplatesOnce(); err != nil {
		t.Fatalf("failed to boot templates: %v", err)
	}
}
