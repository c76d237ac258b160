// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks wires this app into the WAFFLE lifecycle.
// Each function is called in order by app.Run, from configuration
// loading through DB setup, one-time startup work, HTTP handler
// construction, and finally graceful shutdown.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "gestaoalimentar", // used only for logging/diagnostics
	LoadConfig:     LoadConfig,        // load core + app config
	ValidateConfig: ValidateConfig,    // validate Mongo URI, backend URL and keys
	ConnectDB:      ConnectDB,         // connect Mongo, build backend client and Drive uploader
	EnsureSchema:   EnsureSchema,      // audit collection validator and indexes
	Startup:        Startup,           // shared templates, background tasks
	BuildHandler:   BuildHandler,      // router, gateway and feature mounts
	Shutdown:       Shutdown,          // stop tasks, disconnect Mongo
}
