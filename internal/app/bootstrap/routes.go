// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"
	"time"

	authapifeature "github.com/dalemusser/gestaoalimentar/internal/app/features/authapi"
	errorsfeature "github.com/dalemusser/gestaoalimentar/internal/app/features/errors"
	filesfeature "github.com/dalemusser/gestaoalimentar/internal/app/features/files"
	frequencyapifeature "github.com/dalemusser/gestaoalimentar/internal/app/features/frequencyapi"
	healthfeature "github.com/dalemusser/gestaoalimentar/internal/app/features/health"
	homefeature "github.com/dalemusser/gestaoalimentar/internal/app/features/home"
	loginfeature "github.com/dalemusser/gestaoalimentar/internal/app/features/login"
	ordersapifeature "github.com/dalemusser/gestaoalimentar/internal/app/features/ordersapi"
	reportsfeature "github.com/dalemusser/gestaoalimentar/internal/app/features/reports"
	storageapifeature "github.com/dalemusser/gestaoalimentar/internal/app/features/storageapi"
	unitsapifeature "github.com/dalemusser/gestaoalimentar/internal/app/features/unitsapi"
	appresources "github.com/dalemusser/gestaoalimentar/internal/app/resources"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/auditlog"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/auth"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/flash"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/gateway"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/reportload"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/middleware"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// requestTimeout bounds every request, uploads included.
const requestTimeout = 60 * time.Second

// BuildHandler constructs the root HTTP handler.
//
// Every request passes the global middleware and then the access gateway,
// which decides from the session cookies whether the path is served,
// redirected, or served with a verified identity attached. Behind the
// gateway sit two surfaces:
//   - /api/*: same-origin JSON endpoints proxied to the backend (no CSRF)
//   - HTML pages: login form, home and the monthly report (CSRF protected)
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	sessionMgr, err := auth.NewSessionManager(auth.Options{
		CookieKey:    appCfg.CookieKey,
		Domain:       appCfg.CookieDomain,
		TokenMaxAge:  appCfg.TokenMaxAge,
		UserIDMaxAge: appCfg.UserIDMaxAge,
		Secure:       secure,
		LoginPath:    appCfg.LoginPath,
	}, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	flashStore, err := flash.New(appCfg.FlashKey, secure, logger)
	if err != nil {
		logger.Error("flash store init failed", zap.Error(err))
		return nil, err
	}

	// Dev mode enables template reloading.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	auditLogger := auditlog.New(deps.AuditStore, logger, auditlog.Config{Auth: appCfg.AuditLogAuth})

	gw := gateway.New(gateway.Config{
		LoginPath:      appCfg.LoginPath,
		IdentityHeader: appCfg.IdentityHeader,
	}, sessionMgr, deps.Backend, logger)
	gw.SetObserver(deps.Metrics)
	gw.SetAuditor(auditLogger)

	r := chi.NewRouter()

	// ─────────────────────────────────────────────────────────────────────────────
	// Global Middleware (applies to ALL routes)
	// ─────────────────────────────────────────────────────────────────────────────

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))

	// CORS must run early to answer preflight requests.
	r.Use(middleware.CORSFromConfig(coreCfg))
	r.Use(middleware.SecurityHeadersFromConfig(coreCfg))

	r.Use(deps.Metrics.Middleware)

	// The gateway runs before any feature; it also strips a spoofed
	// identity header on paths it does not authenticate.
	r.Use(gw.Middleware)

	r.Use(csrfMiddleware(appCfg, secure, logger))

	// ─────────────────────────────────────────────────────────────────────────────
	// Pass-through: static assets and operations
	// ─────────────────────────────────────────────────────────────────────────────

	r.Handle("/static/*", fileserver.Handler("/static", "static"))
	r.Handle("/assets/*", appresources.AssetsHandler("/assets"))
	r.Get("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	var mongoPinger healthfeature.Pinger
	if deps.MongoClient != nil {
		mongoPinger = healthfeature.MongoPinger{Client: deps.MongoClient}
	}
	healthHandler := healthfeature.NewHandler(mongoPinger, deps.Backend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	healthfeature.MountRootEndpoints(r, healthHandler)

	r.Handle("/metrics", deps.Metrics.Handler())

	// ─────────────────────────────────────────────────────────────────────────────
	// JSON API (proxied to the backend)
	// ─────────────────────────────────────────────────────────────────────────────

	authapiHandler := authapifeature.NewHandler(deps.Backend, sessionMgr, auditLogger, logger)
	r.Mount("/api/auth", authapifeature.Routes(authapiHandler, deps.Limiter))

	r.Mount("/api/units", unitsapifeature.Routes(unitsapifeature.NewHandler(deps.Backend, logger)))
	r.Mount("/api/frequency", frequencyapifeature.Routes(frequencyapifeature.NewHandler(deps.Backend, logger)))
	r.Mount("/api/storage", storageapifeature.Routes(storageapifeature.NewHandler(deps.Backend, logger)))
	r.Mount("/api/orders", ordersapifeature.Routes(ordersapifeature.NewHandler(deps.Backend, logger)))

	loader := reportload.New(deps.Backend, appCfg.ReportTrendGrace, logger)
	loader.SetObserver(deps.Metrics)
	reportsHandler := reportsfeature.NewHandler(deps.Backend, loader, flashStore, logger)
	r.Mount("/api/reports", reportsfeature.APIRoutes(reportsHandler))

	// A nil *drive.Uploader must reach the handler as a nil interface.
	var uploader filesfeature.Uploader
	if deps.Drive != nil {
		uploader = deps.Drive
	}
	maxUpload := appCfg.MaxUploadSize
	if maxUpload <= 0 {
		maxUpload = filesfeature.DefaultMaxUploadSize
	}
	r.Mount("/api/files", filesfeature.Routes(filesfeature.NewHandler(uploader, maxUpload, logger)))

	// ─────────────────────────────────────────────────────────────────────────────
	// HTML pages
	// ─────────────────────────────────────────────────────────────────────────────

	loginHandler := loginfeature.NewHandler(deps.Backend, sessionMgr, flashStore, deps.Limiter, auditLogger, logger)
	r.Mount(sessionMgr.LoginPath(), loginfeature.Routes(loginHandler))

	homeHandler := homefeature.NewHandler(deps.Backend, logger)
	r.Handle("/", homefeature.Routes(homeHandler))

	r.Mount("/relatorios", reportsfeature.PageRoutes(reportsHandler))

	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)
	r.NotFound(errorsHandler.NotFound)
	r.MethodNotAllowed(errorsHandler.MethodNotAllowed)

	return r, nil
}

// csrfMiddleware protects HTML forms. The JSON API is exempt: it is
// same-origin, cookie-authenticated through the gateway and never accepts
// form encodings.
func csrfMiddleware(appCfg AppConfig, secure bool, logger *zap.Logger) func(http.Handler) http.Handler {
	opts := []csrf.Option{
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.CookieName("gestao_csrf"),
		csrf.FieldName("csrf_token"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			logger.Warn("CSRF validation failed",
				zap.String("path", req.URL.Path),
				zap.String("method", req.Method),
				zap.String("reason", csrf.FailureReason(req).Error()),
			)
			http.Error(w, "Token CSRF inválido ou ausente", http.StatusForbidden)
		})),
	}
	if !secure {
		opts = append(opts, csrf.TrustedOrigins([]string{
			"localhost:8080",
			"localhost:3000",
			"127.0.0.1:8080",
			"127.0.0.1:3000",
		}))
	}
	if appCfg.CookieDomain != "" {
		opts = append(opts, csrf.Domain(appCfg.CookieDomain))
	}
	protect := csrf.Protect([]byte(appCfg.CSRFKey), opts...)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.HasPrefix(req.URL.Path, "/api/") {
				next.ServeHTTP(w, req)
				return
			}
			protected.ServeHTTP(w, req)
		})
	}
}
