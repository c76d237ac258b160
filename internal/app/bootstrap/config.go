// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/auditlog"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/auth"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/backend"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvVarPrefix is the prefix for environment variables (GESTAO_BACKEND_URL, ...).
const EnvVarPrefix = "GESTAO"

// defaultTokenMaxAge is the lifetime of both session cookies.
const defaultTokenMaxAge = 7 * 24 * time.Hour

// appConfigKeys defines the configuration keys for this application.
// They load from config files (backend_url), environment variables
// (GESTAO_BACKEND_URL) and flags (--backend_url).
var appConfigKeys = []config.AppKey{
	{Name: "backend_url", Default: "http://localhost:3000", Desc: "Base URL of the backend API"},
	{Name: "backend_timeout", Default: "10s", Desc: "Deadline for each proxied backend call"},
	{Name: "validate_timeout", Default: "5s", Desc: "Deadline for token validation"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI (audit trail)"},
	{Name: "mongo_database", Default: "gestaoalimentar", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},

	{Name: "cookie_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Signing key for the user-id cookie (must be strong in production)"},
	{Name: "cookie_domain", Default: "", Desc: "Cookie domain (blank means current host)"},
	{Name: "flash_key", Default: "dev-only-flash-key-please-change-0123456789", Desc: "Signing key for flash messages"},
	{Name: "csrf_key", Default: "dev-only-csrf-key-please-change-0123456789", Desc: "CSRF token signing key (32+ chars in production)"},
	{Name: "token_max_age", Default: "168h", Desc: "Lifetime of the token cookie"},
	{Name: "user_id_max_age", Default: "", Desc: "Lifetime of the user-id cookie (blank means token_max_age)"},
	{Name: "login_path", Default: "/auth/login", Desc: "Login page path"},
	{Name: "identity_header", Default: "X-User-Id", Desc: "Header carrying the verified user id downstream"},

	{Name: "rate_limit_enabled", Default: true, Desc: "Enable per-IP rate limiting on login and code endpoints"},
	{Name: "rate_limit_per_minute", Default: 10, Desc: "Sustained requests per minute per client"},
	{Name: "rate_limit_burst", Default: 5, Desc: "Burst size per client"},

	{Name: "audit_log_auth", Default: "all", Desc: "Auth audit destination: all, db, log, off"},
	{Name: "audit_retention", Default: "2160h", Desc: "How long audit events are kept (0 keeps forever)"},

	{Name: "report_trend_grace", Default: "300ms", Desc: "How long the previous month may trail the current month"},

	{Name: "google_client_id", Default: "", Desc: "Google OAuth client ID for Drive uploads"},
	{Name: "google_client_secret", Default: "", Desc: "Google OAuth client secret for Drive uploads"},
	{Name: "google_refresh_token", Default: "", Desc: "Google OAuth refresh token for Drive uploads"},
	{Name: "google_drive_folder_id", Default: "", Desc: "Drive folder that receives uploads"},

	{Name: "max_upload_size", Default: 32 << 20, Desc: "Maximum upload size in bytes"},
}

// LoadConfig loads WAFFLE core config and the app keys above.
// Precedence is flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvVarPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	tokenMaxAge := appValues.Duration("token_max_age", defaultTokenMaxAge)

	appCfg := AppConfig{
		BackendURL:      appValues.String("backend_url"),
		BackendTimeout:  appValues.Duration("backend_timeout", 10*time.Second),
		ValidateTimeout: appValues.Duration("validate_timeout", 5*time.Second),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		CookieKey:      appValues.String("cookie_key"),
		CookieDomain:   appValues.String("cookie_domain"),
		FlashKey:       appValues.String("flash_key"),
		CSRFKey:        appValues.String("csrf_key"),
		TokenMaxAge:    tokenMaxAge,
		UserIDMaxAge:   appValues.Duration("user_id_max_age", tokenMaxAge),
		LoginPath:      appValues.String("login_path"),
		IdentityHeader: appValues.String("identity_header"),

		RateLimitEnabled:   appValues.Bool("rate_limit_enabled"),
		RateLimitPerMinute: appValues.Int("rate_limit_per_minute"),
		RateLimitBurst:     appValues.Int("rate_limit_burst"),

		AuditLogAuth:   appValues.String("audit_log_auth"),
		AuditRetention: appValues.Duration("audit_retention", 90*24*time.Hour),

		ReportTrendGrace: appValues.Duration("report_trend_grace", 300*time.Millisecond),

		GoogleClientID:      appValues.String("google_client_id"),
		GoogleClientSecret:  appValues.String("google_client_secret"),
		GoogleRefreshToken:  appValues.String("google_refresh_token"),
		GoogleDriveFolderID: appValues.String("google_drive_folder_id"),

		MaxUploadSize: int64(appValues.Int("max_upload_size")),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects settings the service cannot run with.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if _, err := backend.ParseBaseURL(appCfg.BackendURL); err != nil {
		logger.Error("invalid backend URL", zap.String("backend_url", appCfg.BackendURL), zap.Error(err))
		return fmt.Errorf("invalid backend URL: %w", err)
	}

	if !auditlog.ValidMode(appCfg.AuditLogAuth) {
		return fmt.Errorf("invalid audit_log_auth %q: want all, db, log or off", appCfg.AuditLogAuth)
	}

	if coreCfg.Env == "prod" {
		for name, key := range map[string]string{
			"cookie_key": appCfg.CookieKey,
			"flash_key":  appCfg.FlashKey,
			"csrf_key":   appCfg.CSRFKey,
		} {
			if auth.IsWeakKey(key) {
				logger.Error("weak signing key in production", zap.String("key", name))
				return fmt.Errorf("%s is too weak for production", name)
			}
		}
	}

	return nil
}
