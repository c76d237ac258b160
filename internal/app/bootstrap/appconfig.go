// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging, CORS and timeouts. AppConfig
// carries everything specific to the management front end: where the
// external backend lives, how session cookies are signed, the audit store and
// the optional Google Drive upload target.
type AppConfig struct {
	// External backend
	BackendURL      string        // base URL of the backend API (http or https)
	BackendTimeout  time.Duration // per-call deadline for proxied calls
	ValidateTimeout time.Duration // deadline for token validation in the gateway

	// MongoDB (audit trail)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookies
	CookieKey      string        // signs the user-id cookie (must be strong in production)
	CookieDomain   string        // blank means current host
	FlashKey       string        // signs the flash cookie used by HTML forms
	CSRFKey        string        // CSRF token signing key
	TokenMaxAge    time.Duration // token cookie lifetime (default: 7 days)
	UserIDMaxAge   time.Duration // user-id cookie lifetime (default: TokenMaxAge)
	LoginPath      string        // where unauthenticated browsers are sent
	IdentityHeader string        // header carrying the verified subject downstream

	// Rate limiting (login and verification-code endpoints)
	RateLimitEnabled   bool
	RateLimitPerMinute int
	RateLimitBurst     int

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth   string
	AuditRetention time.Duration // 0 keeps events forever

	// Reports
	ReportTrendGrace time.Duration // how long the previous month may trail the current one

	// Google Drive uploads (disabled unless all credentials are set)
	GoogleClientID      string
	GoogleClientSecret  string
	GoogleRefreshToken  string
	GoogleDriveFolderID string

	MaxUploadSize int64 // bytes
}
