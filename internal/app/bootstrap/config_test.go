package bootstrap

import (
	"strings"
	"testing"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		BackendURL:   "https://api.example.org",
		MongoURI:     "mongodb://localhost:27017",
		CookieKey:    "k1-0123456789abcdef0123456789abcdef",
		FlashKey:     "k2-0123456789abcdef0123456789abcdef",
		CSRFKey:      "k3-0123456789abcdef0123456789abcdef",
		AuditLogAuth: "all",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid prod", "prod", func(*AppConfig) {}, ""},
		{"bad mongo uri", "dev", func(c *AppConfig) { c.MongoURI = "postgres://x" }, "MongoDB URI"},
		{"missing backend", "dev", func(c *AppConfig) { c.BackendURL = "" }, "backend URL"},
		{"ftp backend", "dev", func(c *AppConfig) { c.BackendURL = "ftp://files.example.org" }, "backend URL"},
		{"bad audit mode", "dev", func(c *AppConfig) { c.AuditLogAuth = "syslog" }, "audit_log_auth"},
		{"short cookie key in prod", "prod", func(c *AppConfig) { c.CookieKey = "short" }, "cookie_key"},
		{"short cookie key in dev", "dev", func(c *AppConfig) { c.CookieKey = "short" }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, zap.NewNop())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestHooksName(t *testing.T) {
	if Hooks.Name != "gestaoalimentar" {
		t.Errorf("Hooks.Name = %q", Hooks.Name)
	}
}
