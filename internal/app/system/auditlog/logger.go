// Package auditlog records authentication events to zap and, optionally,
// to the Mongo audit store.
package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/gestaoalimentar/internal/app/store/audit"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/auth"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/network"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/timeouts"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Destinations for Config.Auth.
const (
	ModeAll = "all" // Mongo and zap
	ModeDB  = "db"  // Mongo only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// ValidMode reports whether mode is one of the destinations above. Empty
// counts as valid and means ModeAll.
func ValidMode(mode string) bool {
	switch mode {
	case "", ModeAll, ModeDB, ModeLog, ModeOff:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	Auth string
}

// Sink persists events. *audit.Store implements it.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides one method per audited event.
type Logger struct {
	sink   Sink
	zapLog *zap.Logger
	config Config
}

// New creates a Logger. sink may be nil, in which case "all" and "db"
// degrade to zap only.
func New(sink Sink, zapLog *zap.Logger, config Config) *Logger {
	if config.Auth == "" {
		config.Auth = ModeAll
	}
	return &Logger{sink: sink, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.UserID != "" {
		fields = append(fields, zap.String("user_id", event.UserID))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the configured mode. A nil Logger is a
// no-op so handlers under test can run without one.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}
	mode := l.config.Auth
	if mode == ModeOff {
		return
	}
	if mode == ModeAll || mode == ModeLog || l.sink == nil {
		l.logToZap(event)
	}
	if (mode == ModeAll || mode == ModeDB) && l.sink != nil {
		ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Store(), l.zapLog, "audit write")
		defer cancel()
		if err := l.sink.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func (l *Logger) auth(r *http.Request, eventType, userID string, success bool, reason string, details map[string]string) {
	l.Log(r.Context(), audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     eventType,
		UserID:        userID,
		IP:            network.ClientIP(r),
		UserAgent:     r.UserAgent(),
		RequestID:     chimw.GetReqID(r.Context()),
		Success:       success,
		FailureReason: reason,
		Details:       details,
	})
}

// LoginSuccess records a successful sign-in.
func (l *Logger) LoginSuccess(r *http.Request, userID, email string) {
	l.auth(r, audit.EventLoginSuccess, userID, true, "", map[string]string{"email": email})
}

// LoginFailed records a sign-in rejected by the backend. status is the
// backend status, or 0 when it was unreachable.
func (l *Logger) LoginFailed(r *http.Request, email string, status int) {
	reason := "backend unreachable"
	if status != 0 {
		reason = "status " + strconv.Itoa(status)
	}
	l.auth(r, audit.EventLoginFailed, "", false, reason, map[string]string{"email": email})
}

// LoginForbiddenRole records a valid sign-in by an account whose role may
// not use this application.
func (l *Logger) LoginForbiddenRole(r *http.Request, userID, role string) {
	l.auth(r, audit.EventLoginForbiddenRole, userID, false, "role not allowed", map[string]string{"role": role})
}

// LoginRateLimited records a sign-in rejected by the rate limiter.
func (l *Logger) LoginRateLimited(r *http.Request) {
	l.auth(r, audit.EventLoginRateLimited, "", false, "rate limited", nil)
}

// Logout records a sign-out. userID may be empty.
func (l *Logger) Logout(r *http.Request, userID string) {
	l.auth(r, audit.EventLogout, userID, true, "", nil)
}

// SessionRejected records a session the gateway refused. A subject that
// did not match the user-id cookie is recorded as a mismatch.
func (l *Logger) SessionRejected(r *http.Request, userID, reason string) {
	event := audit.EventSessionRejected
	if reason == string(auth.ReasonMismatch) {
		event = audit.EventSessionMismatch
	}
	l.auth(r, event, userID, false, reason, map[string]string{"path": r.URL.Path})
}

// ResetCodeRequested records a password reset code request.
func (l *Logger) ResetCodeRequested(r *http.Request, email string, success bool) {
	l.auth(r, audit.EventResetCodeRequested, "", success, failureIf(!success), map[string]string{"email": email})
}

// VerificationCodeFailed records a rejected reset or verification code.
func (l *Logger) VerificationCodeFailed(r *http.Request, purpose string) {
	l.auth(r, audit.EventVerificationCodeError, "", false, "code rejected", map[string]string{"purpose": purpose})
}

// PasswordReset records a completed (or refused) password reset.
func (l *Logger) PasswordReset(r *http.Request, success bool) {
	l.auth(r, audit.EventPasswordReset, "", success, failureIf(!success), nil)
}

// VerifyEmailRequested records an e-mail verification code request.
func (l *Logger) VerifyEmailRequested(r *http.Request, email string, success bool) {
	l.auth(r, audit.EventVerifyEmailRequested, "", success, failureIf(!success), map[string]string{"email": email})
}

// EmailVerified records a completed e-mail verification.
func (l *Logger) EmailVerified(r *http.Request, success bool) {
	l.auth(r, audit.EventEmailVerified, "", success, failureIf(!success), nil)
}

func failureIf(failed bool) string {
	if failed {
		return "backend rejected"
	}
	return ""
}
