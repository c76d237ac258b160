package authapi

import (
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the endpoints. Login and the code endpoints are throttled
// by limiter when it is not nil.
//
// When mounted at /api/auth:
//   - POST /login
//   - POST /logout
//   - POST /send-code
//   - POST /validate-code
//   - POST /reset-password
//   - POST /send-verify-email-code
//   - POST /verify-email
func Routes(h *Handler, limiter *ratelimit.Limiter) http.Handler {
	r := chi.NewRouter()
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonutil.MethodNotAllowed(w, http.MethodPost)
	})

	r.Post("/logout", h.Logout)
	r.Post("/reset-password", h.ResetPassword)

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Guard(h.audit.LoginRateLimited))
		}
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Post("/send-code", h.SendCode)
		r.Post("/validate-code", h.ValidateCode)
		r.Post("/send-verify-email-code", h.SendVerifyEmailCode)
		r.Post("/verify-email", h.VerifyEmail)
	})

	return r
}
