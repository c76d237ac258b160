package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
)

// Login exchanges credentials for an access token and the account.
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	var out models.LoginResult
	err := c.doJSON(ctx, call{
		op:     "auth.login",
		method: http.MethodPost,
		path:   "/auth/login",
		body:   map[string]string{"email": email, "password": password},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SendResetCode emails a password-reset code.
func (c *Client) SendResetCode(ctx context.Context, email string) (json.RawMessage, error) {
	return c.doRaw(ctx, call{
		op:     "auth.send_code",
		method: http.MethodPost,
		path:   "/auth/send-code",
		body:   map[string]string{"email": email},
	})
}

// ValidateResetCode checks a reset code and returns the backend response,
// which carries reset_password_token on success.
func (c *Client) ValidateResetCode(ctx context.Context, code string) (json.RawMessage, error) {
	return c.doRaw(ctx, call{
		op:     "auth.validate_code",
		method: http.MethodPost,
		path:   "/auth/validate-code",
		body:   map[string]string{"code": code},
	})
}

// ResetPassword sets a new password using a reset token.
func (c *Client) ResetPassword(ctx context.Context, password, confirm, resetToken string) (json.RawMessage, error) {
	return c.doRaw(ctx, call{
		op:     "auth.reset_password",
		method: http.MethodPost,
		path:   "/auth/reset-password",
		body:   map[string]string{"password": password, "confirm": confirm, "token": resetToken},
	})
}

// SendVerifyEmailCode emails an address-verification code.
func (c *Client) SendVerifyEmailCode(ctx context.Context, email string) (json.RawMessage, error) {
	return c.doRaw(ctx, call{
		op:     "auth.send_verify_email_code",
		method: http.MethodPost,
		path:   "/auth/send-code-verify-email",
		body:   map[string]string{"email": email},
	})
}

// VerifyEmail confirms an email address with a code.
func (c *Client) VerifyEmail(ctx context.Context, code string) (json.RawMessage, error) {
	return c.doRaw(ctx, call{
		op:     "auth.verify_email",
		method: http.MethodPost,
		path:   "/auth/verify-email",
		body:   map[string]string{"code": code},
	})
}
