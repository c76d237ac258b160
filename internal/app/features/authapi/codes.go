package authapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/tidwall/gjson"
)

// User-facing messages of the code endpoints.
const (
	MsgMissingEmail       = "Email ausente na requisição."
	MsgEmailRequired      = "E-mail é obrigatório."
	MsgMissingCode        = "Código ausente na requisição."
	MsgMissingResetToken  = "Token ausente na requisição."
	MsgSendCodeFailed     = "Falha no envio do código."
	MsgValidateCodeFailed = "Falha na validação do código."
	MsgResetFailed        = "Falha ao redefinir a senha."
	MsgResendCodeFailed   = "Erro ao enviar novo código."
	MsgVerifyEmailFailed  = "Falha na verificação do e-mail."
)

type emailRequest struct {
	Email string `json:"email"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type resetRequest struct {
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
	Token    string `json:"token"`
}

// acknowledged reports whether a 2xx backend body carries the "message"
// field the backend sets on success.
func acknowledged(body json.RawMessage) bool {
	return gjson.GetBytes(body, "message").Exists()
}

// SendCode asks the backend to e-mail a password reset code.
func (h *Handler) SendCode(w http.ResponseWriter, r *http.Request) {
	var in emailRequest
	if err := jsonutil.Decode(w, r, &in); err != nil || strings.TrimSpace(in.Email) == "" {
		jsonutil.BadRequest(w, MsgMissingEmail)
		return
	}
	email := strings.TrimSpace(in.Email)

	body, err := h.backend.SendResetCode(r.Context(), email)
	if err != nil {
		h.audit.ResetCodeRequested(r, email, false)
		jsonutil.FromBackend(w, h.logger, "auth.send_code", err, MsgSendCodeFailed)
		return
	}
	if !acknowledged(body) {
		h.audit.ResetCodeRequested(r, email, false)
		jsonutil.Error(w, http.StatusBadGateway, MsgSendCodeFailed)
		return
	}
	h.audit.ResetCodeRequested(r, email, true)
	jsonutil.Success(w)
}

// ValidateCode checks a reset code and returns the reset token the
// reset-password step needs.
func (h *Handler) ValidateCode(w http.ResponseWriter, r *http.Request) {
	var in codeRequest
	if err := jsonutil.Decode(w, r, &in); err != nil || strings.TrimSpace(in.Code) == "" {
		jsonutil.BadRequest(w, MsgMissingCode)
		return
	}

	body, err := h.backend.ValidateResetCode(r.Context(), strings.TrimSpace(in.Code))
	if err != nil {
		h.audit.VerificationCodeFailed(r, "password_reset")
		jsonutil.FromBackend(w, h.logger, "auth.validate_code", err, MsgValidateCodeFailed)
		return
	}
	resetToken := gjson.GetBytes(body, "reset_password_token").String()
	if !acknowledged(body) || resetToken == "" {
		h.audit.VerificationCodeFailed(r, "password_reset")
		jsonutil.Error(w, http.StatusBadGateway, MsgValidateCodeFailed)
		return
	}
	jsonutil.OK(w, map[string]any{"ok": true, "reset_password_token": resetToken})
}

// ResetPassword sets a new password with the token from ValidateCode.
// Password rules are the backend's.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetRequest
	if err := jsonutil.Decode(w, r, &in); err != nil || in.Token == "" {
		jsonutil.BadRequest(w, MsgMissingResetToken)
		return
	}

	body, err := h.backend.ResetPassword(r.Context(), in.Password, in.Confirm, in.Token)
	if err != nil {
		h.audit.PasswordReset(r, false)
		jsonutil.FromBackend(w, h.logger, "auth.reset_password", err, MsgResetFailed)
		return
	}
	if !acknowledged(body) {
		h.audit.PasswordReset(r, false)
		jsonutil.Error(w, http.StatusBadGateway, MsgResetFailed)
		return
	}
	h.audit.PasswordReset(r, true)
	jsonutil.Success(w)
}

// SendVerifyEmailCode asks the backend to e-mail an address verification
// code. The backend body is passed through on success.
func (h *Handler) SendVerifyEmailCode(w http.ResponseWriter, r *http.Request) {
	var in emailRequest
	if err := jsonutil.Decode(w, r, &in); err != nil || strings.TrimSpace(in.Email) == "" {
		jsonutil.BadRequest(w, MsgEmailRequired)
		return
	}
	email := strings.TrimSpace(in.Email)

	body, err := h.backend.SendVerifyEmailCode(r.Context(), email)
	if err != nil {
		h.audit.VerifyEmailRequested(r, email, false)
		jsonutil.FromBackend(w, h.logger, "auth.send_verify_email_code", err, MsgResendCodeFailed)
		return
	}
	h.audit.VerifyEmailRequested(r, email, true)
	jsonutil.Raw(w, http.StatusOK, passThrough(body))
}

// VerifyEmail confirms an address with the code the user received. The
// backend body is passed through on success.
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var in codeRequest
	if err := jsonutil.Decode(w, r, &in); err != nil || strings.TrimSpace(in.Code) == "" {
		jsonutil.BadRequest(w, MsgMissingCode)
		return
	}

	body, err := h.backend.VerifyEmail(r.Context(), strings.TrimSpace(in.Code))
	if err != nil {
		h.audit.VerificationCodeFailed(r, "verify_email")
		jsonutil.FromBackend(w, h.logger, "auth.verify_email", err, MsgVerifyEmailFailed)
		return
	}
	h.audit.EmailVerified(r, true)
	jsonutil.Raw(w, http.StatusOK, passThrough(body))
}

// passThrough returns body, or {"ok":true} when the backend sent nothing.
func passThrough(body json.RawMessage) []byte {
	if len(body) == 0 || string(body) == "null" {
		return []byte(`{"ok":true}`)
	}
	return body
}
