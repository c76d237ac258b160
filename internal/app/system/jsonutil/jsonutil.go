// Package jsonutil writes the JSON envelopes of the /api surface.
//
// Success bodies are handler-specific; failures are always
//
//	{"error": "mensagem", "details": <optional>}
//
// and FromBackend maps a backend client error onto that shape.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/backend"
	"go.uber.org/zap"
)

// MsgBackendUnreachable is returned when the backend cannot be reached.
const MsgBackendUnreachable = "Erro ao comunicar com o servidor."

// MaxBodyBytes caps decoded request bodies.
const MaxBodyBytes = 1 << 20

// ErrorBody is the failure envelope.
type ErrorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Raw writes an already-encoded JSON body.
func Raw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// Success writes {"ok": true}.
func Success(w http.ResponseWriter) {
	JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}

// ErrorWithDetails writes {"error": message, "details": details}.
func ErrorWithDetails(w http.ResponseWriter, status int, message string, details any) {
	JSON(w, status, ErrorBody{Error: message, Details: details})
}

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// Unauthorized writes a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden writes a 403.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// MethodNotAllowed writes a 405 with an Allow header.
func MethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	Error(w, http.StatusMethodNotAllowed, "Método não permitido")
}

// TooManyRequests writes a 429.
func TooManyRequests(w http.ResponseWriter, message string) {
	Error(w, http.StatusTooManyRequests, message)
}

// InternalError writes a 500. Internal details stay in the log.
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

// FromBackend translates a backend client error.
//
// A non-2xx backend response keeps its status; the message is the backend's
// own detail when it has one, otherwise fallback, and details carries the
// backend body. Anything else is a 500 with MsgBackendUnreachable.
func FromBackend(w http.ResponseWriter, logger *zap.Logger, op string, err error, fallback string) {
	writeBackendError(w, logger, op, err, fallback, true)
}

// FromBackendAs is FromBackend with message always used as the error text,
// the backend body still going to details.
func FromBackendAs(w http.ResponseWriter, logger *zap.Logger, op string, err error, message string) {
	writeBackendError(w, logger, op, err, message, false)
}

func writeBackendError(w http.ResponseWriter, logger *zap.Logger, op string, err error, message string, preferDetail bool) {
	if se, ok := backend.AsStatus(err); ok {
		msg := message
		if preferDetail && se.Detail != "" {
			msg = se.Detail
		}
		logger.Info("backend rejected request",
			zap.String("op", op),
			zap.Int("status", se.Status))
		ErrorWithDetails(w, se.Status, msg, bodyDetails(se.Body))
		return
	}
	logger.Error("backend call failed",
		zap.String("op", op),
		zap.String("kind", backend.Classify(err).String()),
		zap.Error(err))
	InternalError(w, MsgBackendUnreachable)
}

// bodyDetails returns b as raw JSON when it is valid JSON, as a string
// otherwise, and nil when empty.
func bodyDetails(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	return string(b)
}

// Decode reads a JSON request body into v. Bodies larger than MaxBodyBytes,
// empty bodies and trailing data are rejected.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("corpo da requisição vazio")
		}
		return fmt.Errorf("JSON inválido: %w", err)
	}
	if dec.More() {
		return errors.New("JSON inválido: dados extras após o objeto")
	}
	return nil
}
