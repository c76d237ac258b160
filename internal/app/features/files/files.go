// Package files accepts multipart uploads and stores them in Google Drive.
package files

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/authz"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/drive"
	"github.com/dalemusser/gestaoalimentar/internal/app/system/jsonutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DefaultMaxUploadSize bounds an upload when none is configured.
const DefaultMaxUploadSize int64 = 32 << 20

const (
	MsgMethodNotAllowed = "Método não permitido"
	MsgNoFile           = "Arquivo não enviado"
	MsgUploadFailed     = "Erro no upload"
	MsgNotConfigured    = "Upload de arquivos não configurado"
)

// Uploader stores one file and returns its links.
type Uploader interface {
	Upload(ctx context.Context, name, mimeType string, r io.Reader) (drive.File, error)
}

// Handler serves /api/files.
type Handler struct {
	uploader Uploader
	maxSize  int64
	logger   *zap.Logger
}

// NewHandler creates a Handler. A nil uploader answers 503; maxSize <= 0
// uses DefaultMaxUploadSize.
func NewHandler(u Uploader, maxSize int64, logger *zap.Logger) *Handler {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &Handler{uploader: u, maxSize: maxSize, logger: logger}
}

// Routes mounts POST /upload.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", http.MethodPost)
		jsonutil.Error(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})
	r.Use(authz.RequireCaller)
	r.Post("/upload", h.Upload)
	return r
}

type uploadResponse struct {
	Success bool `json:"success"`
	drive.File
}

// Upload reads the "file" part and stores it.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		jsonutil.Error(w, http.StatusServiceUnavailable, MsgNotConfigured)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize)
	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonutil.Error(w, http.StatusRequestEntityTooLarge, TooLargeMessage(h.maxSize))
			return
		}
		jsonutil.BadRequest(w, MsgNoFile)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	f, header, err := r.FormFile("file")
	if err != nil {
		jsonutil.BadRequest(w, MsgNoFile)
		return
	}
	defer f.Close()

	name := filepath.Base(strings.TrimSpace(header.Filename))
	if name == "." || name == string(filepath.Separator) {
		jsonutil.BadRequest(w, MsgNoFile)
		return
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	file, err := h.uploader.Upload(r.Context(), name, mimeType, f)
	if err != nil {
		h.logger.Error("file upload failed",
			zap.String("name", name),
			zap.String("size", FormatFileSize(header.Size)),
			zap.Error(err))
		jsonutil.InternalError(w, MsgUploadFailed)
		return
	}
	jsonutil.OK(w, uploadResponse{Success: true, File: file})
}
