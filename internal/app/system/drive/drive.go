// Package drive uploads files to a Google Drive folder on behalf of the
// service account owner (OAuth2 refresh token) and makes them link-readable.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/timeouts"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrNotConfigured is returned by New when credentials are missing.
var ErrNotConfigured = errors.New("google drive not configured")

// Config holds the Drive credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	FolderID     string
}

// Enabled reports whether all credentials are present.
func (c Config) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != "" && c.FolderID != ""
}

// File describes an uploaded file.
type File struct {
	ID          string `json:"driveFileId"`
	ViewURL     string `json:"viewUrl"`
	DownloadURL string `json:"downloadUrl"`
	Name        string `json:"fileName"`
	MimeType    string `json:"mimeType"`
}

// Uploader talks to the Drive API.
type Uploader struct {
	svc      *drive.Service
	folderID string
	logger   *zap.Logger
}

// New creates an Uploader. Extra client options are appended after the
// credential option, so option.WithHTTPClient replaces it.
func New(ctx context.Context, cfg Config, logger *zap.Logger, opts ...option.ClientOption) (*Uploader, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}
	ts := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := drive.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("drive service: %w", err)
	}
	return &Uploader{svc: svc, folderID: cfg.FolderID, logger: logger}, nil
}

// Upload stores r as name in the configured folder, grants anyone-with-link
// read access and returns the file's links. A failed permission grant is
// logged and does not fail the upload.
func (u *Uploader) Upload(ctx context.Context, name, mimeType string, r io.Reader) (File, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Upload(), u.logger, "drive upload")
	defer cancel()

	meta := &drive.File{Name: name, Parents: []string{u.folderID}}
	media := []googleapi.MediaOption{}
	if mimeType != "" {
		media = append(media, googleapi.ContentType(mimeType))
	}

	f, err := u.svc.Files.Create(meta).
		Media(r, media...).
		Fields("id", "webViewLink", "webContentLink").
		Context(ctx).
		Do()
	if err != nil {
		return File{}, fmt.Errorf("drive create %q: %w", name, err)
	}

	_, err = u.svc.Permissions.Create(f.Id, &drive.Permission{Role: "reader", Type: "anyone"}).
		Context(ctx).
		Do()
	if err != nil {
		u.logger.Warn("drive permission grant failed",
			zap.String("file_id", f.Id),
			zap.Error(err))
	}

	u.logger.Info("file uploaded to drive",
		zap.String("file_id", f.Id),
		zap.String("name", name),
		zap.String("mime_type", mimeType))

	return File{
		ID:          f.Id,
		ViewURL:     f.WebViewLink,
		DownloadURL: f.WebContentLink,
		Name:        name,
		MimeType:    mimeType,
	}, nil
}
