// Package backend is the HTTP client for the external backend service that
// owns accounts, units, attendance, storage, orders and reports.
//
// Every call is a single JSON round trip with a context deadline. The
// caller's bearer token is forwarded as-is; this package never stores it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/timeouts"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a backend response is read.
const maxResponseBytes = 10 << 20

// bodyPreviewBytes is how much of an error body is logged.
const bodyPreviewBytes = 500

// Observer receives one callback per backend call. Outcome is a Kind string.
type Observer interface {
	ObserveBackendCall(op, outcome string, elapsed time.Duration)
}

// Config configures a Client.
type Config struct {
	BaseURL         string
	Timeout         time.Duration // per-call deadline (default timeouts.Backend)
	ValidateTimeout time.Duration // deadline for token validation (default timeouts.Validate)
	HTTPClient      *http.Client
	Observer        Observer
}

// Client talks to the backend.
type Client struct {
	base            *url.URL
	http            *http.Client
	timeout         time.Duration
	validateTimeout time.Duration
	observer        Observer
	logger          *zap.Logger
}

// New creates a Client. BaseURL must be an absolute http or https URL.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = timeouts.Backend()
	}
	if cfg.ValidateTimeout <= 0 {
		cfg.ValidateTimeout = timeouts.Validate()
	}
	return &Client{
		base:            base,
		http:            hc,
		timeout:         cfg.Timeout,
		validateTimeout: cfg.ValidateTimeout,
		observer:        cfg.Observer,
		logger:          logger,
	}, nil
}

// ParseBaseURL validates a backend base URL.
func ParseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("backend URL is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("backend URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("backend URL must be an absolute http(s) URL: %q", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	return u, nil
}

// SetObserver installs o for subsequent calls.
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

// call describes one backend request.
type call struct {
	op      string
	method  string
	path    string
	query   url.Values
	token   string
	body    any
	timeout time.Duration
}

// do performs the call and returns the raw 2xx response body.
func (c *Client) do(ctx context.Context, cl call) (body []byte, err error) {
	start := time.Now()
	defer func() {
		if c.observer != nil {
			c.observer.ObserveBackendCall(cl.op, Classify(err).String(), time.Since(start))
		}
	}()

	timeout := cl.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := timeouts.WithTimeout(ctx, timeout, c.logger, "backend "+cl.op)
	defer cancel()

	u := *c.base
	u.Path = c.base.Path + cl.path
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var reader io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("backend %s: encode request: %w", cl.op, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("backend %s: build request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.token != "" {
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}
	req.Header.Set("X-Request-ID", requestID(ctx))

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("backend request failed",
			zap.String("op", cl.op),
			zap.String("method", cl.method),
			zap.String("path", cl.path),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, cl.op, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read response: %v", ErrUnavailable, cl.op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Op: cl.op, Status: resp.StatusCode, Body: body, Detail: detailOf(body)}
		c.logger.Info("backend returned error status",
			zap.String("op", cl.op),
			zap.Int("status", resp.StatusCode),
			zap.String("body_preview", preview(body)))
		return nil, se
	}
	return body, nil
}

// doJSON performs the call and decodes the 2xx body into out.
func (c *Client) doJSON(ctx context.Context, cl call, out any) error {
	body, err := c.do(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return wrapMalformed(cl.op, err)
	}
	return nil
}

// doRaw performs the call and returns the 2xx body as raw JSON. An empty
// body is passed on as null.
func (c *Client) doRaw(ctx context.Context, cl call) (json.RawMessage, error) {
	body, err := c.do(ctx, cl)
	if err != nil {
		return nil, err
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return json.RawMessage("null"), nil
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s: invalid JSON", ErrMalformed, cl.op)
	}
	return json.RawMessage(body), nil
}

// doData is doRaw for endpoints that must answer with a document; an
// empty or null body is malformed.
func (c *Client) doData(ctx context.Context, cl call) (json.RawMessage, error) {
	raw, err := c.doRaw(ctx, cl)
	if err != nil {
		return nil, err
	}
	if gjson.ParseBytes(raw).Type == gjson.Null {
		return nil, fmt.Errorf("%w: %s: empty response", ErrMalformed, cl.op)
	}
	return raw, nil
}

// detailOf extracts a human-readable error message from a backend body.
// FastAPI-style validation errors carry a list in "detail"; the first
// message is used.
func detailOf(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"detail", "message", "error"} {
		r := gjson.GetBytes(body, path)
		switch {
		case r.Type == gjson.String && r.Str != "":
			return r.Str
		case r.IsArray():
			if msg := r.Get("0.msg"); msg.Exists() {
				return msg.String()
			}
		}
	}
	return ""
}

func preview(body []byte) string {
	if len(body) > bodyPreviewBytes {
		return string(body[:bodyPreviewBytes]) + "..."
	}
	return string(body)
}

func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
