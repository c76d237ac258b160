// Package flash carries one-shot messages across the redirect that follows
// an HTML form post (e.g. a failed login).
package flash

import (
	"errors"
	"net/http"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/auth"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const sessionName = "gestao-flash"

// maxAge bounds how long an unread message survives.
const maxAge = 5 * 60

// Store reads and writes flash messages in a signed cookie.
type Store struct {
	store  *sessions.CookieStore
	logger *zap.Logger
}

// New creates a Store. key is the configured flash secret; the signing
// key is derived from it.
func New(key string, secure bool, logger *zap.Logger) (*Store, error) {
	if key == "" {
		return nil, errors.New("flash key is required")
	}
	hashKey, err := auth.DeriveKey(key, "flash", 64)
	if err != nil {
		return nil, err
	}
	cs := sessions.NewCookieStore(hashKey)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Store{store: cs, logger: logger}, nil
}

// Add queues msg for the next page view. A nil Store drops it.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, msg string) {
	if s == nil {
		return
	}
	sess, _ := s.store.Get(r, sessionName)
	sess.AddFlash(msg)
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("flash save failed", zap.Error(err))
	}
}

// Pop returns and clears the queued messages.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) []string {
	if s == nil {
		return nil
	}
	sess, err := s.store.Get(r, sessionName)
	if err != nil {
		// Undecodable cookie: treat as empty and overwrite it.
		sess.Options.MaxAge = -1
		_ = sess.Save(r, w)
		return nil
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		s.logger.Warn("flash clear failed", zap.Error(err))
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(string); ok {
			out = append(out, m)
		}
	}
	return out
}

// First pops the queued messages and returns the first one, or "".
func (s *Store) First(w http.ResponseWriter, r *http.Request) string {
	if msgs := s.Pop(w, r); len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}
