package testutil

import (
	"net/http"

	"github.com/gorilla/csrf"
)

var csrfTestKey = []byte("0123456789abcdef0123456789abcdef")

// CSRF wraps h in gorilla/csrf with a fixed key so csrf.Token(r) yields a
// real token. Only safe methods pass without a submitted token.
func CSRF(h http.Handler) http.Handler {
	return csrf.Protect(csrfTestKey, csrf.Secure(false), csrf.FieldName("csrf_token"))(h)
}
