// Package network resolves the client address of a request.
package network

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the client address of r without port.
//
// chi's RealIP middleware runs first and rewrites RemoteAddr from
// X-Forwarded-For / X-Real-IP, so only RemoteAddr is consulted here.
// IPv6 addresses are returned without brackets.
func ClientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return strings.Trim(addr, "[]")
}
