package backend

import (
	"context"
	"errors"
	"net/http"
)

// Ping checks that the backend answers HTTP at all. Any status code counts
// as reachable; only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, call{op: "ping", method: http.MethodGet, path: "/"})
	var se *StatusError
	if errors.As(err, &se) {
		return nil
	}
	return err
}
