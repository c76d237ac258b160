package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// ValidateToken asks the identity service whether token is valid and returns
// its subject. The subject may be issued as a JSON string or number; both
// are returned as text. A valid response with no subject returns "" and a
// nil error. There are no retries.
func (c *Client) ValidateToken(ctx context.Context, token string) (string, error) {
	body, err := c.do(ctx, call{
		op:      "auth.validate_token",
		method:  http.MethodPost,
		path:    "/auth/validate-token",
		body:    map[string]string{"token": token},
		timeout: c.validateTimeout,
	})
	if err != nil {
		return "", err
	}
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: auth.validate_token: invalid JSON", ErrMalformed)
	}

	sub := gjson.GetBytes(body, "payload.sub")
	switch sub.Type {
	case gjson.String:
		return sub.Str, nil
	case gjson.Number:
		return sub.Raw, nil
	case gjson.Null:
		return "", nil
	default:
		return "", fmt.Errorf("%w: auth.validate_token: unexpected subject type %s", ErrMalformed, sub.Type)
	}
}
