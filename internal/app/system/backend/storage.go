package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
)

// Storage lists the stock of a unit.
func (c *Client) Storage(ctx context.Context, token string, unitID models.ID) (json.RawMessage, error) {
	return c.doRaw(ctx, call{
		op:     "storage.list",
		method: http.MethodGet,
		path:   "/storage",
		query:  url.Values{"unit_id": {unitID.String()}},
		token:  token,
	})
}

// StorageEntry registers food arriving at a unit.
func (c *Client) StorageEntry(ctx context.Context, token string, e models.StorageEntry) (json.RawMessage, error) {
	return c.doRaw(ctx, call{
		op:     "storage.entry",
		method: http.MethodPost,
		path:   "/storage/entry",
		token:  token,
		body:   e,
	})
}

// StorageExit registers food leaving a unit.
func (c *Client) StorageExit(ctx context.Context, token string, e models.StorageExit) (json.RawMessage, error) {
	return c.doRaw(ctx, call{
		op:     "storage.exit",
		method: http.MethodPost,
		path:   "/storage/exit",
		token:  token,
		body:   e,
	})
}
