package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
)

// Frequencies lists the attendance records of a unit.
func (c *Client) Frequencies(ctx context.Context, token string, unitID models.ID) (json.RawMessage, error) {
	return c.doRaw(ctx, call{
		op:     "frequency.list",
		method: http.MethodGet,
		path:   "/frequency",
		query:  url.Values{"unit_id": {unitID.String()}},
		token:  token,
	})
}

// CreateFrequency registers one attendance record.
func (c *Client) CreateFrequency(ctx context.Context, token string, f models.NewFrequency) (json.RawMessage, error) {
	return c.doRaw(ctx, call{
		op:     "frequency.create",
		method: http.MethodPost,
		path:   "/frequency",
		token:  token,
		body:   f,
	})
}

// UpdateFrequency patches one attendance record.
func (c *Client) UpdateFrequency(ctx context.Context, token, id string, p models.FrequencyPatch) (json.RawMessage, error) {
	return c.doRaw(ctx, call{
		op:     "frequency.update",
		method: http.MethodPut,
		path:   "/frequency/" + url.PathEscape(id),
		token:  token,
		body:   p,
	})
}
