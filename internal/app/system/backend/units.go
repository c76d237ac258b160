package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
	"github.com/tidwall/gjson"
)

// UserUnits lists the units a user belongs to. A JSON document that is not
// an array means the user has no unit; an array whose entries cannot be
// decoded is malformed.
func (c *Client) UserUnits(ctx context.Context, token, userID string) ([]models.Unit, error) {
	const op = "units.list"
	raw, err := c.doData(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   "/user-unit/" + url.PathEscape(userID) + "/units",
		token:  token,
	})
	if err != nil {
		return nil, err
	}
	if !gjson.ParseBytes(raw).IsArray() {
		return []models.Unit{}, nil
	}
	var units []models.Unit
	if err := json.Unmarshal(raw, &units); err != nil {
		return nil, wrapMalformed(op, err)
	}
	return units, nil
}

// Unit fetches the detail of one unit.
func (c *Client) Unit(ctx context.Context, token string, id models.ID) (models.Unit, error) {
	var u models.Unit
	err := c.doJSON(ctx, call{
		op:     "units.get",
		method: http.MethodGet,
		path:   "/units/" + url.PathEscape(id.String()),
		token:  token,
	}, &u)
	return u, err
}
