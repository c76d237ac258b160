package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
)

// UnitOrders lists the orders of a unit.
func (c *Client) UnitOrders(ctx context.Context, token, unitID string) (json.RawMessage, error) {
	return c.doRaw(ctx, call{
		op:     "orders.list",
		method: http.MethodGet,
		path:   "/orders/unit/" + url.PathEscape(unitID),
		token:  token,
	})
}

// MyReportRaw fetches the caller's monthly report as raw JSON. month is a
// "YYYY-MM" key; empty asks the backend for its default month. An empty
// body is malformed.
func (c *Client) MyReportRaw(ctx context.Context, token, month string) (json.RawMessage, error) {
	var q url.Values
	if month != "" {
		q = url.Values{"month": {month}}
	}
	return c.doData(ctx, call{
		op:     "reports.me",
		method: http.MethodGet,
		path:   "/reports/me",
		query:  q,
		token:  token,
	})
}

// MyReport fetches and decodes the caller's monthly report.
func (c *Client) MyReport(ctx context.Context, token, month string) (*models.MonthlyReport, error) {
	raw, err := c.MyReportRaw(ctx, token, month)
	if err != nil {
		return nil, err
	}
	var r models.MonthlyReport
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, wrapMalformed("reports.me", err)
	}
	return &r, nil
}
