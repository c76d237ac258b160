// internal/domain/models/unit.go
package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// Unit is a food-distribution site as returned by the backend.
//
// Only the fields this service reads are typed; Extra keeps the rest of the
// backend payload so proxied responses are not trimmed.
type Unit struct {
	ID       ID     `json:"id"`
	Name     string `json:"name,omitempty"`
	Capacity *int   `json:"capacity,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the typed fields and keeps every field in Extra.
// Capacity may arrive as a whole-number float such as 120.0.
func (u *Unit) UnmarshalJSON(b []byte) error {
	type plain Unit
	var p struct {
		plain
		Capacity *json.Number `json:"capacity"`
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var extra map[string]json.RawMessage
	if err := json.Unmarshal(b, &extra); err != nil {
		return err
	}
	*u = Unit(p.plain)
	u.Capacity = nil
	if p.Capacity != nil {
		n, err := wholeNumber(*p.Capacity)
		if err != nil {
			return fmt.Errorf("unit capacity: %w", err)
		}
		u.Capacity = &n
	}
	u.Extra = extra
	return nil
}

func wholeNumber(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%s is not a whole number", n)
	}
	return int(f), nil
}

// MarshalJSON writes Extra overlaid with the typed fields.
func (u Unit) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(u.Extra)+3)
	for k, v := range u.Extra {
		out[k] = v
	}
	out["id"] = u.ID
	if u.Name != "" {
		out["name"] = u.Name
	}
	if u.Capacity != nil {
		out["capacity"] = *u.Capacity
	}
	return json.Marshal(out)
}

// Merge overlays detail on top of u, detail fields winning. It is used when
// the unit list entry is enriched with the unit detail endpoint.
func (u Unit) Merge(detail Unit) Unit {
	merged := Unit{ID: u.ID, Name: u.Name, Capacity: u.Capacity}
	merged.Extra = make(map[string]json.RawMessage, len(u.Extra)+len(detail.Extra))
	for k, v := range u.Extra {
		merged.Extra[k] = v
	}
	for k, v := range detail.Extra {
		merged.Extra[k] = v
	}
	if !detail.ID.IsZero() {
		merged.ID = detail.ID
	}
	if detail.Name != "" {
		merged.Name = detail.Name
	}
	if detail.Capacity != nil {
		merged.Capacity = detail.Capacity
	}
	return merged
}
