// Package normalize turns the loosely typed values browsers send into the
// forms the backend expects. Forms submit numbers either as JSON numbers or
// as numeric strings; both are accepted.
package normalize

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/dalemusser/gestaoalimentar/internal/domain/models"
)

// Email trims whitespace and lowercases.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims whitespace.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims whitespace.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// StorageOrigin maps the origin labels the UI uses to the backend's
// values. Anything that is not a purchase is a donation.
func StorageOrigin(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "comprado", "comprado (verba)", "verba":
		return models.OriginBought
	default:
		return models.OriginDonated
	}
}

// Present reports whether raw holds a value: not absent, not null and not
// an empty string.
func Present(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return false
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Float reads a JSON number or numeric string.
func Float(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = v
	} else if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int reads a whole JSON number or integer string. Fractions are rejected.
func Int(raw json.RawMessage) (int, bool) {
	f, ok := Float(raw)
	if !ok || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
