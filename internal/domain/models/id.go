// internal/domain/models/id.go
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ID is an identifier issued by the backend. Some resources use JSON
// numbers and others strings; ID remembers which one it was decoded from
// and writes it back the same way.
type ID struct {
	text    string
	numeric bool
}

// StringID is an id the backend sends as a JSON string.
func StringID(s string) ID { return ID{text: s} }

// NumberID is an id the backend sends as a JSON number.
func NumberID(n int64) ID { return ID{text: strconv.FormatInt(n, 10), numeric: true} }

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ID{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID{text: n.String(), numeric: true}
	return nil
}

// MarshalJSON writes the id in the JSON type it arrived as.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.text), nil
	}
	return json.Marshal(id.text)
}

// String returns the id as text.
func (id ID) String() string { return id.text }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id.text == "" }
