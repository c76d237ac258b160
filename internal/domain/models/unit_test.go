package models

import (
	"encoding/json"
	"testing"
)

func TestUnit_Capacity(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    int
		wantNil bool
		wantErr bool
	}{
		{name: "integer", in: `{"id":7,"capacity":120}`, want: 120},
		{name: "whole float", in: `{"id":7,"capacity":120.0}`, want: 120},
		{name: "absent", in: `{"id":7}`, wantNil: true},
		{name: "null", in: `{"id":7,"capacity":null}`, wantNil: true},
		{name: "fractional", in: `{"id":7,"capacity":120.5}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var u Unit
			err := json.Unmarshal([]byte(tt.in), &u)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Unmarshal(%s) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if u.ID != NumberID(7) {
				t.Errorf("ID = %v", u.ID)
			}
			switch {
			case tt.wantNil && u.Capacity != nil:
				t.Errorf("Capacity = %d, want nil", *u.Capacity)
			case !tt.wantNil && (u.Capacity == nil || *u.Capacity != tt.want):
				t.Errorf("Capacity = %v, want %d", u.Capacity, tt.want)
			}
		})
	}
}

func TestUnit_KeepsExtraFields(t *testing.T) {
	var u Unit
	if err := json.Unmarshal([]byte(`{"id":"u-1","name":"Centro","city":"Recife"}`), &u); err != nil {
		t.Fatal(err)
	}
	out, err := json.Marshal(u)
	if err != nil {
		t.Fatal(err)
	}
	var back map[string]any
	_ = json.Unmarshal(out, &back)
	if back["id"] != "u-1" || back["city"] != "Recife" || back["name"] != "Centro" {
		t.Errorf("re-encoded unit = %s", out)
	}
}
