package normalize

import (
	"encoding/json"
	"testing"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"user@example.com", "user@example.com"},
		{"USER@EXAMPLE.COM", "user@example.com"},
		{"User@Example.Com", "user@example.com"},
		{"  user@example.com  ", "user@example.com"},
		{"\tuser@example.com\n", "user@example.com"},
		{"", ""},
		{"   ", ""},
		{" UPPER@CASE.COM ", "upper@case.com"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Email(tt.input); got != tt.want {
				t.Errorf("Email(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"John Doe", "John Doe"},
		{"  John Doe  ", "John Doe"},
		{"\tJohn Doe\n", "John Doe"},
		{"john doe", "john doe"},
		{"JOHN DOE", "JOHN DOE"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Name(tt.input); got != tt.want {
				t.Errorf("Name(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestStorageOrigin(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"comprado", "comprado"},
		{"Comprado (Verba)", "comprado"},
		{"  COMPRADO ", "comprado"},
		{"doado", "doado"},
		{"Doação", "doado"},
		{"", "doado"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := StorageOrigin(tt.input); got != tt.want {
				t.Errorf("StorageOrigin(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPresent(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"", false},
		{"null", false},
		{`""`, false},
		{`"  "`, false},
		{"0", true},
		{`"0"`, true},
		{"false", true},
		{"[]", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := Present(json.RawMessage(tt.raw)); got != tt.want {
				t.Errorf("Present(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFloat(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"12.5", 12.5, true},
		{`"12.5"`, 12.5, true},
		{`"12,5"`, 12.5, true},
		{`" 3 "`, 3, true},
		{"-1", -1, true},
		{`"abc"`, 0, false},
		{"true", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Float(json.RawMessage(tt.raw))
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Float(%s) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestInt(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"45", 45, true},
		{`"45"`, 45, true},
		{"0", 0, true},
		{"-3", -3, true},
		{"4.5", 0, false},
		{`"4.0"`, 4, true},
		{`"dez"`, 0, false},
		{"1e12", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Int(json.RawMessage(tt.raw))
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Int(%s) = %v, %v; want %v, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
