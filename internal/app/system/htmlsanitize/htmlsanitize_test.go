package htmlsanitize

import "testing"

func TestText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "  Mercado Central  ", "Mercado Central"},
		{"script", `Arroz<script>alert(1)</script>`, "Arroz"},
		{"bold", "<b>Feijão</b> carioca", "Feijão carioca"},
		{"entity", "Arroz &amp; Feijão", "Arroz & Feijão"},
		{"ampersand", "Arroz & Feijão", "Arroz & Feijão"},
		{"attribute payload", `<img src=x onerror="alert(1)">Nota`, "Nota"},
		{"link", `<a href="javascript:alert(1)">Doação</a>`, "Doação"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Text(tt.in); got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestText_Idempotent(t *testing.T) {
	in := "<p>Doação <i>mensal</i></p>"
	once := Text(in)
	if twice := Text(once); twice != once {
		t.Errorf("Text not idempotent: %q then %q", once, twice)
	}
}

func TestTextPtr(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Error("TextPtr(nil) != nil")
	}
	blank := "<br/>"
	if TextPtr(&blank) != nil {
		t.Error("markup-only value should become nil")
	}
	v := "<b>NF-123</b>"
	if got := TextPtr(&v); got == nil || *got != "NF-123" {
		t.Errorf("TextPtr() = %v", got)
	}
}
