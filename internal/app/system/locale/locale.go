// Package locale formats currency, numbers and months the way the Brazilian
// Portuguese screens and documents show them.
//
// Month keys are the canonical "YYYY-MM" form used by the backend. Each key
// has two renderings: the full name with year ("Novembro 2025") and the short
// chart label ("Nov"). ParseDisplay inverts the full rendering exactly.
package locale

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var monthNames = [12]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

var monthShort = [12]string{
	"Jan", "Fev", "Mar", "Abr", "Mai", "Jun",
	"Jul", "Ago", "Set", "Out", "Nov", "Dez",
}

// MonthName returns the full Portuguese name for m (1-12), or "" when out of range.
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return monthNames[m-1]
}

// FormatBRL renders v as "R$ 1.234,50". Negative values keep their sign
// after the currency symbol ("R$ -1.000,00").
func FormatBRL(v float64) string {
	return "R$ " + FormatDecimal(v, 2)
}

// FormatDecimal renders v with the given number of decimals using a comma
// decimal separator and dot thousands separator.
func FormatDecimal(v float64, decimals int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	neg := v < 0
	s := strconv.FormatFloat(math.Abs(v), 'f', decimals, 64)

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	if neg && strings.Trim(s, "0.") != "" {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	if decimals > 0 {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

// MonthKey is a canonical "YYYY-MM" month.
type MonthKey struct {
	Year  int
	Month time.Month
}

// ParseKey parses "YYYY-MM".
func ParseKey(s string) (MonthKey, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return MonthKey{}, fmt.Errorf("invalid month key %q", s)
	}
	return MonthKey{Year: t.Year(), Month: t.Month()}, nil
}

// KeyOf returns the month containing t.
func KeyOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// String returns the canonical "YYYY-MM" form.
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Display returns the full name with year, e.g. "Novembro 2025".
func (k MonthKey) Display() string {
	return fmt.Sprintf("%s %d", MonthName(int(k.Month)), k.Year)
}

// Short returns the three-letter chart label, e.g. "Nov".
func (k MonthKey) Short() string {
	if k.Month < 1 || k.Month > 12 {
		return ""
	}
	return monthShort[k.Month-1]
}

// Previous returns the preceding calendar month.
func (k MonthKey) Previous() MonthKey {
	if k.Month == time.January {
		return MonthKey{Year: k.Year - 1, Month: time.December}
	}
	return MonthKey{Year: k.Year, Month: k.Month - 1}
}

// IsZero reports whether k is unset.
func (k MonthKey) IsZero() bool { return k.Year == 0 && k.Month == 0 }

// ParseDisplay converts a full rendering ("Novembro 2025") back to its key.
// Matching on the month name ignores case but not accents.
func ParseDisplay(s string) (MonthKey, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return MonthKey{}, fmt.Errorf("invalid month label %q", s)
	}
	year, err := strconv.Atoi(fields[1])
	if err != nil || year < 1 {
		return MonthKey{}, fmt.Errorf("invalid year in month label %q", s)
	}
	for i, name := range monthNames {
		if strings.EqualFold(name, fields[0]) {
			return MonthKey{Year: year, Month: time.Month(i + 1)}, nil
		}
	}
	return MonthKey{}, fmt.Errorf("unknown month name in %q", s)
}

// ParseAny accepts either a canonical key or a full display label.
func ParseAny(s string) (MonthKey, error) {
	if k, err := ParseKey(s); err == nil {
		return k, nil
	}
	return ParseDisplay(s)
}

// ShortLabel renders a "YYYY-MM" string as its short label, returning the
// input unchanged when it is not a valid key.
func ShortLabel(key string) string {
	k, err := ParseKey(key)
	if err != nil {
		return key
	}
	return k.Short()
}

// DisplayLabel renders a "YYYY-MM" string as its full label, returning the
// input unchanged when it is not a valid key.
func DisplayLabel(key string) string {
	k, err := ParseKey(key)
	if err != nil {
		return key
	}
	return k.Display()
}

// Recent returns the n months ending with the month containing now, most
// recent first.
func Recent(now time.Time, n int) []MonthKey {
	out := make([]MonthKey, 0, n)
	k := KeyOf(now)
	for i := 0; i < n; i++ {
		out = append(out, k)
		k = k.Previous()
	}
	return out
}

// FormatDateTime renders t as "dd/mm/yyyy às hh:mm:ss".
func FormatDateTime(t time.Time) string {
	return t.Format("02/01/2006") + " às " + t.Format("15:04:05")
}
