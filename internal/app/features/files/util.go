package files

import (
	"strconv"

	"github.com/dalemusser/gestaoalimentar/internal/app/system/locale"
)

var sizeUnits = []string{"KB", "MB", "GB"}

// FormatFileSize renders n bytes the way Brazilian users read sizes:
// "512 B", "1,5 KB", "32,0 MB".
func FormatFileSize(n int64) string {
	if n < 1024 {
		return strconv.FormatInt(n, 10) + " B"
	}
	v := float64(n) / 1024
	unit := 0
	for v >= 1024 && unit < len(sizeUnits)-1 {
		v /= 1024
		unit++
	}
	return locale.FormatDecimal(v, 1) + " " + sizeUnits[unit]
}

// TooLargeMessage is the error for an upload over limit bytes.
func TooLargeMessage(limit int64) string {
	return "Arquivo muito grande (máx. " + FormatFileSize(limit) + ")"
}
