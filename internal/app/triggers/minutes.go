package triggers

import (
	"regexp"
	"strconv"

	"github.com/PabloGalante/eco-agent/internal/textnorm"
)

// Matches "2 min", "3min", "5 minutos", "2m", "2'" and "2 min." once the
// text is normalized. The apostrophe forms need no word boundary after them.
var minutesRe = regexp.MustCompile(`\b(\d{1,2})\s*(?:(?:m|min|min\.|minuto|minutos)\b|['’])`)

// ExtractMinutes returns the first "N minutes" mention in text.
func ExtractMinutes(text string) (int, bool) {
	return extractMinutesNormalized(textnorm.Normalize(text))
}

func extractMinutesNormalized(text string) (int, bool) {
	m := minutesRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
