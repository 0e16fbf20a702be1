package greeting

import "time"

// Band is a period of the client's day.
type Band string

const (
	BandNight     Band = "night"     // before 06h
	BandMorning   Band = "morning"   // before 12h
	BandAfternoon Band = "afternoon" // before 18h
	BandEvening   Band = "evening"
)

// BandForHour maps an hour (0–23) to its band.
func BandForHour(h int) Band {
	switch {
	case h < 6:
		return BandNight
	case h < 12:
		return BandMorning
	case h < 18:
		return BandAfternoon
	default:
		return BandEvening
	}
}

// Salutation is the greeting-of-the-day for the band.
func (b Band) Salutation() string {
	switch b {
	case BandMorning:
		return "Bom dia"
	case BandAfternoon:
		return "Boa tarde"
	default:
		return "Boa noite"
	}
}

// Tone is the fixed register label attached to replies in this band.
func (b Band) Tone() string {
	switch b {
	case BandNight:
		return "recolhimento"
	case BandMorning:
		return "abertura"
	case BandAfternoon:
		return "reavaliacao"
	default:
		return "desaceleracao"
	}
}

// brazilOffset is used when the client sends neither hour nor timezone.
var brazilOffset = time.FixedZone("UTC-3", -3*60*60)

// clientHour resolves the client's local hour: explicit hour, then IANA
// timezone, then UTC-3.
func clientHour(now time.Time, hour *int, tz string) int {
	if hour != nil && *hour >= 0 && *hour <= 23 {
		return *hour
	}
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return now.In(loc).Hour()
		}
	}
	return now.In(brazilOffset).Hour()
}
