// Package triggers decides which regulation practices and emotional topic
// modules should be spliced into Eco's prompt for a given user message.
//
// Scoring is a linear heuristic over keyword hits and the caller's hints
// (openness level, intensity, available minutes). The weights live in a
// YAML table so they can be edited without touching code.
package triggers

import (
	"math"
	"strconv"
	"strings"

	"github.com/PabloGalante/eco-agent/internal/textnorm"
)

// DefaultThreshold is the minimum score for a practice to be suggested.
const DefaultThreshold = 0.6

// PracticeID identifies a regulation practice.
type PracticeID string

const (
	PracticeGrounding PracticeID = "GROUNDING"
	PracticeBox       PracticeID = "BOX"
	PracticeDispenza  PracticeID = "DISPENZA"
)

// Valid reports whether id is one of the known practices.
func (id PracticeID) Valid() bool {
	switch id {
	case PracticeGrounding, PracticeBox, PracticeDispenza:
		return true
	}
	return false
}

// ParsePracticeID accepts ids in any case.
func ParsePracticeID(s string) (PracticeID, bool) {
	id := PracticeID(strings.ToUpper(strings.TrimSpace(s)))
	return id, id.Valid()
}

// Input is what the detector looks at. Nil hints fall back to neutral
// values: openness 1, intensity 0, minutes extracted from Text.
type Input struct {
	Text             string
	OpennessLevel    *int
	Intensity        *int
	MinutesAvailable *int
}

// Result is one suggested practice.
type Result struct {
	PracticeID PracticeID `json:"practice_id"`
	Module     string     `json:"module"`
	Score      float64    `json:"score"`
	Tags       []string   `json:"tags"`
	Reason     string     `json:"reason"`
}

// signals is Input resolved once per detection.
type signals struct {
	text       string
	openness   int
	intensity  int
	minutes    int
	hasMinutes bool
}

func readSignals(in Input) signals {
	s := signals{
		text:     textnorm.Normalize(in.Text),
		openness: 1,
	}
	if in.OpennessLevel != nil {
		s.openness = *in.OpennessLevel
	}
	if in.Intensity != nil {
		s.intensity = *in.Intensity
	}
	if in.MinutesAvailable != nil {
		s.minutes, s.hasMinutes = *in.MinutesAvailable, true
	} else {
		s.minutes, s.hasMinutes = extractMinutesNormalized(s.text)
	}
	return s
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// round2 keeps scores on a two-decimal grid so threshold comparisons do not
// depend on float summation order.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func (r Result) String() string {
	return string(r.PracticeID) + "(" + strconv.FormatFloat(r.Score, 'f', 2, 64) + ")"
}
