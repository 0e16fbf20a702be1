package triggers

import "github.com/PabloGalante/eco-agent/internal/textnorm"

// Scorer computes the heuristic score of one practice.
type Scorer struct {
	rule     PracticeRule
	keywords []weightedSet
}

type weightedSet struct {
	phrases []string
	weight  float64
}

func newScorer(rule PracticeRule, sets map[string][]string) Scorer {
	s := Scorer{rule: rule}
	for _, kw := range rule.Keywords {
		s.keywords = append(s.keywords, weightedSet{
			phrases: sets[kw.Set],
			weight:  kw.Weight,
		})
	}
	return s
}

// Practice returns the id of the practice this scorer rates.
func (s Scorer) Practice() PracticeID {
	return s.rule.ID
}

// Score returns a value in [0,1]. Missing signals contribute nothing.
func (s Scorer) Score(in Input) float64 {
	return s.score(readSignals(in))
}

func (s Scorer) score(sig signals) float64 {
	var total float64

	for _, kw := range s.keywords {
		if _, ok := textnorm.ContainsAny(sig.text, kw.phrases); ok {
			total += kw.weight
		}
	}

	total += firstTier(s.rule.Intensity, sig.intensity)
	total += firstTier(s.rule.Openness, sig.openness)
	if sig.hasMinutes {
		total += firstTier(s.rule.Minutes, sig.minutes)
	}

	return round2(clamp01(total))
}

func firstTier(tiers []Tier, v int) float64 {
	for _, t := range tiers {
		if t.matches(v) {
			return t.Weight
		}
	}
	return 0
}

func (s Scorer) result(score float64) Result {
	tags := make([]string, len(s.rule.Tags))
	copy(tags, s.rule.Tags)

	return Result{
		PracticeID: s.rule.ID,
		Module:     s.rule.Module,
		Score:      score,
		Tags:       tags,
		Reason:     s.rule.Reason,
	}
}
