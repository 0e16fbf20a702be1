package triggers

import "sort"

// Detector runs every practice scorer of a Table. It holds no mutable
// state and is safe for concurrent use.
type Detector struct {
	table   *Table
	scorers []Scorer
}

// NewDetector builds a detector over a validated table.
func NewDetector(t *Table) *Detector {
	d := &Detector{table: t}
	for _, rule := range t.Practices {
		d.scorers = append(d.scorers, newScorer(rule, t.KeywordSets))
	}
	return d
}

// NewDefaultDetector builds a detector over the embedded table.
func NewDefaultDetector() (*Detector, error) {
	t, err := DefaultTable()
	if err != nil {
		return nil, err
	}
	return NewDetector(t), nil
}

// LoadDetector builds a detector over the table at path, or over the
// embedded table when path is empty.
func LoadDetector(path string) (*Detector, error) {
	if path == "" {
		return NewDefaultDetector()
	}
	t, err := LoadTableFile(path)
	if err != nil {
		return nil, err
	}
	return NewDetector(t), nil
}

// Scores rates every practice, in table order, without any threshold.
func (d *Detector) Scores(in Input) []Result {
	sig := readSignals(in)

	out := make([]Result, 0, len(d.scorers))
	for _, s := range d.scorers {
		out = append(out, s.result(s.score(sig)))
	}
	return out
}

// Detect returns the practices scoring at least threshold.
//
// In a crisis (intensity at or above the crisis level) the crisis practice
// comes first; otherwise, when the user has only a few minutes, the short
// practice comes first. The rest is ordered by descending score.
func (d *Detector) Detect(in Input, threshold float64) []Result {
	sig := readSignals(in)

	results := make([]Result, 0, len(d.scorers))
	for _, s := range d.scorers {
		if score := s.score(sig); score >= threshold {
			results = append(results, s.result(score))
		}
	}

	first := d.priority(sig)
	sort.SliceStable(results, func(i, j int) bool {
		pi, pj := results[i].PracticeID == first, results[j].PracticeID == first
		if pi != pj {
			return pi
		}
		return results[i].Score > results[j].Score
	})

	return results
}

// Best returns the first practice Detect would suggest.
func (d *Detector) Best(in Input, threshold float64) (Result, bool) {
	r := d.Detect(in, threshold)
	if len(r) == 0 {
		return Result{}, false
	}
	return r[0], true
}

func (d *Detector) priority(sig signals) PracticeID {
	o := d.table.Ordering
	if o.CrisisPractice != "" && o.CrisisIntensity > 0 && sig.intensity >= o.CrisisIntensity {
		return o.CrisisPractice
	}
	if o.ShortPractice != "" && sig.hasMinutes && sig.minutes <= o.ShortMinutes {
		return o.ShortPractice
	}
	return ""
}
