package triggers

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/PabloGalante/eco-agent/internal/textnorm"
)

//go:embed triggers.yaml
var defaultTableYAML []byte

var ErrInvalidTable = errors.New("invalid trigger table")

// Table is the declarative description of every keyword trigger Eco knows:
// named keyword sets, the weighted rules of each practice, the ordering
// policy of the detector and the emotional topic modules.
type Table struct {
	KeywordSets map[string][]string `yaml:"keyword_sets"`
	Practices   []PracticeRule      `yaml:"practices"`
	Ordering    Ordering            `yaml:"ordering"`
	Topics      []TopicRule         `yaml:"topics"`
}

// PracticeRule is the weighted rule set of a single practice scorer.
type PracticeRule struct {
	ID        PracticeID      `yaml:"id"`
	Module    string          `yaml:"module"`
	Tags      []string        `yaml:"tags"`
	Reason    string          `yaml:"reason"`
	Keywords  []KeywordWeight `yaml:"keywords"`
	Intensity []Tier          `yaml:"intensity"`
	Openness  []Tier          `yaml:"openness"`
	Minutes   []Tier          `yaml:"minutes"`
}

// KeywordWeight adds Weight when any phrase of keyword set Set is present.
type KeywordWeight struct {
	Set    string  `yaml:"set"`
	Weight float64 `yaml:"weight"`
}

// Tier adds Weight when a value lies in [Min, Max]. Open bounds are nil.
// Within a list only the first matching tier counts.
type Tier struct {
	Min    *int    `yaml:"min"`
	Max    *int    `yaml:"max"`
	Weight float64 `yaml:"weight"`
}

func (t Tier) matches(v int) bool {
	if t.Min != nil && v < *t.Min {
		return false
	}
	if t.Max != nil && v > *t.Max {
		return false
	}
	return true
}

// Ordering names the practices that jump to the front of a detection.
type Ordering struct {
	CrisisPractice  PracticeID `yaml:"crisis_practice"`
	CrisisIntensity int        `yaml:"crisis_intensity"`
	ShortPractice   PracticeID `yaml:"short_practice"`
	ShortMinutes    int        `yaml:"short_minutes"`
}

// TopicRule selects an emotional module when a trigger phrase is present
// and the estimated intensity reaches MinIntensity.
type TopicRule struct {
	Module       string   `yaml:"module"`
	MinIntensity int      `yaml:"min_intensity"`
	Triggers     []string `yaml:"triggers"`
	Tags         []string `yaml:"tags"`
	Emotions     []string `yaml:"emotions"`
	Related      []string `yaml:"related"`
}

// DefaultTable returns the table embedded in the binary.
func DefaultTable() (*Table, error) {
	return LoadTable(bytes.NewReader(defaultTableYAML))
}

// LoadTableFile reads a YAML table from disk.
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trigger table: %w", err)
	}
	defer f.Close()

	return LoadTable(f)
}

// LoadTable decodes, normalizes and validates a YAML table.
func LoadTable(r io.Reader) (*Table, error) {
	var t Table

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil {
		return nil, fmt.Errorf("decode trigger table: %w", err)
	}

	t.normalize()

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Table) normalize() {
	for name, phrases := range t.KeywordSets {
		t.KeywordSets[name] = normalizeAll(phrases)
	}
	for i := range t.Topics {
		t.Topics[i].Triggers = normalizeAll(t.Topics[i].Triggers)
	}
}

func normalizeAll(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if n := textnorm.Normalize(p); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks that every reference in the table resolves.
func (t *Table) Validate() error {
	if len(t.Practices) == 0 {
		return fmt.Errorf("%w: no practices", ErrInvalidTable)
	}

	seen := make(map[PracticeID]bool, len(t.Practices))
	for _, p := range t.Practices {
		if !p.ID.Valid() {
			return fmt.Errorf("%w: unknown practice %q", ErrInvalidTable, p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: practice %s declared twice", ErrInvalidTable, p.ID)
		}
		seen[p.ID] = true

		if p.Module == "" {
			return fmt.Errorf("%w: practice %s has no module", ErrInvalidTable, p.ID)
		}
		for _, kw := range p.Keywords {
			if len(t.KeywordSets[kw.Set]) == 0 {
				return fmt.Errorf("%w: practice %s uses empty or unknown keyword set %q", ErrInvalidTable, p.ID, kw.Set)
			}
		}
	}

	if id := t.Ordering.CrisisPractice; id != "" && !seen[id] {
		return fmt.Errorf("%w: crisis practice %s is not declared", ErrInvalidTable, id)
	}
	if id := t.Ordering.ShortPractice; id != "" && !seen[id] {
		return fmt.Errorf("%w: short practice %s is not declared", ErrInvalidTable, id)
	}

	for i, topic := range t.Topics {
		if topic.Module == "" {
			return fmt.Errorf("%w: topic #%d has no module", ErrInvalidTable, i)
		}
		if len(topic.Triggers) == 0 {
			return fmt.Errorf("%w: topic %s has no triggers", ErrInvalidTable, topic.Module)
		}
	}

	return nil
}
