package triggers

import "github.com/PabloGalante/eco-agent/internal/textnorm"

// TopicMatch is an emotional module selected for a message.
type TopicMatch struct {
	Module         string   `json:"module"`
	MatchedTrigger string   `json:"matched_trigger"`
	Tags           []string `json:"tags"`
	Emotions       []string `json:"emotions"`
	Related        []string `json:"related,omitempty"`
}

// MatchTopics returns, in table order, the topic modules whose triggers
// appear in text and whose minimum intensity is reached.
func (d *Detector) MatchTopics(text string, intensity int) []TopicMatch {
	normalized := textnorm.Normalize(text)
	if normalized == "" {
		return nil
	}

	var out []TopicMatch
	for _, topic := range d.table.Topics {
		if intensity < topic.MinIntensity {
			continue
		}
		hit, ok := textnorm.ContainsAny(normalized, topic.Triggers)
		if !ok {
			continue
		}
		out = append(out, TopicMatch{
			Module:         topic.Module,
			MatchedTrigger: hit,
			Tags:           append([]string(nil), topic.Tags...),
			Emotions:       append([]string(nil), topic.Emotions...),
			Related:        append([]string(nil), topic.Related...),
		})
	}
	return out
}
