// Package greeting answers bare greetings and farewells with canned,
// time-of-day aware replies so the conversation service can skip the LLM.
package greeting

import (
	"regexp"
	"strings"

	"github.com/PabloGalante/eco-agent/internal/textnorm"
)

// MaxGreetingLen is the longest normalized message still treated as a
// greeting or farewell.
const MaxGreetingLen = 64

// Kind is the classification of the latest message.
type Kind string

const (
	KindNone     Kind = ""
	KindGreeting Kind = "greeting"
	KindFarewell Kind = "farewell"
)

// Both expressions run over normalized text (lowercase, no accents).
var (
	greetRe = regexp.MustCompile(`(?i)^(?:(?:oi+|oie+|ola+|ol[aá]|alo+|opa+|salve)(?:[, ]*(?:tudo\s*bem|td\s*bem))?|tudo\s*(?:bem|bom|certo)|oi+[, ]*tudo\s*bem|ol[aá]\s*eco|oi\s*eco|oie\s*eco|ola\s*eco|alo\s*eco|bom\s*dia+|boa\s*tarde+|boa\s*noite+|boa\s*madrugada+|e\s*a[ei]|e\s*a[ií]\??|eai|eae|fala(?:\s*ai)?|falae|hey+|hi+|hello+|yo+|sup|beleza|blz|suave|de\s*boa|tranq(?:s)?|tranquilo(?:\s*ai)?|como\s*(?:vai|vc\s*esta|voce\s*esta|ce\s*ta|c[eu]\s*ta))(?:[\s,]*(?:@?eco|bot|assistente|ai|chat))?\s*[!?.…]*$`)

	farewellRe = regexp.MustCompile(`(?i)^(?:tchau+|ate\s+mais|ate\s+logo|valeu+|vlw+|obrigad[oa]+|brigad[oa]+|falou+|fui+|bom\s*descanso|durma\s*bem|ate\s*amanha|ate\s*breve|ate)\s*[!?.…]*$`)

	// intent verbs that mean the user already brought something to talk about
	substantiveRe = regexp.MustCompile(`\b(?:quero|preciso|como|por que|porque|ajuda|planejar|plano|passo|sinto|penso|lembro)\b`)
)

// Classify reports whether text is a greeting, a farewell or neither.
// A message matching both is a farewell.
func Classify(text string) Kind {
	return classifyNormalized(textnorm.Normalize(text))
}

func classifyNormalized(n string) Kind {
	if n == "" || len([]rune(n)) > MaxGreetingLen {
		return KindNone
	}
	if farewellRe.MatchString(n) {
		return KindFarewell
	}
	if greetRe.MatchString(n) {
		return KindGreeting
	}
	return KindNone
}

// HasSubstantiveContent reports whether text carries more than a greeting:
// a question mark, an intent verb or more than six words.
func HasSubstantiveContent(text string) bool {
	n := textnorm.Normalize(text)
	if n == "" {
		return false
	}
	if strings.ContainsRune(n, '?') {
		return true
	}
	return substantiveRe.MatchString(n) || textnorm.WordCount(n) > 6
}
