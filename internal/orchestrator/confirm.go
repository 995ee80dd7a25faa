package orchestrator

import "strings"

// Verdict is the parsed meaning of a user's reply to a confirmation
// prompt.
type Verdict string

const (
	VerdictAffirm  Verdict = "affirm"
	VerdictDeny    Verdict = "deny"
	VerdictUnclear Verdict = "unclear"
)

var affirmWords = []string{"yes", "y", "proceed", "ok", "confirm", "sure"}
var denyWords = []string{"no", "n", "cancel", "abort", "stop"}

// Classify parses a free-text confirmation reply. It is a pure function:
// case-insensitive token match against fixed affirm and deny sets, with
// affirm checked first. Matching whole tokens rather than raw substrings
// keeps the single-letter entries from firing inside unrelated words
// ("maybe" must not read as "y").
func Classify(text string) Verdict {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})

	for _, tok := range tokens {
		for _, w := range affirmWords {
			if tok == w {
				return VerdictAffirm
			}
		}
	}
	for _, tok := range tokens {
		for _, w := range denyWords {
			if tok == w {
				return VerdictDeny
			}
		}
	}
	return VerdictUnclear
}
