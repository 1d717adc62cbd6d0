package engine

import "strings"

// Phase is the side of the strategy a handler runs on.
type Phase int

// Handler phases.
const (
	PhasePre Phase = iota
	PhasePost
)

func (p Phase) String() string {
	if p == PhasePre {
		return "pre"
	}
	return "post"
}

// Classifier decides the phase of a handler from its registered name.
type Classifier func(name string) Phase

// DefaultKeywords mark a handler name as a pre handler.
var DefaultKeywords = []string{"validation", "permission", "autofill", "audit"}

// KeywordClassifier returns a classifier that puts a handler in the pre
// phase when its name contains one of keywords, ignoring case, and in the
// post phase otherwise.
func KeywordClassifier(keywords ...string) Classifier {
	kws := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kws = append(kws, k)
		}
	}
	return func(name string) Phase {
		lower := strings.ToLower(name)
		for _, k := range kws {
			if strings.Contains(lower, k) {
				return PhasePre
			}
		}
		return PhasePost
	}
}

// DefaultClassifier classifies by DefaultKeywords.
func DefaultClassifier() Classifier {
	return KeywordClassifier(DefaultKeywords...)
}
