package nodes

import (
	"strings"

	contractx "github.com/shoptalk-ai/shoptalk/assistant/contract"
)

// TriggerPhrases are the fixed natural-language markers that signal the model
// wants a catalog lookup. This is a heuristic over free text, not a structured
// tool-call protocol.
var TriggerPhrases = []string{
	"let me check",
	"let me search",
	"looking up",
}

// PhraseTrigger builds a case-insensitive substring predicate over the given
// phrases.
func PhraseTrigger(phrases ...string) contractx.TriggerPredicate {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}

	return func(draft string) bool {
		draft = strings.ToLower(draft)
		for _, p := range lowered {
			if strings.Contains(draft, p) {
				return true
			}
		}
		return false
	}
}

// DefaultTrigger scans for TriggerPhrases.
func DefaultTrigger() contractx.TriggerPredicate {
	return PhraseTrigger(TriggerPhrases...)
}
