package analyzer

import "strings"

// Keyword verdicts below this confidence are never trusted on their own.
const escalationConfidenceThreshold = 60

// High-impact terms that always warrant LLM confirmation. Matched as raw
// substrings, unlike the word-boundary matching of the keyword scorer.
var escalationTriggers = []string{
	"regulation", "ban", "approval", "etf", "sec", "hack",
}

// EscalationPolicy decides whether a keyword verdict needs LLM confirmation.
type EscalationPolicy struct {
	triggers []string
}

// NewEscalationPolicy creates the policy with its fixed trigger set.
func NewEscalationPolicy() *EscalationPolicy {
	return &EscalationPolicy{triggers: escalationTriggers}
}

// ShouldEscalate reports whether the item should be sent to the LLM stage.
// Text is expected lowercased.
func (p *EscalationPolicy) ShouldEscalate(confidence int, text string) bool {
	if confidence < escalationConfidenceThreshold {
		return true
	}
	for _, trigger := range p.triggers {
		if strings.Contains(text, trigger) {
			return true
		}
	}
	return false
}
