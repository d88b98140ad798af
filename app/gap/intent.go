package gap

import (
	"strings"
)

// DefaultIntentPatterns returns the built-in intent table. Order matters:
// on equal multipliers the earlier-declared intent wins the primary slot.
func DefaultIntentPatterns() []IntentPattern {
	return []IntentPattern{
		{
			Intent:      "question",
			Triggers:    []string{"how", "what", "why", "when", "where", "who", "can", "should", "does", "is", "are", "will", "would"},
			Multiplier:  1.5,
			Description: "Question-based queries - Perfect for featured snippets & AI answers",
		},
		{
			Intent:      "commercial",
			Triggers:    []string{"best", "top", "vs", "versus", "review", "compare", "pricing", "cost", "alternative"},
			Multiplier:  1.3,
			Description: "Commercial intent - Good for AI recommendations",
		},
		{
			Intent:      "informational",
			Triggers:    []string{"guide", "tutorial", "tips", "examples", "template", "checklist", "definition", "meaning"},
			Multiplier:  1.4,
			Description: "Informational queries - Excellent for AI citations",
		},
		{
			Intent:      "list",
			Triggers:    []string{"list", "ways to", "steps to", "types of", "kinds of", "ideas for"},
			Multiplier:  1.4,
			Description: "List-based queries - Perfect for structured answers",
		},
		{
			Intent:      "local",
			Triggers:    []string{"near me", "in", "local", "nearby", "around"},
			Multiplier:  1.1,
			Description: "Local queries",
		},
	}
}

type Classifier struct {
	patterns []IntentPattern
}

func NewClassifier() *Classifier {
	return NewClassifierWithPatterns(DefaultIntentPatterns())
}

// NewClassifierWithPatterns builds a classifier over a custom table. The
// table is treated as read-only after construction and is safe to share
// across goroutines.
func NewClassifierWithPatterns(patterns []IntentPattern) *Classifier {
	return &Classifier{patterns: patterns}
}

// Run assigns Intent, IntentMultiplier and MatchedIntents. Matching is done
// on a lower-cased copy; the stored keyword is never modified. The primary
// intent is the matched pattern with the strictly highest multiplier, scanned
// in table order, so an equal multiplier never displaces an earlier match.
func (c *Classifier) Run(record *KeywordRecord) {
	lowered := strings.ToLower(record.Keyword)

	matched := []string{}
	maxMultiplier := 1.0
	primary := "other"

	for _, pattern := range c.patterns {
		if !pattern.matchesAny(lowered) {
			continue
		}
		matched = append(matched, pattern.Intent)
		if pattern.Multiplier > maxMultiplier {
			maxMultiplier = pattern.Multiplier
			primary = pattern.Intent
		}
	}

	record.Intent = primary
	record.IntentMultiplier = maxMultiplier
	record.MatchedIntents = matched
}

func (p *IntentPattern) matchesAny(lowered string) bool {
	for _, trigger := range p.Triggers {
		if strings.Contains(lowered, trigger) {
			return true
		}
	}
	return false
}
