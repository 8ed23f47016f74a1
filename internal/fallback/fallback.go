package fallback

import "strings"

// Rule maps trigger keywords to a canned reply. Rules are checked in order
// and the first keyword hit wins.
type Rule struct {
	Keywords []string
	Reply    string
}

// Override replaces the first suggestion when its keyword appears in the
// user's text. Overrides apply in order, so a later match wins.
type Override struct {
	Keyword    string
	Suggestion string
}

// Responder produces deterministic replies and follow-up suggestions without
// any external calls. Keyword tables are deployment data: an English and a
// Hebrew deployment run the same algorithm with different tables.
type Responder struct {
	rules        []Rule
	blankReply   string
	genericReply string
	base         [3]string
	overrides    []Override
}

// New builds a Responder from a keyword table.
func New(rules []Rule, blankReply, genericReply string, base [3]string, overrides []Override) *Responder {
	return &Responder{
		rules:        rules,
		blankReply:   blankReply,
		genericReply: genericReply,
		base:         base,
		overrides:    overrides,
	}
}

// English returns the responder with the English keyword table.
func English() *Responder {
	return New(
		[]Rule{
			{Keywords: []string{"ticket"}, Reply: "Remember to jump in right when sales open – every second counts."},
			{Keywords: []string{"flight", "trip", "vacation"}, Reply: "I can scan a few sites, compare routes, and remind you about duty-free snacks."},
			{Keywords: []string{"dinner", "eat"}, Reply: "Let's keep it easy: roasted veggies, tahini drizzle, and a cold drink."},
			{Keywords: []string{"hi", "hello", "hey"}, Reply: "Hey! What's up?"},
		},
		"Say anything and I'll riff with you.",
		"Got it. Let's break it into simple steps and I'll guide you through.",
		[3]string{"Give me an evening idea", "Set a reminder", "Plan a to-do list"},
		[]Override{
			{Keyword: "flight", Suggestion: "Find me cheap flights"},
			{Keyword: "dinner", Suggestion: "What should I eat tonight?"},
		},
	)
}

// Reply returns the canned reply for the user's text. Blank text always takes
// the blank branch; matching is case-insensitive substring, no stemming.
func (r *Responder) Reply(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return r.blankReply
	}

	lower := strings.ToLower(trimmed)
	for _, rule := range r.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return rule.Reply
			}
		}
	}
	return r.genericReply
}

// Suggestions returns three follow-up prompts for the user's text. The base
// triple is fixed; topic keywords replace the first entry.
func (r *Responder) Suggestions(text string) []string {
	suggestions := make([]string, len(r.base))
	copy(suggestions, r.base[:])

	lower := strings.ToLower(strings.TrimSpace(text))
	for _, ov := range r.overrides {
		if strings.Contains(lower, ov.Keyword) {
			suggestions[0] = ov.Suggestion
		}
	}
	return suggestions
}
