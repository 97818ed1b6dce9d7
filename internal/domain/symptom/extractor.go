package symptom

import (
	"sort"
	"strings"

	"github.com/ehr/healthassist/internal/knowledge"
)

// Extractor turns free text into known symptom tokens. It holds no mutable
// state and may be shared between goroutines.
type Extractor struct {
	vocabulary []string
	patterns   []knowledge.ExtractionPattern
}

// NewExtractor builds an extractor over the vocabulary and phrasing
// patterns of a validated knowledge base.
func NewExtractor(kb *knowledge.Base) *Extractor {
	return &Extractor{
		vocabulary: kb.Vocabulary(),
		patterns:   kb.Patterns,
	}
}

// Extract returns the distinct symptom tokens found in text, sorted.
// Vocabulary phrases are matched as substrings first; phrasing patterns
// then add tokens the text describes without naming them.
func (e *Extractor) Extract(text string) []string {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return []string{}
	}

	found := make(map[string]bool)
	for _, term := range e.vocabulary {
		if strings.Contains(lower, term) {
			found[term] = true
		}
	}
	for _, p := range e.patterns {
		if found[p.Symptom] {
			continue
		}
		if re := p.Regexp(); re != nil && re.MatchString(lower) {
			found[p.Symptom] = true
		}
	}
	return sortedKeys(found)
}

// Accumulate merges the tokens found in text into seen, for callers that
// receive a transcript in pieces. Tokens already seen are never dropped.
func (e *Extractor) Accumulate(seen []string, text string) []string {
	set := make(map[string]bool, len(seen))
	for _, s := range seen {
		set[s] = true
	}
	for _, s := range e.Extract(text) {
		set[s] = true
	}
	return sortedKeys(set)
}

// Normalize trims, lower-cases and de-duplicates caller-supplied tokens,
// keeping first-seen order. Empty entries are dropped.
func Normalize(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	seen := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Union appends the tokens of extra that are not already in base.
func Union(base, extra []string) []string {
	return Normalize(append(append([]string{}, base...), extra...))
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
