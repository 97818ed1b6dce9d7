package knowledge

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ValidationError lists every authoring problem found in a knowledge base.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid knowledge base (%d problems): %s",
		len(e.Problems), strings.Join(e.Problems, "; "))
}

func (e *ValidationError) add(format string, args ...interface{}) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Validate checks the schema of every table, compiles extraction patterns
// and builds lookup indexes. It returns a *ValidationError when anything is
// wrong.
func (b *Base) Validate() error {
	verr := &ValidationError{}

	if strings.TrimSpace(b.Disclaimer) == "" {
		verr.add("disclaimer is required")
	}
	if len(b.Symptoms) == 0 {
		verr.add("at least one symptom is required")
	}

	symptoms := make([]string, 0, len(b.Symptoms))
	for s := range b.Symptoms {
		symptoms = append(symptoms, s)
	}
	sort.Strings(symptoms)
	for _, s := range symptoms {
		if s == "" {
			verr.add("symptom key must not be empty")
			continue
		}
		rules := b.Symptoms[s]
		if len(rules) == 0 {
			verr.add("symptom %q has no condition rules", s)
		}
		for i, r := range rules {
			where := fmt.Sprintf("symptom %q rule %d", s, i)
			if strings.TrimSpace(r.Condition) == "" {
				verr.add("%s: condition is required", where)
			}
			if r.Probability < 0 || r.Probability > 1 {
				verr.add("%s: probability %v out of range [0,1]", where, r.Probability)
			}
			if !validSeverities[r.Severity] {
				verr.add("%s: invalid severity %q", where, r.Severity)
			}
		}
	}

	if b.DefaultDescription == "" {
		verr.add("default_description is required")
	}
	if len(b.DefaultRecommendations) != 3 {
		verr.add("default_recommendations must have exactly 3 items, got %d", len(b.DefaultRecommendations))
	}

	for i := range b.Patterns {
		p := &b.Patterns[i]
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			verr.add("pattern %d (%q): %v", i, p.Pattern, err)
			continue
		}
		p.re = re
		if _, ok := b.Symptoms[p.Symptom]; !ok {
			verr.add("pattern %d: symptom %q is not in the vocabulary", i, p.Symptom)
		}
	}

	seenIDs := make(map[string]bool, len(b.Questionnaire))
	for i, q := range b.Questionnaire {
		where := fmt.Sprintf("question %d (%s)", i, q.ID)
		if q.ID == "" {
			verr.add("question %d: id is required", i)
		} else if seenIDs[q.ID] {
			verr.add("%s: duplicate id", where)
		}
		seenIDs[q.ID] = true
		if q.Category == "" {
			verr.add("%s: category is required", where)
		}
		if len(q.Options) == 0 {
			verr.add("%s: at least one option is required", where)
		}
		seenValues := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			if seenValues[o.Value] {
				verr.add("%s: duplicate option value %q", where, o.Value)
			}
			seenValues[o.Value] = true
			if o.Score < 0 {
				verr.add("%s: option %q has negative score %d", where, o.Value, o.Score)
			}
		}
	}
	if _, ok := b.CategoryRecommendations[DefaultCategory]; !ok {
		verr.add("category_recommendations.%s is required", DefaultCategory)
	}

	if len(verr.Problems) > 0 {
		return verr
	}
	b.index()
	return nil
}
