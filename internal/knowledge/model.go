package knowledge

import (
	"regexp"
	"sort"
)

// Severity classifies how serious a candidate condition is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var validSeverities = map[Severity]bool{
	SeverityLow: true, SeverityMedium: true, SeverityHigh: true,
}

// Weight returns the multiplier used when aggregating a risk score.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	default:
		return 1
	}
}

// DefaultCategory keys the recommendation list used for any questionnaire
// category without its own entry.
const DefaultCategory = "default"

// ConditionRule associates a symptom with one candidate condition.
type ConditionRule struct {
	Condition   string   `yaml:"condition" json:"condition"`
	Probability float64  `yaml:"probability" json:"probability"`
	Severity    Severity `yaml:"severity" json:"severity"`
}

// ConditionInfo holds the patient-facing text authored for a condition.
type ConditionInfo struct {
	Description     string   `yaml:"description" json:"description"`
	Recommendations []string `yaml:"recommendations" json:"recommendations"`
}

// ExtractionPattern maps a natural-language phrasing onto a symptom token.
type ExtractionPattern struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Symptom string `yaml:"symptom" json:"symptom"`

	re *regexp.Regexp
}

// Regexp returns the compiled pattern. It is nil until the base is validated.
func (p ExtractionPattern) Regexp() *regexp.Regexp {
	return p.re
}

// QuestionOption is one selectable answer of a questionnaire item.
type QuestionOption struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
	Score int    `yaml:"score" json:"score"`
}

// QuestionnaireItem is one question of the risk questionnaire.
type QuestionnaireItem struct {
	ID       string           `yaml:"id" json:"id"`
	Prompt   string           `yaml:"prompt" json:"prompt"`
	Category string           `yaml:"category" json:"category"`
	Options  []QuestionOption `yaml:"options" json:"options"`
}

// Option returns the option whose value matches.
func (q QuestionnaireItem) Option(value string) (QuestionOption, bool) {
	for _, o := range q.Options {
		if o.Value == value {
			return o, true
		}
	}
	return QuestionOption{}, false
}

// MaxScore returns the highest score offered by any option of the item.
func (q QuestionnaireItem) MaxScore() int {
	max := 0
	for _, o := range q.Options {
		if o.Score > max {
			max = o.Score
		}
	}
	return max
}

// Base is the complete, read-only knowledge base. A validated Base is safe
// for concurrent use because nothing mutates it after loading.
type Base struct {
	Version                 string
	Disclaimer              string
	Symptoms                map[string][]ConditionRule
	Conditions              map[string]ConditionInfo
	DefaultDescription      string
	DefaultRecommendations  []string
	Patterns                []ExtractionPattern
	Questionnaire           []QuestionnaireItem
	CategoryRecommendations map[string][]string

	vocabulary []string
	questions  map[string]int
}

// Rules returns the condition rules authored for a symptom token.
func (b *Base) Rules(symptom string) []ConditionRule {
	return b.Symptoms[symptom]
}

// Vocabulary returns every known symptom token in alphabetical order.
func (b *Base) Vocabulary() []string {
	out := make([]string, len(b.vocabulary))
	copy(out, b.vocabulary)
	return out
}

// IsKnownSymptom reports whether token is part of the vocabulary.
func (b *Base) IsKnownSymptom(token string) bool {
	_, ok := b.Symptoms[token]
	return ok
}

// Description returns the authored description for a condition, or the
// default description when none was authored.
func (b *Base) Description(condition string) string {
	if info, ok := b.Conditions[condition]; ok && info.Description != "" {
		return info.Description
	}
	return b.DefaultDescription
}

// Recommendations returns the authored advice for a condition. Conditions
// without an entry get DefaultRecommendations.
func (b *Base) Recommendations(condition string) []string {
	if info, ok := b.Conditions[condition]; ok && len(info.Recommendations) > 0 {
		return cloneStrings(info.Recommendations)
	}
	return cloneStrings(b.DefaultRecommendations)
}

// CategoryAdvice returns the recommendation list for a questionnaire
// category, falling back to the default entry.
func (b *Base) CategoryAdvice(category string) []string {
	if recs, ok := b.CategoryRecommendations[category]; ok {
		return cloneStrings(recs)
	}
	return cloneStrings(b.CategoryRecommendations[DefaultCategory])
}

// Question looks up a questionnaire item by id.
func (b *Base) Question(id string) (QuestionnaireItem, bool) {
	idx, ok := b.questions[id]
	if !ok {
		return QuestionnaireItem{}, false
	}
	return b.Questionnaire[idx], true
}

// index builds the derived lookup tables. Called once by Validate.
func (b *Base) index() {
	b.vocabulary = make([]string, 0, len(b.Symptoms))
	for s := range b.Symptoms {
		b.vocabulary = append(b.vocabulary, s)
	}
	sort.Strings(b.vocabulary)

	b.questions = make(map[string]int, len(b.Questionnaire))
	for i, q := range b.Questionnaire {
		b.questions[q.ID] = i
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
