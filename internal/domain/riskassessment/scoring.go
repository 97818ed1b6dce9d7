package riskassessment

import (
	"errors"
	"fmt"
	"math"

	"github.com/ehr/healthassist/internal/knowledge"
)

var (
	ErrUnknownQuestion = errors.New("unknown question")
	ErrUnknownOption   = errors.New("unknown answer option")
)

const (
	lowBandLimit      = 30
	moderateBandLimit = 65
)

// Advisor returns the recommendation list for a category.
type Advisor func(category string) []string

// Band maps a percentage onto a risk band. Both cut points belong to the
// higher band.
func Band(pct float64) RiskBand {
	switch {
	case pct < lowBandLimit:
		return BandLow
	case pct < moderateBandLimit:
		return BandModerate
	default:
		return BandHigh
	}
}

// Assess scores the answered questions of items, one entry per category in
// order of first appearance. Categories without an answered question are
// omitted. Answers naming an unknown question or option are skipped; use
// ValidateAnswer to reject them up front.
func Assess(items []knowledge.QuestionnaireItem, answers map[string]string, advice Advisor) []CategoryAssessment {
	out := []CategoryAssessment{}
	byCategory := make(map[string]int)

	for _, item := range items {
		value, ok := answers[item.ID]
		if !ok {
			continue
		}
		opt, ok := item.Option(value)
		if !ok {
			continue
		}

		idx, seen := byCategory[item.Category]
		if !seen {
			idx = len(out)
			byCategory[item.Category] = idx
			out = append(out, CategoryAssessment{Category: item.Category})
		}
		out[idx].Score += opt.Score
		out[idx].MaxScore += item.MaxScore()
	}

	for i := range out {
		a := &out[i]
		var pct float64
		if a.MaxScore > 0 {
			pct = float64(a.Score*100) / float64(a.MaxScore)
		}
		a.RiskBand = Band(pct)
		a.Percentage = math.Round(pct*10) / 10
		if advice != nil {
			a.Recommendations = advice(a.Category)
		}
	}
	return out
}

// ValidateAnswer checks that questionID exists in kb and that value is one
// of its options.
func ValidateAnswer(kb *knowledge.Base, questionID, value string) error {
	item, ok := kb.Question(questionID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQuestion, questionID)
	}
	if _, ok := item.Option(value); !ok {
		return fmt.Errorf("%w: %q for question %q", ErrUnknownOption, value, questionID)
	}
	return nil
}

// Score validates a complete answer map and assesses it against kb.
func Score(kb *knowledge.Base, answers map[string]string) ([]CategoryAssessment, error) {
	for id, value := range answers {
		if err := ValidateAnswer(kb, id, value); err != nil {
			return nil, err
		}
	}
	return Assess(kb.Questionnaire, answers, kb.CategoryAdvice), nil
}
