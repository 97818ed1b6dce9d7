package inference

import (
	"math"
	"sort"

	"github.com/ehr/healthassist/internal/domain/symptom"
	"github.com/ehr/healthassist/internal/knowledge"
)

const (
	// MaxProbability caps every adjusted probability.
	MaxProbability = 0.95
	// MaxPredictions is the length limit of a result.
	MaxPredictions = 5

	seniorAge        = 65
	minorAge         = 18
	seniorMultiplier = 1.2
	minorMultiplier  = 0.8
	// Applied once per rule when more than one distinct symptom is given.
	// Not calibrated against epidemiological data.
	corroborationMultiplier = 1.1
	riskScale               = 20
	maxRiskScore            = 100
)

// Engine ranks candidate conditions for a set of symptoms. It only reads
// the knowledge base, so one Engine can serve any number of goroutines.
type Engine struct {
	kb *knowledge.Base
}

func NewEngine(kb *knowledge.Base) *Engine {
	return &Engine{kb: kb}
}

// Predict returns up to MaxPredictions conditions ordered by probability
// together with an aggregate risk score in [0,100]. An empty symptom set
// yields an empty result and a zero score. Unknown symptoms are ignored.
func (e *Engine) Predict(symptoms []string, demo *Demographics) Result {
	tokens := symptom.Normalize(symptoms)
	result := Result{Symptoms: tokens, Predictions: []Prediction{}}
	if len(tokens) == 0 {
		return result
	}

	var (
		merged   []*Prediction
		byName   = make(map[string]*Prediction)
		riskMass float64
	)
	for _, tok := range tokens {
		for _, rule := range e.kb.Rules(tok) {
			p := adjustedProbability(rule.Probability, demo, len(tokens))
			// Every hit counts toward risk, including repeated conditions.
			riskMass += p * rule.Severity.Weight()

			if existing, ok := byName[rule.Condition]; ok {
				if p > existing.Probability {
					existing.Probability = p
				}
				continue
			}
			pred := &Prediction{
				Condition:       rule.Condition,
				Probability:     p,
				Severity:        rule.Severity,
				Description:     e.kb.Description(rule.Condition),
				Recommendations: e.kb.Recommendations(rule.Condition),
			}
			byName[rule.Condition] = pred
			merged = append(merged, pred)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Probability > merged[j].Probability
	})
	if len(merged) > MaxPredictions {
		merged = merged[:MaxPredictions]
	}
	for _, p := range merged {
		p.Probability = roundProbability(p.Probability)
		result.Predictions = append(result.Predictions, *p)
	}
	result.RiskScore = riskScore(riskMass)
	return result
}

func adjustedProbability(base float64, demo *Demographics, symptomCount int) float64 {
	p := base
	if demo != nil && demo.Age != nil {
		switch age := *demo.Age; {
		case age > seniorAge:
			p *= seniorMultiplier
		case age < minorAge:
			p *= minorMultiplier
		}
	}
	if symptomCount > 1 {
		p *= corroborationMultiplier
	}
	return math.Min(p, MaxProbability)
}

func riskScore(mass float64) int {
	score := mass * riskScale
	score = math.Max(0, math.Min(score, maxRiskScore))
	return int(math.Round(score))
}

// roundProbability trims floating-point noise, e.g. 0.7*1.2*1.1 reports as 0.924.
func roundProbability(p float64) float64 {
	return math.Round(p*1000) / 1000
}
