package inference

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/healthassist/internal/domain/symptom"
	"github.com/ehr/healthassist/internal/knowledge"
)

const maxAge = 150

// Options tune the symptom-check service.
type Options struct {
	// ThinkingDelay paces responses for the UI. It has no effect on results
	// and is abandoned when the request context ends.
	ThinkingDelay time.Duration
	// MaxTextLength truncates free text, in runes, before extraction.
	// Zero disables truncation.
	MaxTextLength int
}

type Service struct {
	kb        *knowledge.Base
	extractor *symptom.Extractor
	engine    *Engine
	checks    CheckRepository
	logger    zerolog.Logger
	opts      Options
}

// NewService wires the extractor and engine over kb. checks may be nil, in
// which case results are returned but not stored.
func NewService(kb *knowledge.Base, checks CheckRepository, logger zerolog.Logger, opts Options) *Service {
	return &Service{
		kb:        kb,
		extractor: symptom.NewExtractor(kb),
		engine:    NewEngine(kb),
		checks:    checks,
		logger:    logger.With().Str("component", "inference").Logger(),
		opts:      opts,
	}
}

func (s *Service) Disclaimer() string {
	return s.kb.Disclaimer
}

func (s *Service) Vocabulary() []string {
	return s.kb.Vocabulary()
}

func (s *Service) Extract(text string) []string {
	return s.extractor.Extract(s.truncate(text))
}

// Accumulate extracts tokens from a transcript fragment and merges them with
// those already seen. Seen tokens outside the vocabulary are dropped.
func (s *Service) Accumulate(seen []string, text string) []string {
	known := make([]string, 0, len(seen))
	for _, t := range symptom.Normalize(seen) {
		if s.kb.IsKnownSymptom(t) {
			known = append(known, t)
		}
	}
	return s.extractor.Accumulate(known, s.truncate(text))
}

// Check extracts symptoms from the request text, merges them with the
// explicit symptom list and runs inference. An empty symptom set is a valid
// request and produces an empty result.
func (s *Service) Check(ctx context.Context, req *CheckRequest) (*SymptomCheck, error) {
	if d := req.Demographics; d != nil && d.Age != nil && (*d.Age < 0 || *d.Age > maxAge) {
		return nil, fmt.Errorf("%w: age must be between 0 and %d", ErrInvalidDemographics, maxAge)
	}

	text := s.truncate(req.Text)
	tokens := symptom.Union(s.extractor.Extract(text), req.Symptoms)
	result := s.engine.Predict(tokens, req.Demographics)

	s.logger.Debug().
		Int("symptoms", len(result.Symptoms)).
		Int("predictions", len(result.Predictions)).
		Int("risk_score", result.RiskScore).
		Msg("symptom check evaluated")

	if err := s.pace(ctx); err != nil {
		return nil, err
	}

	check := &SymptomCheck{
		PatientID:    req.PatientID,
		Symptoms:     result.Symptoms,
		Demographics: req.Demographics,
		Predictions:  result.Predictions,
		RiskScore:    result.RiskScore,
	}
	if text != "" {
		check.InputText = &text
	}

	if s.checks == nil {
		check.ID = uuid.New()
		check.CreatedAt = time.Now().UTC()
		return check, nil
	}
	if err := s.checks.Create(ctx, check); err != nil {
		return nil, fmt.Errorf("store symptom check: %w", err)
	}
	return check, nil
}

func (s *Service) GetCheck(ctx context.Context, id uuid.UUID) (*SymptomCheck, error) {
	if s.checks == nil {
		return nil, ErrCheckNotFound
	}
	return s.checks.GetByID(ctx, id)
}

func (s *Service) ListChecksByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*SymptomCheck, int, error) {
	if s.checks == nil {
		return []*SymptomCheck{}, 0, nil
	}
	return s.checks.ListByPatient(ctx, patientID, limit, offset)
}

// Predict runs the engine directly on a symptom list.
func (s *Service) Predict(symptoms []string, demo *Demographics) Result {
	return s.engine.Predict(symptoms, demo)
}

func (s *Service) pace(ctx context.Context) error {
	if s.opts.ThinkingDelay <= 0 {
		return nil
	}
	t := time.NewTimer(s.opts.ThinkingDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *Service) truncate(text string) string {
	if s.opts.MaxTextLength <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= s.opts.MaxTextLength {
		return text
	}
	return string(runes[:s.opts.MaxTextLength])
}
