package riskassessment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ehr/healthassist/internal/knowledge"
)

type Service struct {
	kb       *knowledge.Base
	sessions SessionStore
	results  ResultRepository
	logger   zerolog.Logger
}

// NewService creates the questionnaire service. results may be nil, in which
// case completed assessments are only kept on the session.
func NewService(kb *knowledge.Base, sessions SessionStore, results ResultRepository, logger zerolog.Logger) *Service {
	return &Service{
		kb:       kb,
		sessions: sessions,
		results:  results,
		logger:   logger.With().Str("component", "riskassessment").Logger(),
	}
}

func (s *Service) Disclaimer() string {
	return s.kb.Disclaimer
}

func (s *Service) Questionnaire() []knowledge.QuestionnaireItem {
	return s.kb.Questionnaire
}

// Score assesses a complete answer map without creating a session.
func (s *Service) Score(answers map[string]string) ([]CategoryAssessment, error) {
	return Score(s.kb, answers)
}

func (s *Service) Start(ctx context.Context, patientID *uuid.UUID) (*Session, error) {
	sess := NewSession(patientID)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.logger.Debug().Str("session_id", sess.ID.String()).Msg("assessment started")
	return sess, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.sessions.Get(ctx, id)
}

func (s *Service) Answer(ctx context.Context, id uuid.UUID, questionID, value string) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		return sess.Answer(s.kb, questionID, value)
	})
}

// Next advances the session. When it completes, the result is stored before
// the session is saved, so a failed write leaves the session retryable.
func (s *Service) Next(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		if err := sess.Next(s.kb); err != nil {
			return err
		}
		if !sess.IsComplete() {
			return nil
		}
		s.logger.Debug().
			Str("session_id", sess.ID.String()).
			Int("answers", len(sess.Answers)).
			Int("categories", len(sess.Assessments)).
			Msg("assessment completed")
		return s.storeResult(ctx, sess)
	})
}

func (s *Service) Previous(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		return sess.Previous()
	})
}

func (s *Service) Restart(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.update(ctx, id, func(sess *Session) error {
		sess.Restart()
		s.logger.Debug().Str("session_id", sess.ID.String()).Msg("assessment restarted")
		return nil
	})
}

func (s *Service) ListResults(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Result, int, error) {
	if s.results == nil {
		return []*Result{}, 0, nil
	}
	return s.results.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) update(ctx context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error) {
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

func (s *Service) storeResult(ctx context.Context, sess *Session) error {
	if s.results == nil {
		return nil
	}
	res := &Result{
		SessionID:   sess.ID,
		PatientID:   sess.PatientID,
		Answers:     sess.Answers,
		Assessments: sess.Assessments,
		CompletedAt: *sess.CompletedAt,
	}
	if err := s.results.Create(ctx, res); err != nil {
		return fmt.Errorf("store assessment result: %w", err)
	}
	return nil
}
