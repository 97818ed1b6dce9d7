package riskassessment

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/healthassist/internal/knowledge"
)

var (
	ErrSessionNotFound = errors.New("assessment session not found")
	ErrSessionComplete = errors.New("assessment session is complete")
)

// NewSession returns a session positioned on the first question.
func NewSession(patientID *uuid.UUID) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		PatientID: patientID,
		Status:    StatusInProgress,
		Answers:   make(map[string]string),
		StartedAt: now,
		UpdatedAt: now,
	}
}

func (s *Session) IsComplete() bool {
	return s.Status == StatusComplete
}

// Current returns the question at the cursor.
func (s *Session) Current(kb *knowledge.Base) (knowledge.QuestionnaireItem, bool) {
	if s.IsComplete() || s.CurrentIndex < 0 || s.CurrentIndex >= len(kb.Questionnaire) {
		return knowledge.QuestionnaireItem{}, false
	}
	return kb.Questionnaire[s.CurrentIndex], true
}

// Answer records value for questionID, replacing any earlier answer. Any
// question may be answered regardless of the cursor position.
func (s *Session) Answer(kb *knowledge.Base, questionID, value string) error {
	if s.IsComplete() {
		return ErrSessionComplete
	}
	if err := ValidateAnswer(kb, questionID, value); err != nil {
		return err
	}
	if s.Answers == nil {
		s.Answers = make(map[string]string)
	}
	s.Answers[questionID] = value
	s.touch()
	return nil
}

// Next advances the cursor. On the last question it completes the session
// and scores the recorded answers. Unanswered questions do not block.
func (s *Session) Next(kb *knowledge.Base) error {
	if s.IsComplete() {
		return ErrSessionComplete
	}
	if s.CurrentIndex+1 < len(kb.Questionnaire) {
		s.CurrentIndex++
		s.touch()
		return nil
	}

	s.Assessments = Assess(kb.Questionnaire, s.Answers, kb.CategoryAdvice)
	s.Status = StatusComplete
	s.touch()
	done := s.UpdatedAt
	s.CompletedAt = &done
	return nil
}

// Previous moves the cursor back one question, stopping at the first.
func (s *Session) Previous() error {
	if s.IsComplete() {
		return ErrSessionComplete
	}
	if s.CurrentIndex > 0 {
		s.CurrentIndex--
	}
	s.touch()
	return nil
}

// Restart discards every answer and result. A retake always starts clean.
func (s *Session) Restart() {
	s.Status = StatusInProgress
	s.CurrentIndex = 0
	s.Answers = make(map[string]string)
	s.Assessments = nil
	s.CompletedAt = nil
	s.touch()
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
