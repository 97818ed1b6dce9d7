package riskassessment

import (
	"time"

	"github.com/google/uuid"
)

// RiskBand buckets a category percentage.
type RiskBand string

const (
	BandLow      RiskBand = "low"
	BandModerate RiskBand = "moderate"
	BandHigh     RiskBand = "high"
)

// CategoryAssessment is the scored outcome for one questionnaire category.
type CategoryAssessment struct {
	Category        string   `json:"category"`
	Score           int      `json:"score"`
	MaxScore        int      `json:"max_score"`
	Percentage      float64  `json:"percentage"`
	RiskBand        RiskBand `json:"risk_band"`
	Recommendations []string `json:"recommendations"`
}

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusComplete   Status = "complete"
)

// Session tracks one pass through the questionnaire. It is stored as JSON,
// so it carries no reference to the knowledge base.
type Session struct {
	ID           uuid.UUID            `json:"id"`
	PatientID    *uuid.UUID           `json:"patient_id,omitempty"`
	Status       Status               `json:"status"`
	CurrentIndex int                  `json:"current_index"`
	Answers      map[string]string    `json:"answers"`
	Assessments  []CategoryAssessment `json:"assessments,omitempty"`
	StartedAt    time.Time            `json:"started_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	CompletedAt  *time.Time           `json:"completed_at,omitempty"`
}

// Result maps to the risk_assessment_result table.
type Result struct {
	ID          uuid.UUID            `db:"id" json:"id"`
	SessionID   uuid.UUID            `db:"session_id" json:"session_id"`
	PatientID   *uuid.UUID           `db:"patient_id" json:"patient_id,omitempty"`
	Answers     map[string]string    `db:"answers" json:"answers"`
	Assessments []CategoryAssessment `db:"assessments" json:"assessments"`
	CompletedAt time.Time            `db:"completed_at" json:"completed_at"`
}
