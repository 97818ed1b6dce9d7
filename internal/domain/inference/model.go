package inference

import (
	"time"

	"github.com/google/uuid"

	"github.com/ehr/healthassist/internal/knowledge"
)

// Demographics are optional hints that scale condition probabilities.
type Demographics struct {
	Age            *int     `json:"age,omitempty"`
	Gender         string   `json:"gender,omitempty"`
	MedicalHistory []string `json:"medical_history,omitempty"`
}

// Prediction is one candidate condition in an inference result.
type Prediction struct {
	Condition       string             `json:"condition"`
	Probability     float64            `json:"probability"`
	Severity        knowledge.Severity `json:"severity"`
	Description     string             `json:"description"`
	Recommendations []string           `json:"recommendations"`
}

// Result is the output of a single inference call.
type Result struct {
	Symptoms    []string     `json:"symptoms"`
	Predictions []Prediction `json:"predictions"`
	RiskScore   int          `json:"risk_score"`
}

// SymptomCheck maps to the symptom_check table.
type SymptomCheck struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	PatientID    *uuid.UUID    `db:"patient_id" json:"patient_id,omitempty"`
	InputText    *string       `db:"input_text" json:"input_text,omitempty"`
	Symptoms     []string      `db:"symptoms" json:"symptoms"`
	Demographics *Demographics `db:"demographics" json:"demographics,omitempty"`
	Predictions  []Prediction  `db:"predictions" json:"predictions"`
	RiskScore    int           `db:"risk_score" json:"risk_score"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// CheckRequest is the input of a symptom check. Text and Symptoms are
// combined; either may be empty.
type CheckRequest struct {
	PatientID    *uuid.UUID    `json:"patient_id,omitempty"`
	Text         string        `json:"text,omitempty"`
	Symptoms     []string      `json:"symptoms,omitempty"`
	Demographics *Demographics `json:"demographics,omitempty"`
}
