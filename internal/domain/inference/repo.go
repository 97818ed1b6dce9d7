package inference

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrCheckNotFound       = errors.New("symptom check not found")
	ErrInvalidDemographics = errors.New("invalid demographics")
)

type CheckRepository interface {
	Create(ctx context.Context, c *SymptomCheck) error
	GetByID(ctx context.Context, id uuid.UUID) (*SymptomCheck, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*SymptomCheck, int, error)
}
