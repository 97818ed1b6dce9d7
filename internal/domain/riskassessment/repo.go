package riskassessment

import (
	"context"

	"github.com/google/uuid"
)

// ResultRepository stores completed assessments.
type ResultRepository interface {
	Create(ctx context.Context, r *Result) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Result, int, error)
}
