package riskassessment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/healthassist/internal/platform/db"
)

type resultRepoPG struct{ pool *pgxpool.Pool }

func NewResultRepoPG(pool *pgxpool.Pool) ResultRepository { return &resultRepoPG{pool: pool} }

const resultCols = `id, session_id, patient_id, answers, assessments, completed_at`

func (r *resultRepoPG) scanResult(row pgx.Row) (*Result, error) {
	var (
		res                  Result
		answers, assessments []byte
	)
	if err := row.Scan(&res.ID, &res.SessionID, &res.PatientID, &answers, &assessments, &res.CompletedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answers, &res.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	if err := json.Unmarshal(assessments, &res.Assessments); err != nil {
		return nil, fmt.Errorf("unmarshal assessments: %w", err)
	}
	return &res, nil
}

func (r *resultRepoPG) Create(ctx context.Context, res *Result) error {
	res.ID = uuid.New()
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	assessments, err := json.Marshal(res.Assessments)
	if err != nil {
		return fmt.Errorf("marshal assessments: %w", err)
	}
	_, err = db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO risk_assessment_result (id, session_id, patient_id, answers, assessments, completed_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		res.ID, res.SessionID, res.PatientID, answers, assessments, res.CompletedAt)
	return err
}

func (r *resultRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Result, int, error) {
	items := []*Result{}
	var total int
	err := db.WithTxOptions(ctx, r.pool, db.SnapshotRead, func(ctx context.Context) error {
		conn := db.Conn(ctx, r.pool)
		if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM risk_assessment_result WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
			return err
		}
		rows, err := conn.Query(ctx, `SELECT `+resultCols+` FROM risk_assessment_result WHERE patient_id = $1
			ORDER BY completed_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			res, err := r.scanResult(rows)
			if err != nil {
				return err
			}
			items = append(items, res)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list risk_assessment_result: %w", err)
	}
	return items, total, nil
}
