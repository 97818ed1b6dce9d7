package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ehr/healthassist/internal/platform/db"
)

type checkRepoPG struct{ pool *pgxpool.Pool }

func NewCheckRepoPG(pool *pgxpool.Pool) CheckRepository { return &checkRepoPG{pool: pool} }

const checkCols = `id, patient_id, input_text, symptoms, demographics, predictions, risk_score, created_at`

func (r *checkRepoPG) scanCheck(row pgx.Row) (*SymptomCheck, error) {
	var (
		c               SymptomCheck
		demoJSON, preds []byte
	)
	err := row.Scan(&c.ID, &c.PatientID, &c.InputText, &c.Symptoms, &demoJSON, &preds, &c.RiskScore, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCheckNotFound
		}
		return nil, err
	}
	if len(demoJSON) > 0 {
		if err := json.Unmarshal(demoJSON, &c.Demographics); err != nil {
			return nil, fmt.Errorf("unmarshal demographics: %w", err)
		}
	}
	if err := json.Unmarshal(preds, &c.Predictions); err != nil {
		return nil, fmt.Errorf("unmarshal predictions: %w", err)
	}
	return &c, nil
}

func (r *checkRepoPG) Create(ctx context.Context, c *SymptomCheck) error {
	c.ID = uuid.New()
	var demoJSON []byte
	if c.Demographics != nil {
		b, err := json.Marshal(c.Demographics)
		if err != nil {
			return fmt.Errorf("marshal demographics: %w", err)
		}
		demoJSON = b
	}
	preds, err := json.Marshal(c.Predictions)
	if err != nil {
		return fmt.Errorf("marshal predictions: %w", err)
	}
	return db.Conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO symptom_check (id, patient_id, input_text, symptoms, demographics, predictions, risk_score)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING created_at`,
		c.ID, c.PatientID, c.InputText, c.Symptoms, demoJSON, preds, c.RiskScore).Scan(&c.CreatedAt)
}

func (r *checkRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SymptomCheck, error) {
	return r.scanCheck(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+checkCols+` FROM symptom_check WHERE id = $1`, id))
}

func (r *checkRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*SymptomCheck, int, error) {
	items := []*SymptomCheck{}
	var total int
	err := db.WithTxOptions(ctx, r.pool, db.SnapshotRead, func(ctx context.Context) error {
		conn := db.Conn(ctx, r.pool)
		if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM symptom_check WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
			return err
		}
		rows, err := conn.Query(ctx, `SELECT `+checkCols+` FROM symptom_check WHERE patient_id = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := r.scanCheck(rows)
			if err != nil {
				return err
			}
			items = append(items, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list symptom_check: %w", err)
	}
	return items, total, nil
}
