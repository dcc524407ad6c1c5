package consultation

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const consultationCols = `id, patient_id, date, notes, lab_general, lab_immunology,
	lab_immunology_values, lab_immunology_notes, created_by_id, created_at`

func scanConsultation(row pgx.Row) (*Consultation, error) {
	var cn Consultation
	err := row.Scan(&cn.ID, &cn.PatientID, &cn.Date, &cn.Notes, &cn.LabGeneral,
		&cn.LabImmunology, &cn.LabImmunologyValues, &cn.LabImmunologyNotes,
		&cn.CreatedByID, &cn.CreatedAt)
	return &cn, err
}

func (r *repoPG) Create(ctx context.Context, cn *Consultation) error {
	cn.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO consultations (id, patient_id, date, notes, lab_general,
			lab_immunology, lab_immunology_values, lab_immunology_notes, created_by_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		cn.ID, cn.PatientID, cn.Date, cn.Notes, cn.LabGeneral,
		cn.LabImmunology, cn.LabImmunologyValues, cn.LabImmunologyNotes, cn.CreatedByID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return scanConsultation(r.pool.QueryRow(ctx,
		`SELECT `+consultationCols+` FROM consultations WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, cn *Consultation) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE consultations SET date=$2, notes=$3, lab_general=$4,
			lab_immunology=$5, lab_immunology_values=$6, lab_immunology_notes=$7
		WHERE id = $1`,
		cn.ID, cn.Date, cn.Notes, cn.LabGeneral,
		cn.LabImmunology, cn.LabImmunologyValues, cn.LabImmunologyNotes)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM consultations WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Consultation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+consultationCols+` FROM consultations
		WHERE patient_id = $1
		ORDER BY date DESC NULLS LAST, created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Consultation
	for rows.Next() {
		cn, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, cn)
	}
	return items, rows.Err()
}

func (r *repoPG) LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Consultation, error) {
	return scanConsultation(r.pool.QueryRow(ctx, `
		SELECT `+consultationCols+` FROM consultations
		WHERE patient_id = $1
		ORDER BY date DESC NULLS LAST, created_at DESC
		LIMIT 1`, patientID))
}
