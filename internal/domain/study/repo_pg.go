package study

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

const studyCols = `id, patient_id, consultation_id, study_type, date, center,
	description, access_code, portal_link, report_file, created_by_id, created_at`

func scanStudy(row pgx.Row) (*Study, error) {
	var st Study
	err := row.Scan(&st.ID, &st.PatientID, &st.ConsultationID, &st.StudyType,
		&st.Date, &st.Center, &st.Description, &st.AccessCode, &st.PortalLink,
		&st.ReportFile, &st.CreatedByID, &st.CreatedAt)
	return &st, err
}

func (r *repoPG) Create(ctx context.Context, st *Study) error {
	st.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO studies (id, patient_id, consultation_id, study_type, date,
			center, description, access_code, portal_link, report_file, created_by_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		st.ID, st.PatientID, st.ConsultationID, st.StudyType, st.Date,
		st.Center, st.Description, st.AccessCode, st.PortalLink, st.ReportFile, st.CreatedByID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Study, error) {
	return scanStudy(r.pool.QueryRow(ctx,
		`SELECT `+studyCols+` FROM studies WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, st *Study) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE studies SET study_type=$2, date=$3, center=$4, description=$5,
			access_code=$6, portal_link=$7, report_file=$8
		WHERE id = $1`,
		st.ID, st.StudyType, st.Date, st.Center, st.Description,
		st.AccessCode, st.PortalLink, st.ReportFile)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM studies WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Study, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+studyCols+` FROM studies
		WHERE patient_id = $1
		ORDER BY date DESC NULLS LAST, created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Study
	for rows.Next() {
		st, err := scanStudy(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, st)
	}
	return items, rows.Err()
}

func (r *repoPG) LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Study, error) {
	return scanStudy(r.pool.QueryRow(ctx, `
		SELECT `+studyCols+` FROM studies
		WHERE patient_id = $1
		ORDER BY date DESC NULLS LAST, created_at DESC
		LIMIT 1`, patientID))
}
