package casefile

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

const presentationCols = `id, patient_id, intro, physical_exam, respiratory_tests,
	immunology, exposures, imaging, notes, created_at`

func scanPresentation(row pgx.Row) (*Presentation, error) {
	var pr Presentation
	err := row.Scan(&pr.ID, &pr.PatientID, &pr.Intro, &pr.PhysicalExam,
		&pr.RespiratoryTests, &pr.Immunology, &pr.Exposures, &pr.Imaging,
		&pr.Notes, &pr.CreatedAt)
	return &pr, err
}

func (r *repoPG) Create(ctx context.Context, pr *Presentation) error {
	pr.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO case_presentations (id, patient_id, intro, physical_exam,
			respiratory_tests, immunology, exposures, imaging, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		pr.ID, pr.PatientID, pr.Intro, pr.PhysicalExam, pr.RespiratoryTests,
		pr.Immunology, pr.Exposures, pr.Imaging, pr.Notes)
	return err
}

func (r *repoPG) GetByPatient(ctx context.Context, patientID uuid.UUID) (*Presentation, error) {
	return scanPresentation(r.pool.QueryRow(ctx,
		`SELECT `+presentationCols+` FROM case_presentations WHERE patient_id = $1`, patientID))
}

func (r *repoPG) Update(ctx context.Context, pr *Presentation) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE case_presentations SET intro=$2, physical_exam=$3,
			respiratory_tests=$4, immunology=$5, exposures=$6, imaging=$7, notes=$8
		WHERE id = $1`,
		pr.ID, pr.Intro, pr.PhysicalExam, pr.RespiratoryTests,
		pr.Immunology, pr.Exposures, pr.Imaging, pr.Notes)
	return err
}
