package screening

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

const screeningCols = `id, patient_id, screening_lung, followup_nodule, ecog_status,
	family_history, prior_ct, prior_comparison, study_center, study_number, study_date,
	findings, lung_rads, conclusion, nccn_criteria, next_control_date, study_file,
	extra_email, created_at`

func scanScreening(row pgx.Row) (*Screening, error) {
	var sc Screening
	err := row.Scan(&sc.ID, &sc.PatientID, &sc.ScreeningLung, &sc.FollowupNodule,
		&sc.ECOGStatus, &sc.FamilyHistory, &sc.PriorCT, &sc.PriorComparison,
		&sc.StudyCenter, &sc.StudyNumber, &sc.StudyDate, &sc.Findings, &sc.LungRADS,
		&sc.Conclusion, &sc.NCCNCriteria, &sc.NextControlDate, &sc.StudyFile,
		&sc.ExtraEmail, &sc.CreatedAt)
	return &sc, err
}

func (r *repoPG) CreateScreening(ctx context.Context, sc *Screening) error {
	sc.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO screenings (id, patient_id, screening_lung, followup_nodule,
			ecog_status, family_history, prior_ct, prior_comparison, study_center,
			study_number, study_date, findings, lung_rads, conclusion, nccn_criteria,
			next_control_date, study_file, extra_email)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		sc.ID, sc.PatientID, sc.ScreeningLung, sc.FollowupNodule, sc.ECOGStatus,
		sc.FamilyHistory, sc.PriorCT, sc.PriorComparison, sc.StudyCenter,
		sc.StudyNumber, sc.StudyDate, sc.Findings, sc.LungRADS, sc.Conclusion,
		sc.NCCNCriteria, sc.NextControlDate, sc.StudyFile, sc.ExtraEmail)
	return err
}

func (r *repoPG) GetByPatient(ctx context.Context, patientID uuid.UUID) (*Screening, error) {
	return scanScreening(r.pool.QueryRow(ctx,
		`SELECT `+screeningCols+` FROM screenings WHERE patient_id = $1`, patientID))
}

func (r *repoPG) GetScreening(ctx context.Context, id uuid.UUID) (*Screening, error) {
	return scanScreening(r.pool.QueryRow(ctx,
		`SELECT `+screeningCols+` FROM screenings WHERE id = $1`, id))
}

func (r *repoPG) UpdateScreening(ctx context.Context, sc *Screening) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE screenings SET screening_lung=$2, followup_nodule=$3, ecog_status=$4,
			family_history=$5, prior_ct=$6, prior_comparison=$7, study_center=$8,
			study_number=$9, study_date=$10, findings=$11, lung_rads=$12,
			conclusion=$13, nccn_criteria=$14, next_control_date=$15, study_file=$16,
			extra_email=$17
		WHERE id = $1`,
		sc.ID, sc.ScreeningLung, sc.FollowupNodule, sc.ECOGStatus, sc.FamilyHistory,
		sc.PriorCT, sc.PriorComparison, sc.StudyCenter, sc.StudyNumber, sc.StudyDate,
		sc.Findings, sc.LungRADS, sc.Conclusion, sc.NCCNCriteria, sc.NextControlDate,
		sc.StudyFile, sc.ExtraEmail)
	return err
}

func (r *repoPG) ScreeningsDueOn(ctx context.Context, date string) ([]*Screening, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+screeningCols+` FROM screenings WHERE next_control_date = $1`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Screening
	for rows.Next() {
		sc, err := scanScreening(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, sc)
	}
	return items, rows.Err()
}

const followupCols = `id, screening_id, study_type, study_center, study_number,
	study_date, findings, lung_rads, next_control_date, file_name, status, completed,
	completed_at, created_by_id, created_at`

func scanFollowup(row pgx.Row) (*Followup, error) {
	var fu Followup
	err := row.Scan(&fu.ID, &fu.ScreeningID, &fu.StudyType, &fu.StudyCenter,
		&fu.StudyNumber, &fu.StudyDate, &fu.Findings, &fu.LungRADS,
		&fu.NextControlDate, &fu.FileName, &fu.Status, &fu.Completed,
		&fu.CompletedAt, &fu.CreatedByID, &fu.CreatedAt)
	return &fu, err
}

func (r *repoPG) CreateFollowup(ctx context.Context, fu *Followup) error {
	fu.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO screening_followups (id, screening_id, study_type, study_center,
			study_number, study_date, findings, lung_rads, next_control_date,
			file_name, status, completed, completed_at, created_by_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		fu.ID, fu.ScreeningID, fu.StudyType, fu.StudyCenter, fu.StudyNumber,
		fu.StudyDate, fu.Findings, fu.LungRADS, fu.NextControlDate, fu.FileName,
		fu.Status, fu.Completed, fu.CompletedAt, fu.CreatedByID)
	return err
}

func (r *repoPG) GetFollowup(ctx context.Context, id uuid.UUID) (*Followup, error) {
	return scanFollowup(r.pool.QueryRow(ctx,
		`SELECT `+followupCols+` FROM screening_followups WHERE id = $1`, id))
}

func (r *repoPG) UpdateFollowup(ctx context.Context, fu *Followup) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE screening_followups SET study_type=$2, study_center=$3, study_number=$4,
			study_date=$5, findings=$6, lung_rads=$7, next_control_date=$8,
			file_name=$9, status=$10, completed=$11, completed_at=$12
		WHERE id = $1`,
		fu.ID, fu.StudyType, fu.StudyCenter, fu.StudyNumber, fu.StudyDate,
		fu.Findings, fu.LungRADS, fu.NextControlDate, fu.FileName, fu.Status,
		fu.Completed, fu.CompletedAt)
	return err
}

func (r *repoPG) DeleteFollowup(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM screening_followups WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListFollowups(ctx context.Context, screeningID uuid.UUID) ([]*Followup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followupCols+` FROM screening_followups
		WHERE screening_id = $1
		ORDER BY study_date DESC NULLS LAST, created_at DESC`, screeningID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFollowups(rows)
}

func (r *repoPG) FollowupsDueOn(ctx context.Context, date string) ([]*Followup, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+followupCols+` FROM screening_followups
		WHERE next_control_date = $1 AND status <> 'done'`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFollowups(rows)
}

func collectFollowups(rows pgx.Rows) ([]*Followup, error) {
	var items []*Followup
	for rows.Next() {
		fu, err := scanFollowup(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, fu)
	}
	return items, rows.Err()
}
