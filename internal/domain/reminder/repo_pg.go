package reminder

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

const reminderCols = `id, patient_id, consultation_id, control_date, extra_emails,
	status, completed, completed_at, created_by_id, created_at`

func scanReminder(row pgx.Row) (*ControlReminder, error) {
	var cr ControlReminder
	err := row.Scan(&cr.ID, &cr.PatientID, &cr.ConsultationID, &cr.ControlDate,
		&cr.ExtraEmails, &cr.Status, &cr.Completed, &cr.CompletedAt,
		&cr.CreatedByID, &cr.CreatedAt)
	return &cr, err
}

func (r *repoPG) Create(ctx context.Context, cr *ControlReminder) error {
	cr.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO control_reminders (id, patient_id, consultation_id, control_date,
			extra_emails, status, completed, completed_at, created_by_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		cr.ID, cr.PatientID, cr.ConsultationID, cr.ControlDate, cr.ExtraEmails,
		cr.Status, cr.Completed, cr.CompletedAt, cr.CreatedByID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*ControlReminder, error) {
	return scanReminder(r.pool.QueryRow(ctx,
		`SELECT `+reminderCols+` FROM control_reminders WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, cr *ControlReminder) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE control_reminders SET control_date=$2, extra_emails=$3, status=$4,
			completed=$5, completed_at=$6
		WHERE id = $1`,
		cr.ID, cr.ControlDate, cr.ExtraEmails, cr.Status, cr.Completed, cr.CompletedAt)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM control_reminders WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ControlReminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reminderCols+` FROM control_reminders
		WHERE patient_id = $1
		ORDER BY control_date ASC NULLS LAST, created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReminders(rows)
}

func (r *repoPG) ListOpen(ctx context.Context) ([]*ControlReminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reminderCols+` FROM control_reminders
		WHERE status <> 'done' AND control_date IS NOT NULL
		ORDER BY control_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReminders(rows)
}

func (r *repoPG) DueOn(ctx context.Context, date string) ([]*ControlReminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reminderCols+` FROM control_reminders
		WHERE control_date = $1 AND completed = false`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReminders(rows)
}

func collectReminders(rows pgx.Rows) ([]*ControlReminder, error) {
	var items []*ControlReminder
	for rows.Next() {
		cr, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, cr)
	}
	return items, rows.Err()
}
