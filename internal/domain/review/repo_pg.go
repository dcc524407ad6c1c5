package review

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

const reviewCols = `id, patient_id, consultation_id, study_id, created_by_id,
	recipients, message, status, created_at, resolved_at`

func scanRequest(row pgx.Row) (*Request, error) {
	var rr Request
	err := row.Scan(&rr.ID, &rr.PatientID, &rr.ConsultationID, &rr.StudyID,
		&rr.CreatedByID, &rr.Recipients, &rr.Message, &rr.Status,
		&rr.CreatedAt, &rr.ResolvedAt)
	return &rr, err
}

func (r *repoPG) Create(ctx context.Context, rr *Request) error {
	rr.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO review_requests (id, patient_id, consultation_id, study_id,
			created_by_id, recipients, message, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rr.ID, rr.PatientID, rr.ConsultationID, rr.StudyID,
		rr.CreatedByID, rr.Recipients, rr.Message, rr.Status)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	return scanRequest(r.pool.QueryRow(ctx,
		`SELECT `+reviewCols+` FROM review_requests WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, rr *Request) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE review_requests SET recipients=$2, message=$3, status=$4, resolved_at=$5
		WHERE id = $1`,
		rr.ID, rr.Recipients, rr.Message, rr.Status, rr.ResolvedAt)
	return err
}

func (r *repoPG) List(ctx context.Context) ([]*Request, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reviewCols+` FROM review_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Request, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reviewCols+` FROM review_requests
		WHERE patient_id = $1
		ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRequests(rows)
}

func collectRequests(rows pgx.Rows) ([]*Request, error) {
	var items []*Request
	for rows.Next() {
		rr, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rr)
	}
	return items, rows.Err()
}

const commentCols = `id, review_id, user_id, message, created_at`

func scanComment(row pgx.Row) (*Comment, error) {
	var cm Comment
	err := row.Scan(&cm.ID, &cm.ReviewID, &cm.UserID, &cm.Message, &cm.CreatedAt)
	return &cm, err
}

func (r *repoPG) CreateComment(ctx context.Context, cm *Comment) error {
	cm.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO review_comments (id, review_id, user_id, message)
		VALUES ($1,$2,$3,$4)`,
		cm.ID, cm.ReviewID, cm.UserID, cm.Message)
	return err
}

func (r *repoPG) GetComment(ctx context.Context, id uuid.UUID) (*Comment, error) {
	return scanComment(r.pool.QueryRow(ctx,
		`SELECT `+commentCols+` FROM review_comments WHERE id = $1`, id))
}

func (r *repoPG) UpdateComment(ctx context.Context, cm *Comment) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE review_comments SET message=$2 WHERE id = $1`, cm.ID, cm.Message)
	return err
}

func (r *repoPG) DeleteComment(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM review_comments WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListComments(ctx context.Context, reviewID uuid.UUID) ([]*Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+commentCols+` FROM review_comments
		WHERE review_id = $1
		ORDER BY created_at ASC`, reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Comment
	for rows.Next() {
		cm, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, cm)
	}
	return items, rows.Err()
}
