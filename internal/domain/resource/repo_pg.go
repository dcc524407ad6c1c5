package resource

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

const resourceCols = `id, title, url, file_name, notes, created_by_id, created_at`

func scanResource(row pgx.Row) (*Resource, error) {
	var r Resource
	err := row.Scan(&r.ID, &r.Title, &r.URL, &r.FileName, &r.Notes,
		&r.CreatedByID, &r.CreatedAt)
	return &r, err
}

func (p *repoPG) Create(ctx context.Context, r *Resource) error {
	r.ID = uuid.New()
	_, err := p.pool.Exec(ctx, `
		INSERT INTO medical_resources (id, title, url, file_name, notes, created_by_id)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		r.ID, r.Title, r.URL, r.FileName, r.Notes, r.CreatedByID)
	return err
}

func (p *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Resource, error) {
	return scanResource(p.pool.QueryRow(ctx,
		`SELECT `+resourceCols+` FROM medical_resources WHERE id = $1`, id))
}

func (p *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM medical_resources WHERE id = $1`, id)
	return err
}

func (p *repoPG) List(ctx context.Context) ([]*Resource, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+resourceCols+` FROM medical_resources ORDER BY title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
