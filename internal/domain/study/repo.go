package study

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, st *Study) error
	GetByID(ctx context.Context, id uuid.UUID) (*Study, error)
	Update(ctx context.Context, st *Study) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Study, error)
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Study, error)
}
