package casefile

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, pr *Presentation) error
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*Presentation, error)
	Update(ctx context.Context, pr *Presentation) error
}
