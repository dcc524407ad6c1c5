package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByDNI(ctx context.Context, dni string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	// Delete removes the patient and every dependent record in one
	// transaction.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string) ([]*Patient, error)
}
