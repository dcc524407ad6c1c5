package resource

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*Resource, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Resource, error)
}
