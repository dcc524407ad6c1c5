package review

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, rr *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	Update(ctx context.Context, rr *Request) error
	List(ctx context.Context) ([]*Request, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Request, error)

	CreateComment(ctx context.Context, cm *Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*Comment, error)
	UpdateComment(ctx context.Context, cm *Comment) error
	DeleteComment(ctx context.Context, id uuid.UUID) error
	ListComments(ctx context.Context, reviewID uuid.UUID) ([]*Comment, error)
}
