package user

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	ListByStatus(ctx context.Context, status string) ([]*User, error)
	ListApproved(ctx context.Context) ([]*User, error)
	EmailsByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error)
}
