package reminder

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, cr *ControlReminder) error
	GetByID(ctx context.Context, id uuid.UUID) (*ControlReminder, error)
	Update(ctx context.Context, cr *ControlReminder) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ControlReminder, error)
	// ListOpen returns dated reminders that are not done, for the inbox.
	ListOpen(ctx context.Context) ([]*ControlReminder, error)
	// DueOn returns not-completed reminders whose control date is the
	// given day.
	DueOn(ctx context.Context, date string) ([]*ControlReminder, error)
}
