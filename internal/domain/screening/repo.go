package screening

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	CreateScreening(ctx context.Context, sc *Screening) error
	GetByPatient(ctx context.Context, patientID uuid.UUID) (*Screening, error)
	GetScreening(ctx context.Context, id uuid.UUID) (*Screening, error)
	UpdateScreening(ctx context.Context, sc *Screening) error

	CreateFollowup(ctx context.Context, fu *Followup) error
	GetFollowup(ctx context.Context, id uuid.UUID) (*Followup, error)
	UpdateFollowup(ctx context.Context, fu *Followup) error
	DeleteFollowup(ctx context.Context, id uuid.UUID) error
	ListFollowups(ctx context.Context, screeningID uuid.UUID) ([]*Followup, error)
	// FollowupsDueOn returns followups scheduled for the given date that
	// are not yet done, for the reminder batch.
	FollowupsDueOn(ctx context.Context, date string) ([]*Followup, error)
	// ScreeningsDueOn returns sheets whose next control falls on the date.
	ScreeningsDueOn(ctx context.Context, date string) ([]*Screening, error)
}
