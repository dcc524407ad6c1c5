package reminder

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// ControlReminder schedules a follow-up control for a patient, usually
// created from a consultation. Extra addresses are a comma separated
// list.
type ControlReminder struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	ConsultationID *uuid.UUID `db:"consultation_id" json:"consultation_id,omitempty"`
	ControlDate    *string    `db:"control_date" json:"control_date,omitempty"`
	ExtraEmails    *string    `db:"extra_emails" json:"extra_emails,omitempty"`
	Status         string     `db:"status" json:"status"`
	Completed      bool       `db:"completed" json:"completed"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedByID    *uuid.UUID `db:"created_by_id" json:"created_by_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
