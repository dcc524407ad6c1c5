package review

import (
	"time"

	"github.com/google/uuid"

	"github.com/comitetoraxvm/comite-torax/internal/platform/listcodec"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
)

// Request asks one or more colleagues to look at a patient, optionally
// pointing at the consultation or study that prompted it. Recipients are
// stored list-encoded.
type Request struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	ConsultationID *uuid.UUID `db:"consultation_id" json:"consultation_id,omitempty"`
	StudyID        *uuid.UUID `db:"study_id" json:"study_id,omitempty"`
	CreatedByID    uuid.UUID  `db:"created_by_id" json:"created_by_id"`
	Recipients     *string    `db:"recipients" json:"recipients,omitempty"`
	Message        *string    `db:"message" json:"message,omitempty"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt     *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// RecipientIDs decodes the stored recipient list, skipping anything that
// is not a valid ID.
func (r *Request) RecipientIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, raw := range listcodec.Decode(r.Recipients) {
		if id, err := uuid.Parse(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsRecipient reports whether the user was asked to review.
func (r *Request) IsRecipient(userID uuid.UUID) bool {
	for _, id := range r.RecipientIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment is one message in a review's thread.
type Comment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ReviewID  uuid.UUID `db:"review_id" json:"review_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
