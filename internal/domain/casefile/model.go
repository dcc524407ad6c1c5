package casefile

import (
	"time"

	"github.com/google/uuid"
)

// Presentation is the committee case sheet for one patient, one per
// patient. Sections start prefilled from the questionnaire and the most
// recent consultation and study, then get edited by hand.
type Presentation struct {
	ID               uuid.UUID `db:"id" json:"id"`
	PatientID        uuid.UUID `db:"patient_id" json:"patient_id"`
	Intro            *string   `db:"intro" json:"intro,omitempty"`
	PhysicalExam     *string   `db:"physical_exam" json:"physical_exam,omitempty"`
	RespiratoryTests *string   `db:"respiratory_tests" json:"respiratory_tests,omitempty"`
	Immunology       *string   `db:"immunology" json:"immunology,omitempty"`
	Exposures        *string   `db:"exposures" json:"exposures,omitempty"`
	Imaging          *string   `db:"imaging" json:"imaging,omitempty"`
	Notes            *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
