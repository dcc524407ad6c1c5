package consultation

import (
	"time"

	"github.com/google/uuid"
)

// Consultation is one committee visit. The immunology panel selection is
// list-encoded; per-test titer values use the key:value encoding in a
// second column.
type Consultation struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	PatientID           uuid.UUID  `db:"patient_id" json:"patient_id"`
	Date                *string    `db:"date" json:"date,omitempty"`
	Notes               *string    `db:"notes" json:"notes,omitempty"`
	LabGeneral          *string    `db:"lab_general" json:"lab_general,omitempty"`
	LabImmunology       *string    `db:"lab_immunology" json:"lab_immunology,omitempty"`
	LabImmunologyValues *string    `db:"lab_immunology_values" json:"lab_immunology_values,omitempty"`
	LabImmunologyNotes  *string    `db:"lab_immunology_notes" json:"lab_immunology_notes,omitempty"`
	CreatedByID         *uuid.UUID `db:"created_by_id" json:"created_by_id,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
}

// StudyRow is one study line submitted inside the consultation form.
type StudyRow struct {
	Type        string
	Date        string
	Center      string
	AccessCode  string
	PortalLink  string
	Description string
}

// Empty reports whether the row carries neither a type nor a date, the
// condition under which it is skipped rather than created.
func (r StudyRow) Empty() bool {
	return r.Type == "" && r.Date == ""
}
