package study

import (
	"time"

	"github.com/google/uuid"
)

// Study is one complementary study (imaging, functional or invasive).
// It may stand alone or hang off the consultation it was requested in.
type Study struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patient_id"`
	ConsultationID *uuid.UUID `db:"consultation_id" json:"consultation_id,omitempty"`
	StudyType      string     `db:"study_type" json:"study_type"`
	Date           *string    `db:"date" json:"date,omitempty"`
	Center         *string    `db:"center" json:"center,omitempty"`
	Description    *string    `db:"description" json:"description,omitempty"`
	AccessCode     *string    `db:"access_code" json:"access_code,omitempty"`
	PortalLink     *string    `db:"portal_link" json:"portal_link,omitempty"`
	ReportFile     *string    `db:"report_file" json:"report_file,omitempty"`
	CreatedByID    *uuid.UUID `db:"created_by_id" json:"created_by_id,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}
