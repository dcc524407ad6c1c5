package screening

import (
	"time"

	"github.com/google/uuid"
)

// Followup status values. Mirrors the control reminder lifecycle.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Screening is the lung cancer screening sheet, one per patient.
// Date columns keep the YYYY-MM-DD strings the forms submit.
type Screening struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	ScreeningLung   bool      `db:"screening_lung" json:"screening_lung"`
	FollowupNodule  bool      `db:"followup_nodule" json:"followup_nodule"`
	ECOGStatus      *string   `db:"ecog_status" json:"ecog_status,omitempty"`
	FamilyHistory   bool      `db:"family_history" json:"family_history"`
	PriorCT         bool      `db:"prior_ct" json:"prior_ct"`
	PriorComparison *string   `db:"prior_comparison" json:"prior_comparison,omitempty"`
	StudyCenter     *string   `db:"study_center" json:"study_center,omitempty"`
	StudyNumber     *string   `db:"study_number" json:"study_number,omitempty"`
	StudyDate       *string   `db:"study_date" json:"study_date,omitempty"`
	Findings        *string   `db:"findings" json:"findings,omitempty"`
	LungRADS        *string   `db:"lung_rads" json:"lung_rads,omitempty"`
	Conclusion      *string   `db:"conclusion" json:"conclusion,omitempty"`
	NCCNCriteria    *string   `db:"nccn_criteria" json:"nccn_criteria,omitempty"`
	NextControlDate *string   `db:"next_control_date" json:"next_control_date,omitempty"`
	StudyFile       *string   `db:"study_file" json:"study_file,omitempty"`
	ExtraEmail      *string   `db:"extra_email" json:"extra_email,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Followup is one scheduled screening control hanging off the patient's
// screening sheet.
type Followup struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ScreeningID     uuid.UUID  `db:"screening_id" json:"screening_id"`
	StudyType       *string    `db:"study_type" json:"study_type,omitempty"`
	StudyCenter     *string    `db:"study_center" json:"study_center,omitempty"`
	StudyNumber     *string    `db:"study_number" json:"study_number,omitempty"`
	StudyDate       *string    `db:"study_date" json:"study_date,omitempty"`
	Findings        *string    `db:"findings" json:"findings,omitempty"`
	LungRADS        *string    `db:"lung_rads" json:"lung_rads,omitempty"`
	NextControlDate *string    `db:"next_control_date" json:"next_control_date,omitempty"`
	FileName        *string    `db:"file_name" json:"file_name,omitempty"`
	Status          string     `db:"status" json:"status"`
	Completed       bool       `db:"completed" json:"completed"`
	CompletedAt     *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedByID     *uuid.UUID `db:"created_by_id" json:"created_by_id,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}
