package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient holds the full interstitial-lung-disease intake questionnaire.
// Multi-select sections are stored list-encoded in text columns; derived
// values (age, bmi, pack-years) are computed when the form is saved and
// stored as submitted, never re-derived on read.
type Patient struct {
	ID       uuid.UUID `db:"id" json:"id"`
	FullName string    `db:"full_name" json:"full_name"`
	DNI      *string   `db:"dni" json:"dni,omitempty"`
	Email    *string   `db:"email" json:"email,omitempty"`
	Age      *int      `db:"age" json:"age,omitempty"`
	Sex      *string   `db:"sex" json:"sex,omitempty"`
	Center   *string   `db:"center" json:"center,omitempty"`

	BirthDate             *string `db:"birth_date" json:"birth_date,omitempty"`
	Phone                 *string `db:"phone" json:"phone,omitempty"`
	Address               *string `db:"address" json:"address,omitempty"`
	City                  *string `db:"city" json:"city,omitempty"`
	HealthInsurance       *string `db:"health_insurance" json:"health_insurance,omitempty"`
	HealthInsuranceNumber *string `db:"health_insurance_number" json:"health_insurance_number,omitempty"`
	FirstConsultationDate *string `db:"first_consultation_date" json:"first_consultation_date,omitempty"`
	ConsentGiven          bool    `db:"consent_given" json:"consent_given"`
	ConsentDate           *string `db:"consent_date" json:"consent_date,omitempty"`
	NotesPersonal         *string `db:"notes_personal" json:"notes_personal,omitempty"`

	SmokingCurrent          bool     `db:"smoking_current" json:"smoking_current"`
	SmokingPrevious         bool     `db:"smoking_previous" json:"smoking_previous"`
	SmokingStartAge         *int     `db:"smoking_start_age" json:"smoking_start_age,omitempty"`
	SmokingEndAge           *int     `db:"smoking_end_age" json:"smoking_end_age,omitempty"`
	SmokingCigarettesPerDay *int     `db:"smoking_cigarettes_per_day" json:"smoking_cigarettes_per_day,omitempty"`
	SmokingYears            *float64 `db:"smoking_years" json:"smoking_years,omitempty"`
	SmokingPackYears        *float64 `db:"smoking_pack_years" json:"smoking_pack_years,omitempty"`
	NotesSmoking            *string  `db:"notes_smoking" json:"notes_smoking,omitempty"`

	RespiratoryConditions *string `db:"respiratory_conditions" json:"respiratory_conditions,omitempty"`
	AutoimmuneConditions  *string `db:"autoimmune_conditions" json:"autoimmune_conditions,omitempty"`
	AutoimmuneOther       *string `db:"autoimmune_other" json:"autoimmune_other,omitempty"`
	NotesAutoimmune       *string `db:"notes_autoimmune" json:"notes_autoimmune,omitempty"`
	SystemicSymptoms      *string `db:"systemic_symptoms" json:"systemic_symptoms,omitempty"`
	NotesSystemic         *string `db:"notes_systemic" json:"notes_systemic,omitempty"`

	OccupationalExposureTypes       *string `db:"occupational_exposure_types" json:"occupational_exposure_types,omitempty"`
	OccupationalAccident            bool    `db:"occupational_accident" json:"occupational_accident"`
	OccupationalAccidentWhen        *string `db:"occupational_accident_when" json:"occupational_accident_when,omitempty"`
	OccupationalLeaveDueToBreathing bool    `db:"occupational_leave_due_to_breathing" json:"occupational_leave_due_to_breathing"`
	OccupationalJobs                *string `db:"occupational_jobs" json:"occupational_jobs,omitempty"`
	OccupationalYears               *string `db:"occupational_years" json:"occupational_years,omitempty"`
	DomesticExposures               *string `db:"domestic_exposures" json:"domestic_exposures,omitempty"`
	DomesticExposuresDetails        *string `db:"domestic_exposures_details" json:"domestic_exposures_details,omitempty"`
	NotesExposures                  *string `db:"notes_exposures" json:"notes_exposures,omitempty"`

	DrugUse             *string `db:"drug_use" json:"drug_use,omitempty"`
	CurrentMedications  *string `db:"current_medications" json:"current_medications,omitempty"`
	PreviousMedications *string `db:"previous_medications" json:"previous_medications,omitempty"`
	PneumotoxicDrugs    *string `db:"pneumotoxic_drugs" json:"pneumotoxic_drugs,omitempty"`

	FamilyHistoryFather   *string `db:"family_history_father" json:"family_history_father,omitempty"`
	FamilyHistoryMother   *string `db:"family_history_mother" json:"family_history_mother,omitempty"`
	FamilyHistorySiblings *string `db:"family_history_siblings" json:"family_history_siblings,omitempty"`
	FamilyHistoryChildren *string `db:"family_history_children" json:"family_history_children,omitempty"`
	FamilyGenogramFile    *string `db:"family_genogram_file" json:"family_genogram_file,omitempty"`
	NotesFamilyHistory    *string `db:"notes_family_history" json:"notes_family_history,omitempty"`

	SymptomCough          bool     `db:"symptom_cough" json:"symptom_cough"`
	SymptomMMRC           *int     `db:"symptom_mmrc" json:"symptom_mmrc,omitempty"`
	SymptomDurationMonths *int     `db:"symptom_duration_months" json:"symptom_duration_months,omitempty"`
	WeightKg              *float64 `db:"weight_kg" json:"weight_kg,omitempty"`
	HeightCm              *float64 `db:"height_cm" json:"height_cm,omitempty"`
	BMI                   *float64 `db:"bmi" json:"bmi,omitempty"`

	PhysicalCrepitacionesVelcro         bool    `db:"physical_crepitaciones_velcro" json:"physical_crepitaciones_velcro"`
	PhysicalCrepitaciones               bool    `db:"physical_crepitaciones" json:"physical_crepitaciones"`
	PhysicalRoncus                      bool    `db:"physical_roncus" json:"physical_roncus"`
	PhysicalWheezing                    bool    `db:"physical_wheezing" json:"physical_wheezing"`
	PhysicalClubbing                    bool    `db:"physical_clubbing" json:"physical_clubbing"`
	PhysicalPulmonaryHypertensionSigns  bool    `db:"physical_pulmonary_hypertension_signs" json:"physical_pulmonary_hypertension_signs"`
	NotesRespiratoryExam                *string `db:"notes_respiratory_exam" json:"notes_respiratory_exam,omitempty"`

	Antecedentes       *string `db:"antecedentes" json:"antecedentes,omitempty"`
	Diagnoses          *string `db:"diagnoses" json:"diagnoses,omitempty"`
	ClinicaActual      *string `db:"clinica_actual" json:"clinica_actual,omitempty"`
	EstudiosRealizados *string `db:"estudios_realizados" json:"estudios_realizados,omitempty"`

	CreatedByID *uuid.UUID `db:"created_by_id" json:"created_by_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
	UpdatedByID *uuid.UUID `db:"updated_by_id" json:"updated_by_id,omitempty"`
}

// IsSmoker reports any smoking history, current or former.
func (p *Patient) IsSmoker() bool {
	return p.SmokingCurrent || p.SmokingPrevious
}
