package patient

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/comitetoraxvm/comite-torax/internal/platform/forms"
	"github.com/comitetoraxvm/comite-torax/internal/platform/listcodec"
)

// PopulateFromForm maps submitted questionnaire fields onto the patient.
// String fields trim to nil-if-empty, checkboxes coerce leniently, and
// numeric fields ignore unparseable input. Derived fields (age, bmi,
// pack-years) are computed here and stored. Creation metadata is only set
// the first time; an existing created_at/created_by is never overwritten.
func (p *Patient) PopulateFromForm(f forms.Values, editor *uuid.UUID, now time.Time) {
	if name := f.String("full_name"); name != nil {
		p.FullName = *name
	} else {
		p.FullName = ""
	}
	p.DNI = f.String("dni")
	p.Age = f.Int("age")
	p.Sex = f.String("sex")
	p.Center = f.String("center")
	p.Email = f.String("email")
	p.BirthDate = f.String("birth_date")
	if p.Age == nil && p.BirthDate != nil {
		p.Age = AgeFromBirthDate(*p.BirthDate, now)
	}
	p.Phone = f.String("phone")
	p.Address = f.String("address")
	p.City = f.String("city")
	p.HealthInsurance = f.String("health_insurance")
	p.HealthInsuranceNumber = f.String("health_insurance_number")
	p.FirstConsultationDate = f.String("first_consultation_date")

	p.ConsentGiven = f.Bool("consent_given")
	if p.ConsentGiven {
		if d := f.String("consent_date"); d != nil {
			p.ConsentDate = d
		} else {
			today := now.Format("2006-01-02")
			p.ConsentDate = &today
		}
	} else {
		p.ConsentDate = nil
	}

	p.Antecedentes = f.String("antecedentes")
	p.Diagnoses = f.String("diagnoses")
	p.NotesPersonal = f.String("notes_personal")

	// Smoking. A "never smoked" flag wins over everything else.
	smokingNever := f.Bool("smoking_never")
	p.SmokingCurrent = f.Bool("smoking_current")
	p.SmokingPrevious = f.Bool("smoking_previous")
	p.SmokingStartAge = f.Int("smoking_start_age")
	p.SmokingEndAge = f.Int("smoking_end_age")
	p.SmokingCigarettesPerDay = f.Int("smoking_cigarettes_per_day")
	p.SmokingYears = f.Float("smoking_years")
	packYearsInput := f.Float("smoking_pack_years")
	if smokingNever {
		p.SmokingCurrent = false
		p.SmokingPrevious = false
		zero := 0.0
		p.SmokingPackYears = &zero
		p.SmokingYears = nil
		p.SmokingCigarettesPerDay = nil
	} else if p.SmokingCigarettesPerDay != nil && p.SmokingYears != nil &&
		*p.SmokingCigarettesPerDay != 0 && *p.SmokingYears != 0 {
		p.SmokingPackYears = PackYears(*p.SmokingCigarettesPerDay, *p.SmokingYears)
	} else {
		p.SmokingPackYears = packYearsInput
	}
	p.NotesSmoking = f.String("notes_smoking")

	p.RespiratoryConditions = listcodec.Encode(f.List("respiratory_conditions"))
	p.AutoimmuneConditions = listcodec.Encode(f.List("autoimmune_conditions"))
	p.NotesAutoimmune = f.String("notes_autoimmune")
	p.AutoimmuneOther = f.String("autoimmune_other")
	p.SystemicSymptoms = listcodec.Encode(f.List("systemic_symptoms"))
	p.NotesSystemic = f.String("notes_systemic")
	p.OccupationalExposureTypes = listcodec.Encode(f.List("occupational_exposure_types"))
	p.OccupationalJobs = listcodec.Encode(f.List("occupational_jobs"))
	p.DomesticExposures = listcodec.Encode(f.List("domestic_exposures"))
	p.DrugUse = listcodec.Encode(f.List("drug_use"))
	p.PneumotoxicDrugs = listcodec.Encode(f.List("pneumotoxic_drugs"))

	p.OccupationalYears = f.String("occupational_years")
	p.OccupationalAccident = f.Bool("occupational_accident")
	p.OccupationalAccidentWhen = f.String("occupational_accident_when")
	p.OccupationalLeaveDueToBreathing = f.Bool("occupational_leave_due_to_breathing")
	p.DomesticExposuresDetails = f.String("domestic_exposures_details")
	p.NotesExposures = f.String("notes_exposures")
	p.CurrentMedications = f.String("current_medications")
	p.PreviousMedications = f.String("previous_medications")

	p.FamilyHistoryFather = f.String("family_history_father")
	p.FamilyHistoryMother = f.String("family_history_mother")
	p.FamilyHistorySiblings = f.String("family_history_siblings")
	p.FamilyHistoryChildren = f.String("family_history_children")
	p.NotesFamilyHistory = f.String("notes_family_history")

	p.SymptomCough = f.Bool("symptom_cough")
	p.SymptomMMRC = f.Int("symptom_mmrc")
	p.SymptomDurationMonths = f.Int("symptom_duration_months")

	p.WeightKg = f.Float("weight_kg")
	p.HeightCm = f.Float("height_cm")
	p.BMI = ComputeBMI(p.WeightKg, p.HeightCm)

	p.PhysicalCrepitacionesVelcro = f.Bool("physical_crepitaciones_velcro")
	p.PhysicalCrepitaciones = f.Bool("physical_crepitaciones")
	p.PhysicalRoncus = f.Bool("physical_roncus")
	p.PhysicalWheezing = f.Bool("physical_wheezing")
	p.PhysicalClubbing = f.Bool("physical_clubbing")
	p.PhysicalPulmonaryHypertensionSigns = f.Bool("physical_pulmonary_hypertension_signs")
	p.NotesRespiratoryExam = f.String("notes_respiratory_exam")

	p.ClinicaActual = f.String("clinica_actual")
	p.EstudiosRealizados = f.String("estudios_realizados")

	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = &now
	if editor != nil {
		if p.CreatedByID == nil {
			p.CreatedByID = editor
		}
		p.UpdatedByID = editor
	}
}

// ComputeBMI returns weight/height² rounded to two decimals, nil when
// either input is missing or height is not positive.
func ComputeBMI(weightKg, heightCm *float64) *float64 {
	if weightKg == nil || heightCm == nil || *weightKg == 0 {
		return nil
	}
	heightM := *heightCm / 100
	if heightM <= 0 {
		return nil
	}
	bmi := round2(*weightKg / (heightM * heightM))
	return &bmi
}

// AgeFromBirthDate computes whole years from a YYYY-MM-DD date, using a
// month/day comparison to decide whether the birthday already passed this
// year. Unparseable or future dates yield nil.
func AgeFromBirthDate(birthDate string, now time.Time) *int {
	bd, err := time.Parse("2006-01-02", birthDate)
	if err != nil {
		return nil
	}
	age := now.Year() - bd.Year()
	if now.Month() < bd.Month() || (now.Month() == bd.Month() && now.Day() < bd.Day()) {
		age--
	}
	if age < 0 {
		return nil
	}
	return &age
}

// PackYears computes (cigarettes/20) × years smoked, rounded to two
// decimals.
func PackYears(cigarettesPerDay int, years float64) *float64 {
	py := round2(float64(cigarettesPerDay) / 20.0 * years)
	return &py
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
