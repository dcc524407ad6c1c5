package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, full_name, dni, email, age, sex, center,
	birth_date, phone, address, city, health_insurance, health_insurance_number,
	first_consultation_date, consent_given, consent_date, notes_personal,
	smoking_current, smoking_previous, smoking_start_age, smoking_end_age,
	smoking_cigarettes_per_day, smoking_years, smoking_pack_years, notes_smoking,
	respiratory_conditions, autoimmune_conditions, autoimmune_other, notes_autoimmune,
	systemic_symptoms, notes_systemic,
	occupational_exposure_types, occupational_accident, occupational_accident_when,
	occupational_leave_due_to_breathing, occupational_jobs, occupational_years,
	domestic_exposures, domestic_exposures_details, notes_exposures,
	drug_use, current_medications, previous_medications, pneumotoxic_drugs,
	family_history_father, family_history_mother, family_history_siblings,
	family_history_children, family_genogram_file, notes_family_history,
	symptom_cough, symptom_mmrc, symptom_duration_months, weight_kg, height_cm, bmi,
	physical_crepitaciones_velcro, physical_crepitaciones, physical_roncus,
	physical_wheezing, physical_clubbing, physical_pulmonary_hypertension_signs,
	notes_respiratory_exam, antecedentes, diagnoses, clinica_actual, estudios_realizados,
	created_by_id, created_at, updated_at, updated_by_id`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FullName, &p.DNI, &p.Email, &p.Age, &p.Sex, &p.Center,
		&p.BirthDate, &p.Phone, &p.Address, &p.City, &p.HealthInsurance, &p.HealthInsuranceNumber,
		&p.FirstConsultationDate, &p.ConsentGiven, &p.ConsentDate, &p.NotesPersonal,
		&p.SmokingCurrent, &p.SmokingPrevious, &p.SmokingStartAge, &p.SmokingEndAge,
		&p.SmokingCigarettesPerDay, &p.SmokingYears, &p.SmokingPackYears, &p.NotesSmoking,
		&p.RespiratoryConditions, &p.AutoimmuneConditions, &p.AutoimmuneOther, &p.NotesAutoimmune,
		&p.SystemicSymptoms, &p.NotesSystemic,
		&p.OccupationalExposureTypes, &p.OccupationalAccident, &p.OccupationalAccidentWhen,
		&p.OccupationalLeaveDueToBreathing, &p.OccupationalJobs, &p.OccupationalYears,
		&p.DomesticExposures, &p.DomesticExposuresDetails, &p.NotesExposures,
		&p.DrugUse, &p.CurrentMedications, &p.PreviousMedications, &p.PneumotoxicDrugs,
		&p.FamilyHistoryFather, &p.FamilyHistoryMother, &p.FamilyHistorySiblings,
		&p.FamilyHistoryChildren, &p.FamilyGenogramFile, &p.NotesFamilyHistory,
		&p.SymptomCough, &p.SymptomMMRC, &p.SymptomDurationMonths, &p.WeightKg, &p.HeightCm, &p.BMI,
		&p.PhysicalCrepitacionesVelcro, &p.PhysicalCrepitaciones, &p.PhysicalRoncus,
		&p.PhysicalWheezing, &p.PhysicalClubbing, &p.PhysicalPulmonaryHypertensionSigns,
		&p.NotesRespiratoryExam, &p.Antecedentes, &p.Diagnoses, &p.ClinicaActual, &p.EstudiosRealizados,
		&p.CreatedByID, &p.CreatedAt, &p.UpdatedAt, &p.UpdatedByID)
	return &p, err
}

func patientArgs(p *Patient) []interface{} {
	return []interface{}{
		p.ID, p.FullName, p.DNI, p.Email, p.Age, p.Sex, p.Center,
		p.BirthDate, p.Phone, p.Address, p.City, p.HealthInsurance, p.HealthInsuranceNumber,
		p.FirstConsultationDate, p.ConsentGiven, p.ConsentDate, p.NotesPersonal,
		p.SmokingCurrent, p.SmokingPrevious, p.SmokingStartAge, p.SmokingEndAge,
		p.SmokingCigarettesPerDay, p.SmokingYears, p.SmokingPackYears, p.NotesSmoking,
		p.RespiratoryConditions, p.AutoimmuneConditions, p.AutoimmuneOther, p.NotesAutoimmune,
		p.SystemicSymptoms, p.NotesSystemic,
		p.OccupationalExposureTypes, p.OccupationalAccident, p.OccupationalAccidentWhen,
		p.OccupationalLeaveDueToBreathing, p.OccupationalJobs, p.OccupationalYears,
		p.DomesticExposures, p.DomesticExposuresDetails, p.NotesExposures,
		p.DrugUse, p.CurrentMedications, p.PreviousMedications, p.PneumotoxicDrugs,
		p.FamilyHistoryFather, p.FamilyHistoryMother, p.FamilyHistorySiblings,
		p.FamilyHistoryChildren, p.FamilyGenogramFile, p.NotesFamilyHistory,
		p.SymptomCough, p.SymptomMMRC, p.SymptomDurationMonths, p.WeightKg, p.HeightCm, p.BMI,
		p.PhysicalCrepitacionesVelcro, p.PhysicalCrepitaciones, p.PhysicalRoncus,
		p.PhysicalWheezing, p.PhysicalClubbing, p.PhysicalPulmonaryHypertensionSigns,
		p.NotesRespiratoryExam, p.Antecedentes, p.Diagnoses, p.ClinicaActual, p.EstudiosRealizados,
		p.CreatedByID, p.CreatedAt, p.UpdatedAt, p.UpdatedByID,
	}
}

func placeholders(n int) string {
	out := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ","
		}
		out += fmt.Sprintf("$%d", i)
	}
	return out
}

const patientColCount = 71

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO patients (`+patientCols+`) VALUES (`+placeholders(patientColCount)+`)`,
		patientArgs(p)...)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByDNI(ctx context.Context, dni string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE dni = $1`, dni))
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE patients SET
			full_name=$2, dni=$3, email=$4, age=$5, sex=$6, center=$7,
			birth_date=$8, phone=$9, address=$10, city=$11, health_insurance=$12,
			health_insurance_number=$13, first_consultation_date=$14, consent_given=$15,
			consent_date=$16, notes_personal=$17,
			smoking_current=$18, smoking_previous=$19, smoking_start_age=$20,
			smoking_end_age=$21, smoking_cigarettes_per_day=$22, smoking_years=$23,
			smoking_pack_years=$24, notes_smoking=$25,
			respiratory_conditions=$26, autoimmune_conditions=$27, autoimmune_other=$28,
			notes_autoimmune=$29, systemic_symptoms=$30, notes_systemic=$31,
			occupational_exposure_types=$32, occupational_accident=$33,
			occupational_accident_when=$34, occupational_leave_due_to_breathing=$35,
			occupational_jobs=$36, occupational_years=$37,
			domestic_exposures=$38, domestic_exposures_details=$39, notes_exposures=$40,
			drug_use=$41, current_medications=$42, previous_medications=$43,
			pneumotoxic_drugs=$44,
			family_history_father=$45, family_history_mother=$46,
			family_history_siblings=$47, family_history_children=$48,
			family_genogram_file=$49, notes_family_history=$50,
			symptom_cough=$51, symptom_mmrc=$52, symptom_duration_months=$53,
			weight_kg=$54, height_cm=$55, bmi=$56,
			physical_crepitaciones_velcro=$57, physical_crepitaciones=$58,
			physical_roncus=$59, physical_wheezing=$60, physical_clubbing=$61,
			physical_pulmonary_hypertension_signs=$62, notes_respiratory_exam=$63,
			antecedentes=$64, diagnoses=$65, clinica_actual=$66, estudios_realizados=$67,
			created_by_id=$68, created_at=$69, updated_at=$70, updated_by_id=$71
		WHERE id = $1`,
		patientArgs(p)...)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	stmts := []string{
		`DELETE FROM review_comments WHERE review_id IN (SELECT id FROM review_requests WHERE patient_id = $1)`,
		`DELETE FROM review_requests WHERE patient_id = $1`,
		`DELETE FROM control_reminders WHERE patient_id = $1`,
		`DELETE FROM studies WHERE patient_id = $1`,
		`DELETE FROM consultations WHERE patient_id = $1`,
		`DELETE FROM screening_followups WHERE screening_id IN (SELECT id FROM screenings WHERE patient_id = $1)`,
		`DELETE FROM screenings WHERE patient_id = $1`,
		`DELETE FROM case_presentations WHERE patient_id = $1`,
		`DELETE FROM patients WHERE id = $1`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete patient: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (r *repoPG) List(ctx context.Context, search string) ([]*Patient, error) {
	query := `SELECT ` + patientCols + ` FROM patients`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE full_name ILIKE $1 OR dni ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY full_name ASC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
