package casefile

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/comitetoraxvm/comite-torax/internal/domain/consultation"
	"github.com/comitetoraxvm/comite-torax/internal/domain/patient"
	"github.com/comitetoraxvm/comite-torax/internal/domain/study"
	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/forms"
)

// PatientSource resolves the patient a presentation belongs to.
type PatientSource interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// ConsultationSource supplies the most recent consultation for prefill.
type ConsultationSource interface {
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*consultation.Consultation, error)
}

// StudySource supplies the most recent study for prefill.
type StudySource interface {
	LatestByPatient(ctx context.Context, patientID uuid.UUID) (*study.Study, error)
}

type Service struct {
	repo          Repository
	patients      PatientSource
	consultations ConsultationSource
	studies       StudySource
	audit         *audit.Logger
}

func NewService(repo Repository, patients PatientSource, consultations ConsultationSource,
	studies StudySource, auditLog *audit.Logger) *Service {
	return &Service{
		repo:          repo,
		patients:      patients,
		consultations: consultations,
		studies:       studies,
		audit:         auditLog,
	}
}

// GetOrCreate returns the patient's presentation, prefilling and
// persisting one from the clinical record on first access.
func (s *Service) GetOrCreate(ctx context.Context, patientID uuid.UUID) (*Presentation, error) {
	pr, err := s.repo.GetByPatient(ctx, patientID)
	if err == nil {
		return pr, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	lastCons, err := s.consultations.LatestByPatient(ctx, patientID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	lastStudy, err := s.studies.LatestByPatient(ctx, patientID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	pr = buildDefaults(p, lastCons, lastStudy)
	if err := s.repo.Create(ctx, pr); err != nil {
		return nil, err
	}
	return pr, nil
}

// Input carries the editable presentation sections. Nil fields clear.
type Input struct {
	Intro            *string
	PhysicalExam     *string
	RespiratoryTests *string
	Immunology       *string
	Exposures        *string
	Imaging          *string
	Notes            *string
}

func ParseForm(v forms.Values) Input {
	return Input{
		Intro:            v.String("intro"),
		PhysicalExam:     v.String("physical_exam"),
		RespiratoryTests: v.String("respiratory_tests"),
		Immunology:       v.String("immunology"),
		Exposures:        v.String("exposures"),
		Imaging:          v.String("imaging"),
		Notes:            v.String("notes"),
	}
}

func (s *Service) Update(ctx context.Context, patientID uuid.UUID, in Input, actor *audit.Actor) (*Presentation, error) {
	pr, err := s.GetOrCreate(ctx, patientID)
	if err != nil {
		return nil, err
	}
	pr.Intro = in.Intro
	pr.PhysicalExam = in.PhysicalExam
	pr.RespiratoryTests = in.RespiratoryTests
	pr.Immunology = in.Immunology
	pr.Exposures = in.Exposures
	pr.Imaging = in.Imaging
	pr.Notes = in.Notes
	if err := s.repo.Update(ctx, pr); err != nil {
		return nil, err
	}
	s.audit.Log("case_presentation_update", map[string]interface{}{
		"patient_id": patientID.String(),
	}, actor)
	return pr, nil
}

// ExportDoc renders the presentation as Word-compatible HTML, the way
// committees circulate case sheets.
func (s *Service) ExportDoc(ctx context.Context, patientID uuid.UUID) (string, []byte, error) {
	pr, err := s.GetOrCreate(ctx, patientID)
	if err != nil {
		return "", nil, err
	}
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return "", nil, err
	}

	var buf bytes.Buffer
	if err := docTemplate.Execute(&buf, docData{Patient: p, Presentation: pr}); err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("caso_%s.doc", patientID), buf.Bytes(), nil
}
