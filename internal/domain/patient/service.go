package patient

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/forms"
	"github.com/comitetoraxvm/comite-torax/internal/platform/uploads"
)

// ErrDuplicateDNI signals that a patient with the submitted DNI already
// exists. The handler redirects the caller to the existing record instead
// of creating a duplicate.
type ErrDuplicateDNI struct {
	DNI        string
	ExistingID uuid.UUID
}

func (e *ErrDuplicateDNI) Error() string {
	return fmt.Sprintf("a patient with DNI %s already exists", e.DNI)
}

// ErrValidation carries the missing required fields.
type ErrValidation struct {
	Missing []string
}

func (e *ErrValidation) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

type Service struct {
	repo  Repository
	files *uploads.Store
	audit *audit.Logger
}

func NewService(repo Repository, files *uploads.Store, auditLog *audit.Logger) *Service {
	return &Service{repo: repo, files: files, audit: auditLog}
}

// validate enforces the intake form's required fields.
func validate(p *Patient) error {
	var missing []string
	if p.FullName == "" {
		missing = append(missing, "full_name")
	}
	if p.DNI == nil {
		missing = append(missing, "dni")
	}
	if p.Email == nil {
		missing = append(missing, "email")
	}
	if !p.ConsentGiven {
		missing = append(missing, "consent_given")
	}
	if len(missing) > 0 {
		return &ErrValidation{Missing: missing}
	}
	return nil
}

// CreateFromForm builds a patient from the submitted questionnaire. A DNI
// already in use aborts before insert and reports the existing record.
func (s *Service) CreateFromForm(ctx context.Context, f forms.Values, creator *uuid.UUID, actor *audit.Actor) (*Patient, error) {
	p := &Patient{}
	p.PopulateFromForm(f, creator, time.Now().UTC())
	if err := validate(p); err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByDNI(ctx, *p.DNI); err == nil && existing != nil {
		return nil, &ErrDuplicateDNI{DNI: *p.DNI, ExistingID: existing.ID}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.audit.Log("patient_create", map[string]interface{}{"patient_id": p.ID.String()}, actor)
	return p, nil
}

// UpdateFromForm re-populates an existing patient from the form. Creation
// metadata survives the rewrite.
func (s *Service) UpdateFromForm(ctx context.Context, id uuid.UUID, f forms.Values, editor *uuid.UUID, actor *audit.Actor) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousDNI := p.DNI
	p.PopulateFromForm(f, editor, time.Now().UTC())
	if err := validate(p); err != nil {
		return nil, err
	}
	if p.DNI != nil && (previousDNI == nil || *previousDNI != *p.DNI) {
		if existing, err := s.repo.GetByDNI(ctx, *p.DNI); err == nil && existing != nil && existing.ID != p.ID {
			return nil, &ErrDuplicateDNI{DNI: *p.DNI, ExistingID: existing.ID}
		}
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.audit.Log("patient_update", map[string]interface{}{"patient_id": p.ID.String()}, actor)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, search string) ([]*Patient, error) {
	return s.repo.List(ctx, search)
}

// Delete removes the patient with all dependent clinical records, then
// best-effort deletes the genogram from disk.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor *audit.Actor) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if p.FamilyGenogramFile != nil {
		s.files.Remove(*p.FamilyGenogramFile)
	}
	s.audit.Log("patient_delete", map[string]interface{}{"patient_id": id.String()}, actor)
	return nil
}

// AttachGenogram stores the family-genogram upload and links it to the
// patient, replacing (and removing) any previous file.
func (s *Service) AttachGenogram(ctx context.Context, id uuid.UUID, fh *multipart.FileHeader, actor *audit.Actor) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := s.files.SaveAttachment(fh, "patient", p.ID.String(), "familiograma")
	if err != nil {
		return nil, err
	}
	if p.FamilyGenogramFile != nil {
		s.files.Remove(*p.FamilyGenogramFile)
	}
	p.FamilyGenogramFile = &name
	if err := s.repo.Update(ctx, p); err != nil {
		s.files.Remove(name)
		return nil, err
	}
	s.audit.Log("patient_genogram_upload", map[string]interface{}{"patient_id": id.String(), "file": name}, actor)
	return p, nil
}

// GenogramPath resolves the stored genogram for download.
func (s *Service) GenogramPath(ctx context.Context, id uuid.UUID) (string, string, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	if p.FamilyGenogramFile == nil {
		return "", "", errors.New("patient has no genogram on file")
	}
	path, err := s.files.Path(*p.FamilyGenogramFile)
	if err != nil {
		return "", "", err
	}
	return path, *p.FamilyGenogramFile, nil
}
