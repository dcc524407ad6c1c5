package study

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comitetoraxvm/comite-torax/internal/catalog"
	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/forms"
	"github.com/comitetoraxvm/comite-torax/internal/platform/uploads"
)

// ErrTypeRequired rejects a study without a type.
var ErrTypeRequired = errors.New("study type is required")

type Service struct {
	repo  Repository
	files *uploads.Store
	audit *audit.Logger
}

func NewService(repo Repository, files *uploads.Store, auditLog *audit.Logger) *Service {
	return &Service{repo: repo, files: files, audit: auditLog}
}

// Input is one study submitted on its own, outside a consultation form.
type Input struct {
	StudyType   string
	Date        string
	Center      string
	Description string
	AccessCode  string
	PortalLink  string
}

func ParseForm(f forms.Values) Input {
	return Input{
		StudyType:   strings.TrimSpace(f.Get("study_type")),
		Date:        strings.TrimSpace(f.Get("date")),
		Center:      strings.TrimSpace(f.Get("center")),
		Description: strings.TrimSpace(f.Get("description")),
		AccessCode:  strings.TrimSpace(f.Get("access_code")),
		PortalLink:  strings.TrimSpace(f.Get("portal_link")),
	}
}

func (s *Service) Create(ctx context.Context, patientID uuid.UUID, in Input, creator *uuid.UUID, actor *audit.Actor) (*Study, error) {
	if in.StudyType == "" {
		return nil, ErrTypeRequired
	}
	st := s.build(patientID, nil, in, creator)
	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	s.audit.Log("study_create", map[string]interface{}{
		"study_id":   st.ID.String(),
		"patient_id": patientID.String(),
		"type":       st.StudyType,
	}, actor)
	return st, nil
}

// CreateBatch persists the study rows attached to a consultation and
// returns their IDs in submission order. Rows arrive already defaulted
// by the caller.
func (s *Service) CreateBatch(ctx context.Context, patientID, consultationID uuid.UUID, inputs []Input, creator *uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(inputs))
	for _, in := range inputs {
		st := s.build(patientID, &consultationID, in, creator)
		if err := s.repo.Create(ctx, st); err != nil {
			return ids, err
		}
		ids = append(ids, st.ID)
	}
	return ids, nil
}

func (s *Service) build(patientID uuid.UUID, consultationID *uuid.UUID, in Input, creator *uuid.UUID) *Study {
	link := in.PortalLink
	if link == "" {
		link = catalog.PortalLink(in.Center)
	}
	return &Study{
		PatientID:      patientID,
		ConsultationID: consultationID,
		StudyType:      in.StudyType,
		Date:           nilIfEmpty(in.Date),
		Center:         nilIfEmpty(in.Center),
		Description:    nilIfEmpty(in.Description),
		AccessCode:     nilIfEmpty(in.AccessCode),
		PortalLink:     nilIfEmpty(link),
		CreatedByID:    creator,
		CreatedAt:      time.Now().UTC(),
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Study, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Study, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input, actor *audit.Actor) (*Study, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.StudyType == "" {
		return nil, ErrTypeRequired
	}
	st.StudyType = in.StudyType
	st.Date = nilIfEmpty(in.Date)
	st.Center = nilIfEmpty(in.Center)
	st.Description = nilIfEmpty(in.Description)
	st.AccessCode = nilIfEmpty(in.AccessCode)
	link := in.PortalLink
	if link == "" {
		link = catalog.PortalLink(in.Center)
	}
	st.PortalLink = nilIfEmpty(link)
	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	s.audit.Log("study_update", map[string]interface{}{"study_id": id.String()}, actor)
	return st, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor *audit.Actor) error {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if st.ReportFile != nil {
		s.files.Remove(*st.ReportFile)
	}
	s.audit.Log("study_delete", map[string]interface{}{"study_id": id.String()}, actor)
	return nil
}

// AttachReport stores the study's PDF report, replacing any previous one.
func (s *Service) AttachReport(ctx context.Context, id uuid.UUID, fh *multipart.FileHeader, actor *audit.Actor) (*Study, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := s.files.SaveReport(fh, "study", id.String())
	if err != nil {
		return nil, err
	}
	previous := st.ReportFile
	st.ReportFile = &name
	if err := s.repo.Update(ctx, st); err != nil {
		s.files.Remove(name)
		return nil, err
	}
	if previous != nil && *previous != name {
		s.files.Remove(*previous)
	}
	s.audit.Log("study_report_upload", map[string]interface{}{
		"study_id": id.String(),
		"file":     name,
	}, actor)
	return st, nil
}

// ReportPath resolves the stored report for download.
func (s *Service) ReportPath(ctx context.Context, id uuid.UUID) (path, name string, err error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	if st.ReportFile == nil {
		return "", "", errors.New("study has no report")
	}
	path, err = s.files.Path(*st.ReportFile)
	if err != nil {
		return "", "", err
	}
	return path, *st.ReportFile, nil
}

func nilIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
