package consultation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comitetoraxvm/comite-torax/internal/catalog"
	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/forms"
	"github.com/comitetoraxvm/comite-torax/internal/platform/listcodec"
)

// ErrDateRequired rejects a consultation without a visit date.
var ErrDateRequired = errors.New("consultation date is required")

// StudyCreator persists study rows attached to a new consultation.
// Implemented by the study service; the consultation package only knows
// the rows it parsed.
type StudyCreator interface {
	CreateForConsultation(ctx context.Context, patientID, consultationID uuid.UUID, rows []StudyRow, creator *uuid.UUID) ([]uuid.UUID, error)
}

// ControlScheduler creates a control reminder tied to the consultation.
type ControlScheduler interface {
	Schedule(ctx context.Context, patientID uuid.UUID, consultationID *uuid.UUID, date string, extraEmails *string, creator *uuid.UUID) error
}

// ReviewRequester opens a review request generated from the consultation
// form's inline recipient selector.
type ReviewRequester interface {
	Request(ctx context.Context, patientID uuid.UUID, consultationID, studyID *uuid.UUID, recipients []uuid.UUID, message *string, creator uuid.UUID) error
}

type Service struct {
	repo      Repository
	studies   StudyCreator
	controls  ControlScheduler
	reviews   ReviewRequester
	audit     *audit.Logger
}

func NewService(repo Repository, studies StudyCreator, controls ControlScheduler, reviews ReviewRequester, auditLog *audit.Logger) *Service {
	return &Service{repo: repo, studies: studies, controls: controls, reviews: reviews, audit: auditLog}
}

// Input is the parsed consultation form: the visit itself plus the
// study rows, the optional control request, and the optional review
// request submitted alongside it.
type Input struct {
	Date                string
	Notes               string
	LabGeneral          string
	LabImmunology       []string
	LabImmunologyValues map[string]string
	LabImmunologyNotes  string

	StudyGroups []string
	StudyRows   []StudyRow

	ControlEnabled     bool
	ControlDate        string
	ControlExtraEmails string

	ReviewRecipients []uuid.UUID
	ReviewMessage    string
}

// ParseForm reads the consultation form. Immunology titer values arrive
// as one field per known test code.
func ParseForm(f forms.Values) Input {
	in := Input{
		Date:               strings.TrimSpace(f.Get("date")),
		Notes:              strings.TrimSpace(f.Get("notes")),
		LabGeneral:         strings.TrimSpace(f.Get("lab_general")),
		LabImmunology:      f.List("lab_immunology"),
		LabImmunologyNotes: strings.TrimSpace(f.Get("lab_immunology_notes")),
		ControlEnabled:     f.Bool("control_enabled"),
		ControlDate:        strings.TrimSpace(f.Get("control_date")),
		ControlExtraEmails: strings.TrimSpace(f.Get("control_extra_emails")),
		ReviewMessage:      strings.TrimSpace(f.Get("review_message")),
	}

	in.LabImmunologyValues = map[string]string{}
	for _, pair := range catalog.ImmunoLabAll() {
		if val := strings.TrimSpace(f.Get("lab_immunology_value_" + pair.Value)); val != "" {
			in.LabImmunologyValues[pair.Value] = val
		}
	}

	for _, id := range f.List("review_recipients") {
		if parsed, err := uuid.Parse(strings.TrimSpace(id)); err == nil {
			in.ReviewRecipients = appendUnique(in.ReviewRecipients, parsed)
		}
	}

	in.StudyGroups = f.List("study_groups")
	in.StudyRows = parseStudyGroups(f)
	return in
}

// controlEligible reports whether the form included a functional or
// imaging study section. Controls are only scheduled off those visits;
// an invasive-only consultation gets no automatic reminder.
func (in Input) controlEligible() bool {
	for _, g := range in.StudyGroups {
		if g == "func" || g == "img" {
			return true
		}
	}
	return false
}

// parseStudyGroups reads the three study sections (functional, imaging,
// invasive). Each section submits parallel type/date arrays sharing one
// description; only the imaging section carries center, access code, and
// portal link per row.
func parseStudyGroups(f forms.Values) []StudyRow {
	groups := map[string]bool{}
	for _, g := range f.List("study_groups") {
		groups[g] = true
	}

	var rows []StudyRow
	appendGroup := func(suffix string, withImaging bool) {
		types := f.List("study_type_" + suffix)
		dates := f.List("study_date_" + suffix)
		desc := strings.TrimSpace(f.Get("study_description_" + suffix))
		var centers, accesses, links []string
		if withImaging {
			centers = f.List("study_center_" + suffix)
			accesses = f.List("study_access_code_" + suffix)
			links = f.List("study_portal_link_" + suffix)
		}
		n := len(types)
		if len(dates) > n {
			n = len(dates)
		}
		at := func(list []string, i int) string {
			if i < len(list) {
				return strings.TrimSpace(list[i])
			}
			return ""
		}
		for i := 0; i < n; i++ {
			row := StudyRow{
				Type:        at(types, i),
				Date:        at(dates, i),
				Center:      at(centers, i),
				AccessCode:  at(accesses, i),
				PortalLink:  at(links, i),
				Description: desc,
			}
			if row.Empty() {
				continue
			}
			rows = append(rows, row)
		}
	}

	if groups["func"] {
		appendGroup("func", false)
	}
	if groups["img"] {
		appendGroup("img", true)
	}
	if groups["inv"] {
		appendGroup("inv", false)
	}
	return rows
}

// Result reports what the composite create produced.
type Result struct {
	Consultation *Consultation `json:"consultation"`
	StudyIDs     []uuid.UUID   `json:"study_ids,omitempty"`
}

// Create persists the consultation, its study rows, and the optional
// control reminder and review request. A row's missing type or date falls
// back to a generic label and the consultation date.
func (s *Service) Create(ctx context.Context, patientID uuid.UUID, in Input, creator *uuid.UUID, actor *audit.Actor) (*Result, error) {
	if in.Date == "" {
		return nil, ErrDateRequired
	}

	cn := &Consultation{
		PatientID:           patientID,
		Date:                &in.Date,
		Notes:               nilIfEmpty(in.Notes),
		LabGeneral:          nilIfEmpty(in.LabGeneral),
		LabImmunology:       listcodec.Encode(in.LabImmunology),
		LabImmunologyValues: listcodec.EncodeKV(in.LabImmunologyValues),
		LabImmunologyNotes:  nilIfEmpty(in.LabImmunologyNotes),
		CreatedByID:         creator,
		CreatedAt:           time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, cn); err != nil {
		return nil, err
	}

	rows := make([]StudyRow, 0, len(in.StudyRows))
	for _, row := range in.StudyRows {
		if row.Type == "" {
			row.Type = "Estudio asociado a consulta"
		}
		if row.Date == "" {
			row.Date = in.Date
		}
		rows = append(rows, row)
	}
	var studyIDs []uuid.UUID
	if len(rows) > 0 && s.studies != nil {
		ids, err := s.studies.CreateForConsultation(ctx, patientID, cn.ID, rows, creator)
		if err != nil {
			return nil, err
		}
		studyIDs = ids
	}

	if in.ControlEnabled && in.ControlDate != "" && in.controlEligible() && s.controls != nil {
		if err := s.controls.Schedule(ctx, patientID, &cn.ID, in.ControlDate, nilIfEmpty(in.ControlExtraEmails), creator); err != nil {
			return nil, err
		}
	}

	if len(in.ReviewRecipients) > 0 && s.reviews != nil && creator != nil {
		var studyID *uuid.UUID
		if len(studyIDs) > 0 {
			studyID = &studyIDs[0]
		}
		if err := s.reviews.Request(ctx, patientID, &cn.ID, studyID, in.ReviewRecipients, nilIfEmpty(in.ReviewMessage), *creator); err != nil {
			return nil, err
		}
	}

	s.audit.Log("consultation_create", map[string]interface{}{
		"consultation_id": cn.ID.String(),
		"patient_id":      patientID.String(),
		"studies":         len(studyIDs),
	}, actor)
	return &Result{Consultation: cn, StudyIDs: studyIDs}, nil
}

// Update rewrites the consultation's own fields and appends any newly
// submitted study rows.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input, editor *uuid.UUID, actor *audit.Actor) (*Result, error) {
	cn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Date == "" {
		return nil, ErrDateRequired
	}
	cn.Date = &in.Date
	cn.Notes = nilIfEmpty(in.Notes)
	cn.LabGeneral = nilIfEmpty(in.LabGeneral)
	cn.LabImmunology = listcodec.Encode(in.LabImmunology)
	cn.LabImmunologyValues = listcodec.EncodeKV(in.LabImmunologyValues)
	cn.LabImmunologyNotes = nilIfEmpty(in.LabImmunologyNotes)
	if err := s.repo.Update(ctx, cn); err != nil {
		return nil, err
	}

	var studyIDs []uuid.UUID
	if len(in.StudyRows) > 0 && s.studies != nil {
		rows := make([]StudyRow, 0, len(in.StudyRows))
		for _, row := range in.StudyRows {
			if row.Type == "" {
				row.Type = "Estudio asociado a consulta"
			}
			if row.Date == "" {
				row.Date = in.Date
			}
			rows = append(rows, row)
		}
		studyIDs, err = s.studies.CreateForConsultation(ctx, cn.PatientID, cn.ID, rows, editor)
		if err != nil {
			return nil, err
		}
	}

	s.audit.Log("consultation_update", map[string]interface{}{"consultation_id": cn.ID.String()}, actor)
	return &Result{Consultation: cn, StudyIDs: studyIDs}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Consultation, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor *audit.Actor) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Log("consultation_delete", map[string]interface{}{"consultation_id": id.String()}, actor)
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func appendUnique(list []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range list {
		if existing == id {
			return list
		}
	}
	return append(list, id)
}
