package screening

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/comitetoraxvm/comite-torax/internal/catalog"
	"github.com/comitetoraxvm/comite-torax/internal/domain/patient"
	"github.com/comitetoraxvm/comite-torax/internal/domain/user"
	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/forms"
	"github.com/comitetoraxvm/comite-torax/internal/platform/mail"
	"github.com/comitetoraxvm/comite-torax/internal/platform/uploads"
)

// ErrFollowupFields rejects a followup without its study type and date.
var ErrFollowupFields = errors.New("study type and date are required")

// ErrNotAllowed rejects a status change by someone other than the
// followup's creator.
var ErrNotAllowed = errors.New("not allowed")

// PatientSource resolves the patient a screening sheet belongs to.
type PatientSource interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// UserDirectory resolves user names and addresses for notifications.
type UserDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	EmailsByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error)
}

type Service struct {
	repo     Repository
	patients PatientSource
	users    UserDirectory
	catalogs *catalog.Catalogs
	files    *uploads.Store
	mailer   *mail.Dispatcher
	audit    *audit.Logger
}

func NewService(repo Repository, patients PatientSource, users UserDirectory,
	catalogs *catalog.Catalogs, files *uploads.Store, mailer *mail.Dispatcher,
	auditLog *audit.Logger) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		users:    users,
		catalogs: catalogs,
		files:    files,
		mailer:   mailer,
		audit:    auditLog,
	}
}

// Sheet is the screening view: the sheet itself, its followups, and the
// recomputed eligibility.
type Sheet struct {
	Screening   *Screening  `json:"screening"`
	Followups   []*Followup `json:"followups"`
	Eligibility Eligibility `json:"eligibility"`
}

// GetOrCreate returns the patient's screening sheet, creating a blank one
// on first access. A new sheet gets its NCCN criteria and findings
// prefilled from the questionnaire.
func (s *Service) GetOrCreate(ctx context.Context, patientID uuid.UUID) (*Sheet, error) {
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	el := ComputeEligibility(p)

	sc, err := s.repo.GetByPatient(ctx, patientID)
	if errors.Is(err, pgx.ErrNoRows) {
		sc = &Screening{PatientID: patientID, CreatedAt: time.Now().UTC()}
		if text := PrefillNCCN(p, s.catalogs, el); text != "" {
			sc.NCCNCriteria = &text
		}
		if text := PrefillFindings(p, s.catalogs); text != "" {
			sc.Findings = &text
		}
		if err := s.repo.CreateScreening(ctx, sc); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	followups, err := s.repo.ListFollowups(ctx, sc.ID)
	if err != nil {
		return nil, err
	}
	return &Sheet{Screening: sc, Followups: followups, Eligibility: el}, nil
}

// SheetInput is the parsed screening sheet form.
type SheetInput struct {
	ScreeningLung   bool
	FollowupNodule  bool
	ECOGStatus      string
	FamilyHistory   bool
	PriorCT         bool
	PriorComparison string
	StudyCenter     string
	StudyNumber     string
	StudyDate       string
	Findings        string
	LungRADS        string
	Conclusion      string
	NCCNCriteria    string
	NextControlDate string
	ExtraEmail      string
}

func ParseSheetForm(f forms.Values) SheetInput {
	return SheetInput{
		ScreeningLung:   f.Bool("screening_lung"),
		FollowupNodule:  f.Bool("followup_nodule"),
		ECOGStatus:      strings.TrimSpace(f.Get("ecog_status")),
		FamilyHistory:   f.Bool("family_history"),
		PriorCT:         f.Bool("prior_ct"),
		PriorComparison: strings.TrimSpace(f.Get("prior_comparison")),
		StudyCenter:     strings.TrimSpace(f.Get("study_center")),
		StudyNumber:     strings.TrimSpace(f.Get("study_number")),
		StudyDate:       strings.TrimSpace(f.Get("study_date")),
		Findings:        strings.TrimSpace(f.Get("findings")),
		LungRADS:        strings.TrimSpace(f.Get("lung_rads")),
		Conclusion:      strings.TrimSpace(f.Get("conclusion")),
		NCCNCriteria:    strings.TrimSpace(f.Get("nccn_criteria")),
		NextControlDate: strings.TrimSpace(f.Get("next_control_date")),
		ExtraEmail:      strings.TrimSpace(f.Get("extra_email")),
	}
}

// UpdateSheet rewrites the sheet from the submitted form.
func (s *Service) UpdateSheet(ctx context.Context, patientID uuid.UUID, in SheetInput, actor *audit.Actor) (*Sheet, error) {
	sheet, err := s.GetOrCreate(ctx, patientID)
	if err != nil {
		return nil, err
	}
	sc := sheet.Screening
	sc.ScreeningLung = in.ScreeningLung
	sc.FollowupNodule = in.FollowupNodule
	sc.ECOGStatus = nilIfEmpty(in.ECOGStatus)
	sc.FamilyHistory = in.FamilyHistory
	sc.PriorCT = in.PriorCT
	sc.PriorComparison = nilIfEmpty(in.PriorComparison)
	sc.StudyCenter = nilIfEmpty(in.StudyCenter)
	sc.StudyNumber = nilIfEmpty(in.StudyNumber)
	sc.StudyDate = nilIfEmpty(in.StudyDate)
	sc.Findings = nilIfEmpty(in.Findings)
	sc.LungRADS = nilIfEmpty(in.LungRADS)
	sc.Conclusion = nilIfEmpty(in.Conclusion)
	sc.NCCNCriteria = nilIfEmpty(in.NCCNCriteria)
	sc.NextControlDate = nilIfEmpty(in.NextControlDate)
	sc.ExtraEmail = nilIfEmpty(in.ExtraEmail)
	if err := s.repo.UpdateScreening(ctx, sc); err != nil {
		return nil, err
	}
	s.audit.Log("screening_update", map[string]interface{}{
		"screening_id": sc.ID.String(),
		"patient_id":   patientID.String(),
	}, actor)
	return sheet, nil
}

// AttachSheetFile stores the sheet's PDF study report.
func (s *Service) AttachSheetFile(ctx context.Context, patientID uuid.UUID, fh *multipart.FileHeader, actor *audit.Actor) (*Screening, error) {
	sheet, err := s.GetOrCreate(ctx, patientID)
	if err != nil {
		return nil, err
	}
	sc := sheet.Screening
	name, err := s.files.SaveReport(fh, "screening", patientID.String())
	if err != nil {
		return nil, err
	}
	previous := sc.StudyFile
	sc.StudyFile = &name
	if err := s.repo.UpdateScreening(ctx, sc); err != nil {
		s.files.Remove(name)
		return nil, err
	}
	if previous != nil && *previous != name {
		s.files.Remove(*previous)
	}
	s.audit.Log("screening_file_upload", map[string]interface{}{
		"screening_id": sc.ID.String(),
		"file":         name,
	}, actor)
	return sc, nil
}

// SheetFilePath resolves the stored sheet report for download.
func (s *Service) SheetFilePath(ctx context.Context, patientID uuid.UUID) (path, name string, err error) {
	sc, err := s.repo.GetByPatient(ctx, patientID)
	if err != nil {
		return "", "", err
	}
	if sc.StudyFile == nil {
		return "", "", errors.New("screening has no file")
	}
	path, err = s.files.Path(*sc.StudyFile)
	if err != nil {
		return "", "", err
	}
	return path, *sc.StudyFile, nil
}

// FollowupInput is the parsed followup form.
type FollowupInput struct {
	StudyType       string
	StudyCenter     string
	StudyNumber     string
	StudyDate       string
	Findings        string
	LungRADS        string
	NextControlDate string
}

func ParseFollowupForm(f forms.Values) FollowupInput {
	return FollowupInput{
		StudyType:       strings.TrimSpace(f.Get("study_type")),
		StudyCenter:     strings.TrimSpace(f.Get("study_center")),
		StudyNumber:     strings.TrimSpace(f.Get("study_number")),
		StudyDate:       strings.TrimSpace(f.Get("study_date")),
		Findings:        strings.TrimSpace(f.Get("findings")),
		LungRADS:        strings.TrimSpace(f.Get("lung_rads")),
		NextControlDate: strings.TrimSpace(f.Get("next_control_date")),
	}
}

// AddFollowup schedules a screening control and notifies the patient, the
// sheet's extra address, and the creator.
func (s *Service) AddFollowup(ctx context.Context, patientID uuid.UUID, in FollowupInput, creator *uuid.UUID, actor *audit.Actor) (*Followup, error) {
	if in.StudyType == "" || in.StudyDate == "" {
		return nil, ErrFollowupFields
	}
	sheet, err := s.GetOrCreate(ctx, patientID)
	if err != nil {
		return nil, err
	}
	fu := &Followup{
		ScreeningID:     sheet.Screening.ID,
		StudyType:       nilIfEmpty(in.StudyType),
		StudyCenter:     nilIfEmpty(in.StudyCenter),
		StudyNumber:     nilIfEmpty(in.StudyNumber),
		StudyDate:       nilIfEmpty(in.StudyDate),
		Findings:        nilIfEmpty(in.Findings),
		LungRADS:        nilIfEmpty(in.LungRADS),
		NextControlDate: nilIfEmpty(in.NextControlDate),
		Status:          StatusPending,
		CreatedByID:     creator,
		CreatedAt:       time.Now().UTC(),
	}
	if err := s.repo.CreateFollowup(ctx, fu); err != nil {
		return nil, err
	}

	s.notifyFollowup(ctx, patientID, sheet.Screening, fu)
	s.audit.Log("screening_followup_create", map[string]interface{}{
		"followup_id": fu.ID.String(),
		"patient_id":  patientID.String(),
	}, actor)
	return fu, nil
}

func (s *Service) notifyFollowup(ctx context.Context, patientID uuid.UUID, sc *Screening, fu *Followup) {
	if !s.mailer.Enabled() {
		return
	}
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return
	}
	var extra []string
	if sc.ExtraEmail != nil {
		extra = mail.SplitAddressList(*sc.ExtraEmail)
	}
	var creator []string
	if fu.CreatedByID != nil {
		if found, err := s.users.EmailsByIDs(ctx, []uuid.UUID{*fu.CreatedByID}); err == nil {
			creator = found
		}
	}
	var patientEmail []string
	if p.Email != nil {
		patientEmail = append(patientEmail, *p.Email)
	}
	to := mail.CollectEmails(patientEmail, extra, creator)
	if len(to) == 0 {
		return
	}

	subject := fmt.Sprintf("Control médico - %s", p.FullName)
	body := strings.Join([]string{
		fmt.Sprintf("Se programó un control de screening para el paciente: %s", p.FullName),
		fmt.Sprintf("Tipo de estudio: %s", orDefault(fu.StudyType, "Estudio")),
		fmt.Sprintf("Fecha del estudio: %s", orDefault(fu.StudyDate, "sin fecha")),
		fmt.Sprintf("Próximo control sugerido: %s", orDefault(fu.NextControlDate, "sin fecha")),
	}, "\n")
	s.mailer.Notify(ctx, to, subject, body)
}

// UpdateFollowup rewrites an existing control's fields.
func (s *Service) UpdateFollowup(ctx context.Context, id uuid.UUID, in FollowupInput, actor *audit.Actor) (*Followup, error) {
	fu, err := s.repo.GetFollowup(ctx, id)
	if err != nil {
		return nil, err
	}
	fu.StudyType = nilIfEmpty(in.StudyType)
	fu.StudyCenter = nilIfEmpty(in.StudyCenter)
	fu.StudyNumber = nilIfEmpty(in.StudyNumber)
	fu.StudyDate = nilIfEmpty(in.StudyDate)
	fu.Findings = nilIfEmpty(in.Findings)
	fu.LungRADS = nilIfEmpty(in.LungRADS)
	fu.NextControlDate = nilIfEmpty(in.NextControlDate)
	if err := s.repo.UpdateFollowup(ctx, fu); err != nil {
		return nil, err
	}
	s.audit.Log("screening_followup_update", map[string]interface{}{"followup_id": id.String()}, actor)
	return fu, nil
}

// DeleteFollowup removes a control and its attachment.
func (s *Service) DeleteFollowup(ctx context.Context, id uuid.UUID, actor *audit.Actor) error {
	fu, err := s.repo.GetFollowup(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteFollowup(ctx, id); err != nil {
		return err
	}
	if fu.FileName != nil {
		s.files.Remove(*fu.FileName)
	}
	s.audit.Log("screening_followup_delete", map[string]interface{}{"followup_id": id.String()}, actor)
	return nil
}

// CompleteFollowup closes a control. Only its creator may close it; a
// control without a recorded creator can be closed by anyone.
func (s *Service) CompleteFollowup(ctx context.Context, id uuid.UUID, userID *uuid.UUID, actor *audit.Actor) (*Followup, error) {
	fu, err := s.repo.GetFollowup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mayChange(fu.CreatedByID, userID) {
		return nil, ErrNotAllowed
	}
	now := time.Now().UTC()
	fu.Status = StatusDone
	fu.Completed = true
	fu.CompletedAt = &now
	if err := s.repo.UpdateFollowup(ctx, fu); err != nil {
		return nil, err
	}
	s.audit.Log("screening_followup_complete", map[string]interface{}{"followup_id": id.String()}, actor)
	return fu, nil
}

// ProgressFollowup marks a control as in progress.
func (s *Service) ProgressFollowup(ctx context.Context, id uuid.UUID, userID *uuid.UUID, actor *audit.Actor) (*Followup, error) {
	fu, err := s.repo.GetFollowup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mayChange(fu.CreatedByID, userID) {
		return nil, ErrNotAllowed
	}
	fu.Status = StatusInProgress
	fu.Completed = false
	fu.CompletedAt = nil
	if err := s.repo.UpdateFollowup(ctx, fu); err != nil {
		return nil, err
	}
	s.audit.Log("screening_followup_progress", map[string]interface{}{"followup_id": id.String()}, actor)
	return fu, nil
}

// AttachFollowupFile stores a control's attachment (PDF or image).
func (s *Service) AttachFollowupFile(ctx context.Context, id uuid.UUID, fh *multipart.FileHeader, actor *audit.Actor) (*Followup, error) {
	fu, err := s.repo.GetFollowup(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := s.files.SaveAttachment(fh, "screeningfu", id.String(), "")
	if err != nil {
		return nil, err
	}
	previous := fu.FileName
	fu.FileName = &name
	if err := s.repo.UpdateFollowup(ctx, fu); err != nil {
		s.files.Remove(name)
		return nil, err
	}
	if previous != nil && *previous != name {
		s.files.Remove(*previous)
	}
	s.audit.Log("screening_followup_file_upload", map[string]interface{}{
		"followup_id": id.String(),
		"file":        name,
	}, actor)
	return fu, nil
}

// FollowupFilePath resolves the stored attachment for download.
func (s *Service) FollowupFilePath(ctx context.Context, id uuid.UUID) (path, name string, err error) {
	fu, err := s.repo.GetFollowup(ctx, id)
	if err != nil {
		return "", "", err
	}
	if fu.FileName == nil {
		return "", "", errors.New("followup has no file")
	}
	path, err = s.files.Path(*fu.FileName)
	if err != nil {
		return "", "", err
	}
	return path, *fu.FileName, nil
}

// FollowupsDueOn lists the not-yet-done controls scheduled for a date,
// for the reminder batch.
func (s *Service) FollowupsDueOn(ctx context.Context, date string) ([]*Followup, error) {
	return s.repo.FollowupsDueOn(ctx, date)
}

// RemindersDueOn prepares one reminder message per screening sheet and
// per open followup whose next control falls on the given date.
func (s *Service) RemindersDueOn(ctx context.Context, date string) ([]mail.Message, error) {
	var messages []mail.Message

	sheets, err := s.repo.ScreeningsDueOn(ctx, date)
	if err != nil {
		return nil, err
	}
	for _, sc := range sheets {
		if msg, ok := s.dueMessage(ctx, sc, nil); ok {
			messages = append(messages, msg)
		}
	}

	followups, err := s.repo.FollowupsDueOn(ctx, date)
	if err != nil {
		return nil, err
	}
	for _, fu := range followups {
		sc, err := s.repo.GetScreening(ctx, fu.ScreeningID)
		if err != nil {
			continue
		}
		if msg, ok := s.dueMessage(ctx, sc, fu.CreatedByID); ok {
			messages = append(messages, msg)
		}
	}
	return messages, nil
}

// dueMessage builds the reminder for one sheet. The doctor is the
// followup's creator when given, otherwise the patient's creator.
func (s *Service) dueMessage(ctx context.Context, sc *Screening, followupCreator *uuid.UUID) (mail.Message, bool) {
	p, err := s.patients.Get(ctx, sc.PatientID)
	if err != nil {
		return mail.Message{}, false
	}
	doctorID := followupCreator
	if doctorID == nil {
		doctorID = p.CreatedByID
	}
	doctorName := "---"
	var doctorEmail []string
	if doctorID != nil {
		if u, err := s.users.Get(ctx, *doctorID); err == nil {
			doctorName = u.FullName
			if u.Email != "" {
				doctorEmail = append(doctorEmail, u.Email)
			}
		}
	}

	var patientEmail, extra []string
	if p.Email != nil {
		patientEmail = append(patientEmail, *p.Email)
	}
	if sc.ExtraEmail != nil {
		extra = mail.SplitAddressList(*sc.ExtraEmail)
	}
	to := mail.CollectEmails(patientEmail, extra, doctorEmail)
	if len(to) == 0 {
		return mail.Message{}, false
	}

	dni := "-"
	if p.DNI != nil && *p.DNI != "" {
		dni = *p.DNI
	}
	return mail.Message{
		To:      to,
		Subject: "CONTROL MEDICO",
		Body: fmt.Sprintf("Recordatorio paciente %s (DNI: %s).\nControl medico con doctor: %s",
			p.FullName, dni, doctorName),
	}, true
}

// PatientForScreening resolves the patient a screening sheet belongs to.
func (s *Service) PatientForScreening(ctx context.Context, screeningID uuid.UUID) (*patient.Patient, error) {
	sc, err := s.repo.GetScreening(ctx, screeningID)
	if err != nil {
		return nil, err
	}
	return s.patients.Get(ctx, sc.PatientID)
}

func mayChange(createdBy, userID *uuid.UUID) bool {
	if createdBy == nil {
		return true
	}
	return userID != nil && *userID == *createdBy
}

func nilIfEmpty(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func orDefault(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}
