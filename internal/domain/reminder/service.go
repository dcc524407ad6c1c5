package reminder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/comitetoraxvm/comite-torax/internal/domain/patient"
	"github.com/comitetoraxvm/comite-torax/internal/domain/user"
	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/mail"
)

// ErrDateRequired rejects a reminder without a control date.
var ErrDateRequired = errors.New("control date is required")

// ErrNotAllowed rejects a status change by someone other than the
// reminder's creator.
var ErrNotAllowed = errors.New("not allowed")

// PatientSource resolves the patient a reminder points at.
type PatientSource interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// UserDirectory resolves user names and addresses for notifications.
type UserDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	EmailsByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error)
}

// NoticeSource contributes extra due-date messages to the daily batch.
// The screening service feeds its sheet and followup controls through
// this.
type NoticeSource interface {
	RemindersDueOn(ctx context.Context, date string) ([]mail.Message, error)
}

type Service struct {
	repo     Repository
	patients PatientSource
	users    UserDirectory
	sources  []NoticeSource
	mailer   *mail.Dispatcher
	audit    *audit.Logger
}

func NewService(repo Repository, patients PatientSource, users UserDirectory,
	mailer *mail.Dispatcher, auditLog *audit.Logger, sources ...NoticeSource) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		users:    users,
		sources:  sources,
		mailer:   mailer,
		audit:    auditLog,
	}
}

// Schedule creates a control reminder and notifies the patient, the extra
// addresses, and the creator.
func (s *Service) Schedule(ctx context.Context, patientID uuid.UUID, consultationID *uuid.UUID,
	date string, extraEmails *string, creator *uuid.UUID) error {
	if date == "" {
		return ErrDateRequired
	}
	cr := &ControlReminder{
		PatientID:      patientID,
		ConsultationID: consultationID,
		ControlDate:    &date,
		ExtraEmails:    extraEmails,
		Status:         StatusPending,
		CreatedByID:    creator,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, cr); err != nil {
		return err
	}

	s.notifyScheduled(ctx, cr)
	s.audit.Log("control_reminder_create", map[string]interface{}{
		"reminder_id": cr.ID.String(),
		"patient_id":  patientID.String(),
		"date":        date,
	}, nil)
	return nil
}

func (s *Service) notifyScheduled(ctx context.Context, cr *ControlReminder) {
	if !s.mailer.Enabled() {
		return
	}
	p, err := s.patients.Get(ctx, cr.PatientID)
	if err != nil {
		return
	}
	var patientEmail, extra, creator []string
	if p.Email != nil {
		patientEmail = append(patientEmail, *p.Email)
	}
	if cr.ExtraEmails != nil {
		extra = mail.SplitAddressList(*cr.ExtraEmails)
	}
	if cr.CreatedByID != nil {
		if found, err := s.users.EmailsByIDs(ctx, []uuid.UUID{*cr.CreatedByID}); err == nil {
			creator = found
		}
	}
	to := mail.CollectEmails(patientEmail, extra, creator)
	if len(to) == 0 {
		return
	}

	date := "sin fecha"
	if cr.ControlDate != nil && *cr.ControlDate != "" {
		date = *cr.ControlDate
	}
	lines := []string{
		fmt.Sprintf("Se solicitó un control para el paciente: %s", p.FullName),
		fmt.Sprintf("Fecha de control: %s", date),
	}
	if cr.ConsultationID != nil {
		lines = append(lines, fmt.Sprintf("Consulta ID: %s", cr.ConsultationID))
	}
	s.mailer.Notify(ctx, to, fmt.Sprintf("Control médico - %s", p.FullName), strings.Join(lines, "\n"))
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*ControlReminder, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// Open lists the dated, not-done reminders the user created or whose
// patient the user registered, for the inbox.
func (s *Service) Open(ctx context.Context, userID uuid.UUID) ([]*ControlReminder, error) {
	all, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	var out []*ControlReminder
	for _, cr := range all {
		if cr.CreatedByID != nil && *cr.CreatedByID == userID {
			out = append(out, cr)
			continue
		}
		if p, err := s.patients.Get(ctx, cr.PatientID); err == nil &&
			p.CreatedByID != nil && *p.CreatedByID == userID {
			out = append(out, cr)
		}
	}
	return out, nil
}

// Complete closes a reminder. Only its creator may close it; a reminder
// without a recorded creator can be closed by anyone.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, userID *uuid.UUID, actor *audit.Actor) (*ControlReminder, error) {
	cr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mayChange(cr.CreatedByID, userID) {
		return nil, ErrNotAllowed
	}
	now := time.Now().UTC()
	cr.Status = StatusDone
	cr.Completed = true
	cr.CompletedAt = &now
	if err := s.repo.Update(ctx, cr); err != nil {
		return nil, err
	}
	s.audit.Log("control_reminder_complete", map[string]interface{}{"reminder_id": id.String()}, actor)
	return cr, nil
}

// Progress marks a reminder as being worked on.
func (s *Service) Progress(ctx context.Context, id uuid.UUID, userID *uuid.UUID, actor *audit.Actor) (*ControlReminder, error) {
	cr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !mayChange(cr.CreatedByID, userID) {
		return nil, ErrNotAllowed
	}
	cr.Status = StatusInProgress
	cr.Completed = false
	cr.CompletedAt = nil
	if err := s.repo.Update(ctx, cr); err != nil {
		return nil, err
	}
	s.audit.Log("control_reminder_progress", map[string]interface{}{"reminder_id": id.String()}, actor)
	return cr, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor *audit.Actor) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.audit.Log("control_reminder_delete", map[string]interface{}{"reminder_id": id.String()}, actor)
	return nil
}

// SendDueOn emails one reminder per open control scheduled for the given
// date, including the notices contributed by other sources. Each send is
// best-effort; the count of dispatched messages is returned.
func (s *Service) SendDueOn(ctx context.Context, date string) (int, error) {
	due, err := s.repo.DueOn(ctx, date)
	if err != nil {
		return 0, err
	}
	var messages []mail.Message
	for _, cr := range due {
		if msg, ok := s.dueMessage(ctx, cr); ok {
			messages = append(messages, msg)
		}
	}
	for _, src := range s.sources {
		extra, err := src.RemindersDueOn(ctx, date)
		if err != nil {
			return 0, err
		}
		messages = append(messages, extra...)
	}

	for _, msg := range messages {
		s.mailer.Notify(ctx, msg.To, msg.Subject, msg.Body)
	}
	s.audit.Log("reminders_batch", map[string]interface{}{
		"date": date,
		"sent": len(messages),
	}, nil)
	return len(messages), nil
}

// dueMessage builds the batch email for one reminder. The doctor is the
// reminder's creator when recorded, otherwise the patient's creator.
func (s *Service) dueMessage(ctx context.Context, cr *ControlReminder) (mail.Message, bool) {
	p, err := s.patients.Get(ctx, cr.PatientID)
	if err != nil {
		return mail.Message{}, false
	}
	doctorID := cr.CreatedByID
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
	if cr.ExtraEmails != nil {
		extra = mail.SplitAddressList(*cr.ExtraEmails)
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

func mayChange(createdBy, userID *uuid.UUID) bool {
	if createdBy == nil {
		return true
	}
	return userID != nil && *userID == *createdBy
}
