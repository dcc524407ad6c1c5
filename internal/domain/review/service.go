package review

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
	"github.com/comitetoraxvm/comite-torax/internal/platform/listcodec"
	"github.com/comitetoraxvm/comite-torax/internal/platform/mail"
)

// ErrNoRecipients rejects a review without anyone to send it to.
var ErrNoRecipients = errors.New("at least one recipient is required")

// ErrEmptyComment rejects a blank comment.
var ErrEmptyComment = errors.New("comment message is required")

// ErrNotAllowed rejects an action the user has no part in.
var ErrNotAllowed = errors.New("not allowed")

// PatientSource resolves patient names for notifications.
type PatientSource interface {
	Get(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// UserDirectory resolves reviewer names and addresses.
type UserDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	EmailsByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error)
}

type Service struct {
	repo     Repository
	patients PatientSource
	users    UserDirectory
	mailer   *mail.Dispatcher
	audit    *audit.Logger
}

func NewService(repo Repository, patients PatientSource, users UserDirectory,
	mailer *mail.Dispatcher, auditLog *audit.Logger) *Service {
	return &Service{repo: repo, patients: patients, users: users, mailer: mailer, audit: auditLog}
}

// Request opens a review addressed to the given colleagues and notifies
// them by email.
func (s *Service) Request(ctx context.Context, patientID uuid.UUID, consultationID, studyID *uuid.UUID,
	recipients []uuid.UUID, message *string, creator uuid.UUID) (*Request, error) {
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}
	encoded := make([]string, 0, len(recipients))
	for _, id := range recipients {
		encoded = append(encoded, id.String())
	}
	rr := &Request{
		PatientID:      patientID,
		ConsultationID: consultationID,
		StudyID:        studyID,
		CreatedByID:    creator,
		Recipients:     listcodec.Encode(encoded),
		Message:        message,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, rr); err != nil {
		return nil, err
	}

	s.notifyRequest(ctx, rr)
	s.audit.Log("review_request_create", map[string]interface{}{
		"review_id":  rr.ID.String(),
		"patient_id": patientID.String(),
		"recipients": encoded,
	}, &audit.Actor{ID: creator.String()})
	return rr, nil
}

// threadParticipants is everyone on a review thread: the recipients plus
// the creator, deduplicated in that order.
func threadParticipants(rr *Request) []uuid.UUID {
	ids := append(rr.RecipientIDs(), rr.CreatedByID)
	seen := map[uuid.UUID]bool{}
	unique := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	return unique
}

func (s *Service) notifyRequest(ctx context.Context, rr *Request) {
	if !s.mailer.Enabled() {
		return
	}
	// The creator is copied so the requesting doctor keeps the thread
	// in their own inbox too.
	to, err := s.users.EmailsByIDs(ctx, threadParticipants(rr))
	if err != nil || len(to) == 0 {
		return
	}

	patientName := "Paciente"
	if p, err := s.patients.Get(ctx, rr.PatientID); err == nil {
		patientName = p.FullName
	}
	requester := "Otro médico"
	if u, err := s.users.Get(ctx, rr.CreatedByID); err == nil {
		requester = u.FullName
	}
	lines := []string{
		fmt.Sprintf("%s solicitó revisión del paciente: %s", requester, patientName),
		fmt.Sprintf("ID de revisión: %s", rr.ID),
	}
	if rr.Message != nil && *rr.Message != "" {
		lines = append(lines, "", "Mensaje:", *rr.Message)
	}
	s.mailer.Notify(ctx, to, fmt.Sprintf("Nueva revisión - %s", patientName), strings.Join(lines, "\n"))
}

// Inbox lists the reviews the user is a recipient of or created.
func (s *Service) Inbox(ctx context.Context, userID uuid.UUID) ([]*Request, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []*Request
	for _, rr := range all {
		if rr.IsRecipient(userID) || rr.CreatedByID == userID {
			out = append(out, rr)
		}
	}
	return out, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Request, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Comments(ctx context.Context, reviewID uuid.UUID) ([]*Comment, error) {
	return s.repo.ListComments(ctx, reviewID)
}

// Resolve closes a review. Only a recipient may resolve.
func (s *Service) Resolve(ctx context.Context, id, userID uuid.UUID, actor *audit.Actor) (*Request, error) {
	rr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rr.IsRecipient(userID) {
		return nil, ErrNotAllowed
	}
	now := time.Now().UTC()
	rr.Status = StatusResolved
	rr.ResolvedAt = &now
	if err := s.repo.Update(ctx, rr); err != nil {
		return nil, err
	}
	s.audit.Log("review_request_resolved", map[string]interface{}{"review_id": id.String()}, actor)
	return rr, nil
}

// Progress marks a review as being worked on. Recipients and the creator
// may do this.
func (s *Service) Progress(ctx context.Context, id, userID uuid.UUID, actor *audit.Actor) (*Request, error) {
	rr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rr.IsRecipient(userID) && rr.CreatedByID != userID {
		return nil, ErrNotAllowed
	}
	rr.Status = StatusInProgress
	if err := s.repo.Update(ctx, rr); err != nil {
		return nil, err
	}
	s.audit.Log("review_request_progress", map[string]interface{}{"review_id": id.String()}, actor)
	return rr, nil
}

// AddComment appends to the review thread and notifies the recipients and
// the creator. Recipients and the creator may comment.
func (s *Service) AddComment(ctx context.Context, reviewID, userID uuid.UUID, message string, actor *audit.Actor) (*Comment, error) {
	rr, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !rr.IsRecipient(userID) && rr.CreatedByID != userID {
		return nil, ErrNotAllowed
	}
	text := strings.TrimSpace(message)
	if text == "" {
		return nil, ErrEmptyComment
	}
	cm := &Comment{
		ReviewID:  reviewID,
		UserID:    userID,
		Message:   text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateComment(ctx, cm); err != nil {
		return nil, err
	}

	s.notifyComment(ctx, rr, cm)
	s.audit.Log("review_comment_add", map[string]interface{}{
		"review_id": reviewID.String(),
		"user_id":   userID.String(),
	}, actor)
	return cm, nil
}

func (s *Service) notifyComment(ctx context.Context, rr *Request, cm *Comment) {
	if !s.mailer.Enabled() {
		return
	}
	to, err := s.users.EmailsByIDs(ctx, threadParticipants(rr))
	if err != nil || len(to) == 0 {
		return
	}

	patientName := "Paciente"
	if p, err := s.patients.Get(ctx, rr.PatientID); err == nil {
		patientName = p.FullName
	}
	author := "Un colega"
	if u, err := s.users.Get(ctx, cm.UserID); err == nil {
		author = u.FullName
	}
	body := strings.Join([]string{
		fmt.Sprintf("Nuevo comentario en la revisión del paciente: %s", patientName),
		fmt.Sprintf("Autor: %s", author),
		fmt.Sprintf("Comentario: %s", cm.Message),
	}, "\n")
	s.mailer.Notify(ctx, to, fmt.Sprintf("Comentario en revisión - %s", patientName), body)
}

// EditComment rewrites a comment. The author and the review's creator may
// edit.
func (s *Service) EditComment(ctx context.Context, commentID, userID uuid.UUID, message string, actor *audit.Actor) (*Comment, error) {
	cm, rr, err := s.commentWithReview(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if cm.UserID != userID && rr.CreatedByID != userID {
		return nil, ErrNotAllowed
	}
	text := strings.TrimSpace(message)
	if text == "" {
		return nil, ErrEmptyComment
	}
	cm.Message = text
	if err := s.repo.UpdateComment(ctx, cm); err != nil {
		return nil, err
	}
	s.audit.Log("review_comment_edit", map[string]interface{}{"comment_id": commentID.String()}, actor)
	return cm, nil
}

// DeleteComment removes a comment under the same permission rule as edits.
func (s *Service) DeleteComment(ctx context.Context, commentID, userID uuid.UUID, actor *audit.Actor) error {
	cm, rr, err := s.commentWithReview(ctx, commentID)
	if err != nil {
		return err
	}
	if cm.UserID != userID && rr.CreatedByID != userID {
		return ErrNotAllowed
	}
	if err := s.repo.DeleteComment(ctx, commentID); err != nil {
		return err
	}
	s.audit.Log("review_comment_delete", map[string]interface{}{"comment_id": commentID.String()}, actor)
	return nil
}

func (s *Service) commentWithReview(ctx context.Context, commentID uuid.UUID) (*Comment, *Request, error) {
	cm, err := s.repo.GetComment(ctx, commentID)
	if err != nil {
		return nil, nil, err
	}
	rr, err := s.repo.GetByID(ctx, cm.ReviewID)
	if err != nil {
		return nil, nil, err
	}
	return cm, rr, nil
}
