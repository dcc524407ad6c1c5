package resource

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"

	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/uploads"
)

// ErrTitleRequired rejects a resource without a title.
var ErrTitleRequired = errors.New("title is required")

// ErrNoFile is returned when downloading a resource with no attachment.
var ErrNoFile = errors.New("resource has no attached file")

type Service struct {
	repo  Repository
	files *uploads.Store
	audit *audit.Logger
}

func NewService(repo Repository, files *uploads.Store, auditLog *audit.Logger) *Service {
	return &Service{repo: repo, files: files, audit: auditLog}
}

// Input carries the resource form fields; the attachment travels apart.
type Input struct {
	Title string
	URL   *string
	Notes *string
}

func (s *Service) List(ctx context.Context) ([]*Resource, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a resource, saving the attachment first so a rejected
// file never leaves a half-created record.
func (s *Service) Create(ctx context.Context, in Input, fh *multipart.FileHeader, creator *uuid.UUID, actor *audit.Actor) (*Resource, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	r := &Resource{
		Title:       title,
		URL:         trimmed(in.URL),
		Notes:       trimmed(in.Notes),
		CreatedByID: creator,
	}
	if fh != nil {
		name, err := s.files.SaveAttachment(fh, "medres", title, "")
		if err != nil {
			return nil, err
		}
		r.FileName = &name
	}
	if err := s.repo.Create(ctx, r); err != nil {
		if r.FileName != nil {
			s.files.Remove(*r.FileName)
		}
		return nil, err
	}
	s.audit.Log("medical_resource_create", map[string]interface{}{
		"resource_id": r.ID.String(),
		"title":       r.Title,
	}, actor)
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID, actor *audit.Actor) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if r.FileName != nil {
		s.files.Remove(*r.FileName)
	}
	s.audit.Log("medical_resource_delete", map[string]interface{}{
		"resource_id": id.String(),
	}, actor)
	return nil
}

// FilePath resolves the attachment of a resource for download, returning
// the on-disk path and the name to serve it under.
func (s *Service) FilePath(ctx context.Context, id uuid.UUID) (string, string, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	if r.FileName == nil {
		return "", "", ErrNoFile
	}
	path, err := s.files.Path(*r.FileName)
	if err != nil {
		return "", "", err
	}
	return path, *r.FileName, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
