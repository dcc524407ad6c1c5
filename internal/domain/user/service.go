package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/auth"
)

var (
	ErrWeakPassword       = errors.New("password does not meet strength requirements")
	ErrPasswordMismatch   = errors.New("password confirmation does not match")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotApproved        = errors.New("account pending approval")
)

type Service struct {
	repo   Repository
	audit  *audit.Logger
	secret []byte
}

func NewService(repo Repository, auditLog *audit.Logger, secret []byte) *Service {
	return &Service{repo: repo, audit: auditLog, secret: secret}
}

// RegisterInput carries the sign-up form fields.
type RegisterInput struct {
	FullName        string
	Specialty       string
	Email           string
	Username        string
	Password        string
	PasswordConfirm string
}

// Register creates a pending account. The first administrator must approve
// it before login is possible.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if in.FullName == "" || in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("full_name, email, username and password are required")
	}
	if in.Password != in.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	if !auth.PasswordIsStrong(in.Password) {
		return nil, ErrWeakPassword
	}
	if existing, err := s.repo.GetByUsername(ctx, in.Username); err == nil && existing != nil {
		return nil, fmt.Errorf("username %q already taken", in.Username)
	}
	if existing, err := s.repo.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("email %q already registered", in.Email)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		FullName:     in.FullName,
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         auth.RoleMedico,
		Status:       StatusPending,
	}
	if sp := strings.TrimSpace(in.Specialty); sp != "" {
		u.Specialty = &sp
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.audit.Log("user_register", map[string]interface{}{"user_id": u.ID.String(), "username": u.Username}, nil)
	return u, nil
}

// Login verifies credentials and issues a session token for approved
// accounts.
func (s *Service) Login(ctx context.Context, username, password string) (*User, string, error) {
	u, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, "", ErrInvalidCredentials
	}
	if !u.IsApproved() {
		return nil, "", ErrNotApproved
	}
	token, err := auth.IssueToken(s.secret, u.ID.String(), u.Role, u.FullName)
	if err != nil {
		return nil, "", err
	}
	s.audit.Log("user_login", map[string]interface{}{"user_id": u.ID.String()},
		&audit.Actor{ID: u.ID.String(), Name: u.FullName})
	return u, token, nil
}

// Approve marks a pending account as approved.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, actor *audit.Actor) (*User, error) {
	return s.setStatus(ctx, id, StatusApproved, "user_approve", actor)
}

// Reject marks a pending account as rejected.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, actor *audit.Actor) (*User, error) {
	return s.setStatus(ctx, id, StatusRejected, "user_reject", actor)
}

func (s *Service) setStatus(ctx context.Context, id uuid.UUID, status, action string, actor *audit.Actor) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Status = status
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	s.audit.Log(action, map[string]interface{}{"user_id": u.ID.String()}, actor)
	return u, nil
}

// ChangePassword replaces the caller's password after verifying the
// current one.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next, confirm string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(u.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	if next != confirm {
		return ErrPasswordMismatch
	}
	if !auth.PasswordIsStrong(next) {
		return ErrWeakPassword
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return s.repo.Update(ctx, u)
}

// ListPending returns accounts awaiting approval.
func (s *Service) ListPending(ctx context.Context) ([]*User, error) {
	return s.repo.ListByStatus(ctx, StatusPending)
}

// ListApproved returns active accounts, used to populate review-recipient
// selectors.
func (s *Service) ListApproved(ctx context.Context) ([]*User, error) {
	return s.repo.ListApproved(ctx)
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// EmailsByIDs resolves user ids to their notification addresses.
func (s *Service) EmailsByIDs(ctx context.Context, ids []uuid.UUID) ([]string, error) {
	return s.repo.EmailsByIDs(ctx, ids)
}

// EnsureSeedAdmin creates the bootstrap administrator account when no user
// with the admin username exists. Runs once at startup, before the server
// accepts connections.
func (s *Service) EnsureSeedAdmin(ctx context.Context, username, password, email string) error {
	if username == "" {
		username = "admin"
	}
	if _, err := s.repo.GetByUsername(ctx, username); err == nil {
		return nil
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u := &User{
		FullName:     "Administrador",
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		Status:       StatusApproved,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return err
	}
	log.Info().Str("username", username).Msg("seed admin account created")
	s.audit.Log("seed_admin_created", map[string]interface{}{"username": username}, nil)
	return nil
}
