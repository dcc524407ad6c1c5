package user

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/auth"
)

type mockUserRepo struct {
	items map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{items: make(map[uuid.UUID]*User)}
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.items[u.ID] = u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return u, nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range m.items {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.items {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockUserRepo) Update(_ context.Context, u *User) error {
	m.items[u.ID] = u
	return nil
}

func (m *mockUserRepo) ListByStatus(_ context.Context, status string) ([]*User, error) {
	var out []*User
	for _, u := range m.items {
		if u.Status == status {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUserRepo) ListApproved(ctx context.Context) ([]*User, error) {
	return m.ListByStatus(ctx, StatusApproved)
}

func (m *mockUserRepo) EmailsByIDs(_ context.Context, ids []uuid.UUID) ([]string, error) {
	var out []string
	for _, id := range ids {
		if u, ok := m.items[id]; ok && u.Email != "" {
			out = append(out, u.Email)
		}
	}
	return out, nil
}

func testAudit(t *testing.T) *audit.Logger {
	t.Helper()
	return audit.NewLogger(filepath.Join(t.TempDir(), "audit.log"), zerolog.Nop())
}

func newTestService(t *testing.T) (*Service, *mockUserRepo) {
	repo := newMockUserRepo()
	return NewService(repo, testAudit(t), []byte("test-secret")), repo
}

const strongPassword = "Str0ng!Pass#1"

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		FullName:        "Dra. Ana Perez",
		Email:           "ana@example.com",
		Username:        "aperez",
		Password:        strongPassword,
		PasswordConfirm: strongPassword,
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Status != StatusPending {
		t.Errorf("status = %q, want pending", u.Status)
	}
	if u.Role != auth.RoleMedico {
		t.Errorf("role = %q, want medico", u.Role)
	}

	// login blocked until approved
	if _, _, err := svc.Login(ctx, "aperez", strongPassword); !errors.Is(err, ErrNotApproved) {
		t.Errorf("pending login err = %v, want ErrNotApproved", err)
	}

	if _, err := svc.Approve(ctx, u.ID, nil); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	got, token, err := svc.Login(ctx, "aperez", strongPassword)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" {
		t.Error("expected token")
	}
	if got.ID != u.ID {
		t.Error("login returned wrong user")
	}

	if _, _, err := svc.Login(ctx, "aperez", "WrongPass1!x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("bad password err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{FullName: "X", Email: "x@x.com", Username: "x", Password: "short", PasswordConfirm: "short"}); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password err = %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{FullName: "X", Email: "x@x.com", Username: "x", Password: strongPassword, PasswordConfirm: "other"}); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("mismatch err = %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{}); err == nil {
		t.Error("expected error for missing fields")
	}

	in := RegisterInput{FullName: "X", Email: "x@x.com", Username: "dup", Password: strongPassword, PasswordConfirm: strongPassword}
	if _, err := svc.Register(ctx, in); err != nil {
		t.Fatal(err)
	}
	in.Email = "other@x.com"
	if _, err := svc.Register(ctx, in); err == nil {
		t.Error("expected duplicate username error")
	}
}

func TestChangePassword(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	hash, _ := auth.HashPassword(strongPassword)
	u := &User{FullName: "X", Email: "x@x.com", Username: "x", PasswordHash: hash, Role: auth.RoleMedico, Status: StatusApproved}
	repo.Create(ctx, u)

	if err := svc.ChangePassword(ctx, u.ID, "wrong", "NewPass!234A", "NewPass!234A"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong current err = %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, strongPassword, "weak", "weak"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak new err = %v", err)
	}
	if err := svc.ChangePassword(ctx, u.ID, strongPassword, "NewPass!234A", "NewPass!234A"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if !auth.CheckPassword(repo.items[u.ID].PasswordHash, "NewPass!234A") {
		t.Error("password was not updated")
	}
}

func TestEnsureSeedAdmin(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	if err := svc.EnsureSeedAdmin(ctx, "", "Adm1n!Pass#99", "admin@example.com"); err != nil {
		t.Fatalf("EnsureSeedAdmin: %v", err)
	}
	admin, err := repo.GetByUsername(ctx, "admin")
	if err != nil {
		t.Fatal("seed admin not created")
	}
	if admin.Role != auth.RoleAdmin || admin.Status != StatusApproved {
		t.Errorf("seed admin role/status = %s/%s", admin.Role, admin.Status)
	}

	// idempotent
	if err := svc.EnsureSeedAdmin(ctx, "", "Other!Pass#99", ""); err != nil {
		t.Fatal(err)
	}
	if len(repo.items) != 1 {
		t.Errorf("expected 1 user after second run, got %d", len(repo.items))
	}
}
