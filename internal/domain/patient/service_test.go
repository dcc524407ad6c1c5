package patient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/forms"
	"github.com/comitetoraxvm/comite-torax/internal/platform/uploads"
)

type mockPatientRepo struct {
	items map[uuid.UUID]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{items: make(map[uuid.UUID]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	m.items[p.ID] = p
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatientRepo) GetByDNI(_ context.Context, dni string) (*Patient, error) {
	for _, p := range m.items {
		if p.DNI != nil && *p.DNI == dni {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.items[p.ID]; !ok {
		return fmt.Errorf("not found")
	}
	m.items[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, _ string) ([]*Patient, error) {
	var out []*Patient
	for _, p := range m.items {
		out = append(out, p)
	}
	return out, nil
}

func mustUUID(t *testing.T) uuid.UUID {
	t.Helper()
	return uuid.New()
}

func newTestService(t *testing.T) (*Service, *mockPatientRepo) {
	t.Helper()
	repo := newMockPatientRepo()
	store, err := uploads.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	auditLog := audit.NewLogger(filepath.Join(t.TempDir(), "audit.log"), zerolog.Nop())
	return NewService(repo, store, auditLog), repo
}

func validForm(dni string) forms.Values {
	return forms.FromURLValues(url.Values{
		"full_name":     {"Maria Lopez"},
		"dni":           {dni},
		"email":         {"maria@example.com"},
		"consent_given": {"on"},
	})
}

func TestCreateRequiresFields(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateFromForm(context.Background(), forms.FromURLValues(url.Values{}), nil, nil)
	var val *ErrValidation
	if !errors.As(err, &val) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(val.Missing) != 4 {
		t.Errorf("missing = %v, want 4 fields", val.Missing)
	}
}

func TestCreateDuplicateDNI(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateFromForm(ctx, validForm("30111222"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.CreateFromForm(ctx, validForm("30111222"), nil, nil)
	var dup *ErrDuplicateDNI
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want ErrDuplicateDNI", err)
	}
	if dup.ExistingID != first.ID {
		t.Errorf("existing id = %s, want %s", dup.ExistingID, first.ID)
	}
	if len(repo.items) != 1 {
		t.Errorf("expected no second row, have %d", len(repo.items))
	}
}

func TestUpdatePreservesCreator(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	creator := mustUUID(t)
	editor := mustUUID(t)

	p, err := svc.CreateFromForm(ctx, validForm("28999888"), &creator, nil)
	if err != nil {
		t.Fatal(err)
	}

	updated, err := svc.UpdateFromForm(ctx, p.ID, validForm("28999888"), &editor, nil)
	if err != nil {
		t.Fatal(err)
	}
	if updated.CreatedByID == nil || *updated.CreatedByID != creator {
		t.Error("creator changed on update")
	}
	if updated.UpdatedByID == nil || *updated.UpdatedByID != editor {
		t.Error("editor not recorded")
	}
	if got := repo.items[p.ID]; got.UpdatedAt == nil {
		t.Error("updated_at not persisted")
	}
}

func TestUpdateToTakenDNIRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateFromForm(ctx, validForm("11111111"), nil, nil); err != nil {
		t.Fatal(err)
	}
	second, err := svc.CreateFromForm(ctx, validForm("22222222"), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.UpdateFromForm(ctx, second.ID, validForm("11111111"), nil, nil)
	var dup *ErrDuplicateDNI
	if !errors.As(err, &dup) {
		t.Fatalf("err = %v, want ErrDuplicateDNI", err)
	}
}
