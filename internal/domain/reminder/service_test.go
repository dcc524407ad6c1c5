package reminder

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/comitetoraxvm/comite-torax/internal/domain/patient"
	"github.com/comitetoraxvm/comite-torax/internal/domain/user"
	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/mail"
)

type mockReminderRepo struct {
	items map[uuid.UUID]*ControlReminder
}

func newMockReminderRepo() *mockReminderRepo {
	return &mockReminderRepo{items: make(map[uuid.UUID]*ControlReminder)}
}

func (m *mockReminderRepo) Create(_ context.Context, cr *ControlReminder) error {
	cr.ID = uuid.New()
	m.items[cr.ID] = cr
	return nil
}

func (m *mockReminderRepo) GetByID(_ context.Context, id uuid.UUID) (*ControlReminder, error) {
	cr, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *cr
	return &cp, nil
}

func (m *mockReminderRepo) Update(_ context.Context, cr *ControlReminder) error {
	if _, ok := m.items[cr.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *cr
	m.items[cr.ID] = &cp
	return nil
}

func (m *mockReminderRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockReminderRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*ControlReminder, error) {
	var out []*ControlReminder
	for _, cr := range m.items {
		if cr.PatientID == patientID {
			out = append(out, cr)
		}
	}
	return out, nil
}

func (m *mockReminderRepo) ListOpen(_ context.Context) ([]*ControlReminder, error) {
	var out []*ControlReminder
	for _, cr := range m.items {
		if cr.Status != StatusDone && cr.ControlDate != nil {
			out = append(out, cr)
		}
	}
	return out, nil
}

func (m *mockReminderRepo) DueOn(_ context.Context, date string) ([]*ControlReminder, error) {
	var out []*ControlReminder
	for _, cr := range m.items {
		if cr.ControlDate != nil && *cr.ControlDate == date && !cr.Completed {
			out = append(out, cr)
		}
	}
	return out, nil
}

type mockPatients struct {
	items map[uuid.UUID]*patient.Patient
}

func (m *mockPatients) Get(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return p, nil
}

type mockUsers struct {
	items map[uuid.UUID]*user.User
}

func (m *mockUsers) Get(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m *mockUsers) EmailsByIDs(_ context.Context, ids []uuid.UUID) ([]string, error) {
	var out []string
	for _, id := range ids {
		if u, ok := m.items[id]; ok && u.Email != "" {
			out = append(out, u.Email)
		}
	}
	return out, nil
}

type staticSource struct {
	messages []mail.Message
}

func (s *staticSource) RemindersDueOn(_ context.Context, _ string) ([]mail.Message, error) {
	return s.messages, nil
}

type fixture struct {
	svc       *Service
	repo      *mockReminderRepo
	sender    *mail.MockSender
	patientID uuid.UUID
	creator   uuid.UUID
}

func newFixture(t *testing.T, sources ...NoticeSource) *fixture {
	t.Helper()
	email := "paciente@example.org"
	dni := "28999111"
	creator := &user.User{ID: uuid.New(), FullName: "Dr. Medico", Email: "medico@example.org"}
	p := &patient.Patient{
		ID:          uuid.New(),
		FullName:    "Juan Perez",
		DNI:         &dni,
		Email:       &email,
		CreatedByID: &creator.ID,
	}
	repo := newMockReminderRepo()
	sender := &mail.MockSender{}
	svc := NewService(repo,
		&mockPatients{items: map[uuid.UUID]*patient.Patient{p.ID: p}},
		&mockUsers{items: map[uuid.UUID]*user.User{creator.ID: creator}},
		mail.NewDispatcher(sender, nil),
		audit.NewLogger(filepath.Join(t.TempDir(), "audit.log"), zerolog.Nop()),
		sources...)
	return &fixture{svc: svc, repo: repo, sender: sender, patientID: p.ID, creator: creator.ID}
}

func TestScheduleRequiresDate(t *testing.T) {
	f := newFixture(t)
	err := f.svc.Schedule(context.Background(), f.patientID, nil, "", nil, nil)
	if !errors.Is(err, ErrDateRequired) {
		t.Fatalf("err = %v, want ErrDateRequired", err)
	}
}

func TestScheduleNotifies(t *testing.T) {
	f := newFixture(t)
	extra := "comite@example.org, otro@example.org"
	if err := f.svc.Schedule(context.Background(), f.patientID, nil, "2026-12-01", &extra, &f.creator); err != nil {
		t.Fatal(err)
	}

	calls := f.sender.Calls()
	if len(calls) != 1 {
		t.Fatalf("sends = %d, want 1", len(calls))
	}
	if calls[0].Subject != "Control médico - Juan Perez" {
		t.Errorf("subject = %q", calls[0].Subject)
	}
	want := []string{"paciente@example.org", "comite@example.org", "otro@example.org", "medico@example.org"}
	if len(calls[0].To) != len(want) {
		t.Fatalf("recipients = %v, want %v", calls[0].To, want)
	}
	for i, addr := range want {
		if calls[0].To[i] != addr {
			t.Errorf("recipient %d = %q, want %q", i, calls[0].To[i], addr)
		}
	}
	if !strings.Contains(calls[0].Body, "Fecha de control: 2026-12-01") {
		t.Errorf("body = %q", calls[0].Body)
	}
}

func TestCompleteMirrorsStatus(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.Schedule(context.Background(), f.patientID, nil, "2026-12-01", nil, &f.creator); err != nil {
		t.Fatal(err)
	}
	var id uuid.UUID
	for k := range f.repo.items {
		id = k
	}

	other := uuid.New()
	if _, err := f.svc.Complete(context.Background(), id, &other, nil); !errors.Is(err, ErrNotAllowed) {
		t.Fatalf("stranger complete err = %v, want ErrNotAllowed", err)
	}

	done, err := f.svc.Complete(context.Background(), id, &f.creator, nil)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != StatusDone || !done.Completed || done.CompletedAt == nil {
		t.Errorf("completion state = %+v", done)
	}

	back, err := f.svc.Progress(context.Background(), id, &f.creator, nil)
	if err != nil {
		t.Fatal(err)
	}
	if back.Status != StatusInProgress || back.Completed || back.CompletedAt != nil {
		t.Errorf("progress state = %+v", back)
	}
}

func TestCompleteWithoutCreator(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.Schedule(context.Background(), f.patientID, nil, "2026-12-01", nil, nil); err != nil {
		t.Fatal(err)
	}
	var id uuid.UUID
	for k := range f.repo.items {
		id = k
	}
	someone := uuid.New()
	if _, err := f.svc.Complete(context.Background(), id, &someone, nil); err != nil {
		t.Fatalf("reminder without creator should be closable by anyone: %v", err)
	}
}

func TestSendDueOn(t *testing.T) {
	extraNotice := mail.Message{
		To:      []string{"screening@example.org"},
		Subject: "CONTROL MEDICO",
		Body:    "Recordatorio screening",
	}
	f := newFixture(t, &staticSource{messages: []mail.Message{extraNotice}})

	if err := f.svc.Schedule(context.Background(), f.patientID, nil, "2026-12-01", nil, &f.creator); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.Schedule(context.Background(), f.patientID, nil, "2027-01-01", nil, &f.creator); err != nil {
		t.Fatal(err)
	}

	before := len(f.sender.Calls())
	sent, err := f.svc.SendDueOn(context.Background(), "2026-12-01")
	if err != nil {
		t.Fatal(err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2 (one due reminder plus the extra source)", sent)
	}
	calls := f.sender.Calls()[before:]
	if len(calls) != 2 {
		t.Fatalf("batch sends = %d", len(calls))
	}
	if calls[0].Subject != "CONTROL MEDICO" {
		t.Errorf("subject = %q", calls[0].Subject)
	}
	if !strings.Contains(calls[0].Body, "Recordatorio paciente Juan Perez (DNI: 28999111)") {
		t.Errorf("body = %q", calls[0].Body)
	}
	if !strings.Contains(calls[0].Body, "Control medico con doctor: Dr. Medico") {
		t.Errorf("body = %q", calls[0].Body)
	}
}

func TestSendDueOnSkipsCompleted(t *testing.T) {
	f := newFixture(t)
	if err := f.svc.Schedule(context.Background(), f.patientID, nil, "2026-12-01", nil, &f.creator); err != nil {
		t.Fatal(err)
	}
	var id uuid.UUID
	for k := range f.repo.items {
		id = k
	}
	if _, err := f.svc.Complete(context.Background(), id, &f.creator, nil); err != nil {
		t.Fatal(err)
	}

	sent, err := f.svc.SendDueOn(context.Background(), "2026-12-01")
	if err != nil {
		t.Fatal(err)
	}
	if sent != 0 {
		t.Fatalf("sent = %d, want 0", sent)
	}
}
