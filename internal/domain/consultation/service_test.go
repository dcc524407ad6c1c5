package consultation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/forms"
	"github.com/comitetoraxvm/comite-torax/internal/platform/listcodec"
)

type mockConsultationRepo struct {
	items map[uuid.UUID]*Consultation
}

func newMockConsultationRepo() *mockConsultationRepo {
	return &mockConsultationRepo{items: make(map[uuid.UUID]*Consultation)}
}

func (m *mockConsultationRepo) Create(_ context.Context, cn *Consultation) error {
	cn.ID = uuid.New()
	if cn.CreatedAt.IsZero() {
		cn.CreatedAt = time.Now()
	}
	m.items[cn.ID] = cn
	return nil
}

func (m *mockConsultationRepo) GetByID(_ context.Context, id uuid.UUID) (*Consultation, error) {
	cn, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return cn, nil
}

func (m *mockConsultationRepo) Update(_ context.Context, cn *Consultation) error {
	m.items[cn.ID] = cn
	return nil
}

func (m *mockConsultationRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockConsultationRepo) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*Consultation, error) {
	var out []*Consultation
	for _, cn := range m.items {
		if cn.PatientID == patientID {
			out = append(out, cn)
		}
	}
	return out, nil
}

func (m *mockConsultationRepo) LatestByPatient(ctx context.Context, patientID uuid.UUID) (*Consultation, error) {
	items, _ := m.ListByPatient(ctx, patientID)
	if len(items) == 0 {
		return nil, fmt.Errorf("not found")
	}
	return items[0], nil
}

type mockStudyCreator struct {
	rows []StudyRow
}

func (m *mockStudyCreator) CreateForConsultation(_ context.Context, _, _ uuid.UUID, rows []StudyRow, _ *uuid.UUID) ([]uuid.UUID, error) {
	m.rows = append(m.rows, rows...)
	ids := make([]uuid.UUID, len(rows))
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids, nil
}

type mockControlScheduler struct {
	calls int
	date  string
}

func (m *mockControlScheduler) Schedule(_ context.Context, _ uuid.UUID, _ *uuid.UUID, date string, _ *string, _ *uuid.UUID) error {
	m.calls++
	m.date = date
	return nil
}

type mockReviewRequester struct {
	recipients []uuid.UUID
}

func (m *mockReviewRequester) Request(_ context.Context, _ uuid.UUID, _, _ *uuid.UUID, recipients []uuid.UUID, _ *string, _ uuid.UUID) error {
	m.recipients = recipients
	return nil
}

func newTestService(t *testing.T) (*Service, *mockConsultationRepo, *mockStudyCreator, *mockControlScheduler, *mockReviewRequester) {
	t.Helper()
	repo := newMockConsultationRepo()
	studies := &mockStudyCreator{}
	controls := &mockControlScheduler{}
	reviews := &mockReviewRequester{}
	auditLog := audit.NewLogger(filepath.Join(t.TempDir(), "audit.log"), zerolog.Nop())
	return NewService(repo, studies, controls, reviews, auditLog), repo, studies, controls, reviews
}

func TestCreateRequiresDate(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	_, err := svc.Create(context.Background(), uuid.New(), Input{}, nil, nil)
	if !errors.Is(err, ErrDateRequired) {
		t.Fatalf("err = %v, want ErrDateRequired", err)
	}
}

func TestCreateWithStudyRows(t *testing.T) {
	svc, repo, studies, _, _ := newTestService(t)
	ctx := context.Background()
	patientID := uuid.New()

	in := Input{
		Date:          "2026-08-01",
		LabImmunology: []string{"anti_ccp", "vsg"},
		LabImmunologyValues: map[string]string{
			"anti_ccp": "1/80",
		},
		StudyRows: []StudyRow{
			{Type: "TC torax", Date: "2026-08-02"},
			{Type: "", Date: "2026-08-03"}, // no type: generic label
		},
	}
	res, err := svc.Create(ctx, patientID, in, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.StudyIDs) != 2 {
		t.Errorf("study ids = %d, want 2", len(res.StudyIDs))
	}
	if studies.rows[1].Type != "Estudio asociado a consulta" {
		t.Errorf("typeless row label = %q", studies.rows[1].Type)
	}

	stored := repo.items[res.Consultation.ID]
	if got := listcodec.Decode(stored.LabImmunology); len(got) != 2 {
		t.Errorf("immunology selection = %v", got)
	}
	kv := listcodec.DecodeKV(stored.LabImmunologyValues)
	if kv["anti_ccp"] != "1/80" {
		t.Errorf("titer map = %v", kv)
	}
}

func TestCreateSchedulesControlAndReview(t *testing.T) {
	svc, _, _, controls, reviews := newTestService(t)
	ctx := context.Background()
	creator := uuid.New()
	recipient := uuid.New()

	in := Input{
		Date:             "2026-08-01",
		StudyGroups:      []string{"img"},
		ControlEnabled:   true,
		ControlDate:      "2026-12-01",
		ReviewRecipients: []uuid.UUID{recipient},
		ReviewMessage:    "revisar TC",
	}
	if _, err := svc.Create(ctx, uuid.New(), in, &creator, nil); err != nil {
		t.Fatal(err)
	}
	if controls.calls != 1 || controls.date != "2026-12-01" {
		t.Errorf("control schedule calls=%d date=%s", controls.calls, controls.date)
	}
	if len(reviews.recipients) != 1 || reviews.recipients[0] != recipient {
		t.Errorf("review recipients = %v", reviews.recipients)
	}
}

func TestCreateSkipsControlWithoutFunctionalOrImagingGroup(t *testing.T) {
	svc, _, _, controls, _ := newTestService(t)
	ctx := context.Background()
	creator := uuid.New()

	cases := []struct {
		name   string
		groups []string
		want   int
	}{
		{"no groups", nil, 0},
		{"invasive only", []string{"inv"}, 0},
		{"functional", []string{"func"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			controls.calls = 0
			in := Input{
				Date:           "2026-08-01",
				StudyGroups:    tc.groups,
				ControlEnabled: true,
				ControlDate:    "2026-12-01",
			}
			if _, err := svc.Create(ctx, uuid.New(), in, &creator, nil); err != nil {
				t.Fatal(err)
			}
			if controls.calls != tc.want {
				t.Errorf("control schedule calls = %d, want %d", controls.calls, tc.want)
			}
		})
	}
}

func TestParseFormStudyGroups(t *testing.T) {
	f := forms.FromURLValues(url.Values{
		"date":                 {"2026-08-01"},
		"study_groups":         {"func", "img"},
		"study_type_func":      {"Espirometria", ""},
		"study_date_func":      {"2026-08-05", ""},
		"study_type_img":       {"TC torax"},
		"study_date_img":       {"2026-08-06"},
		"study_center_img":     {"Roentgen"},
		"study_access_code_img": {"ABC123"},
		// inv group submitted but not selected
		"study_type_inv": {"Biopsia"},
		"study_date_inv": {"2026-08-07"},
	})
	in := ParseForm(f)
	if len(in.StudyRows) != 2 {
		t.Fatalf("rows = %d, want 2 (empty row and unselected group skipped)", len(in.StudyRows))
	}
	if in.StudyRows[0].Type != "Espirometria" {
		t.Errorf("row 0 = %+v", in.StudyRows[0])
	}
	if in.StudyRows[1].Center != "Roentgen" || in.StudyRows[1].AccessCode != "ABC123" {
		t.Errorf("imaging row = %+v", in.StudyRows[1])
	}
}

func TestParseFormImmunologyValues(t *testing.T) {
	f := forms.FromURLValues(url.Values{
		"date":                         {"2026-08-01"},
		"lab_immunology":               {"fan_hep2_1"},
		"lab_immunology_value_fan_hep2_1": {" 1/160 "},
		"lab_immunology_value_unknown": {"ignored"},
	})
	in := ParseForm(f)
	if in.LabImmunologyValues["fan_hep2_1"] != "1/160" {
		t.Errorf("values = %v", in.LabImmunologyValues)
	}
	if _, ok := in.LabImmunologyValues["unknown"]; ok {
		t.Error("unknown test code should be ignored")
	}
}
