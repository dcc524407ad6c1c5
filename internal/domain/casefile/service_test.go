package casefile

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/comitetoraxvm/comite-torax/internal/domain/consultation"
	"github.com/comitetoraxvm/comite-torax/internal/domain/patient"
	"github.com/comitetoraxvm/comite-torax/internal/domain/study"
	"github.com/comitetoraxvm/comite-torax/internal/platform/audit"
	"github.com/comitetoraxvm/comite-torax/internal/platform/listcodec"
)

type mockCaseRepo struct {
	items map[uuid.UUID]*Presentation
}

func newMockCaseRepo() *mockCaseRepo {
	return &mockCaseRepo{items: make(map[uuid.UUID]*Presentation)}
}

func (m *mockCaseRepo) Create(_ context.Context, pr *Presentation) error {
	pr.ID = uuid.New()
	cp := *pr
	m.items[pr.ID] = &cp
	return nil
}

func (m *mockCaseRepo) GetByPatient(_ context.Context, patientID uuid.UUID) (*Presentation, error) {
	for _, pr := range m.items {
		if pr.PatientID == patientID {
			cp := *pr
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockCaseRepo) Update(_ context.Context, pr *Presentation) error {
	if _, ok := m.items[pr.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *pr
	m.items[pr.ID] = &cp
	return nil
}

type mockPatients struct {
	items map[uuid.UUID]*patient.Patient
}

func (m *mockPatients) Get(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

type mockConsultations struct {
	latest *consultation.Consultation
}

func (m *mockConsultations) LatestByPatient(_ context.Context, _ uuid.UUID) (*consultation.Consultation, error) {
	if m.latest == nil {
		return nil, pgx.ErrNoRows
	}
	cp := *m.latest
	return &cp, nil
}

type mockStudies struct {
	latest *study.Study
}

func (m *mockStudies) LatestByPatient(_ context.Context, _ uuid.UUID) (*study.Study, error) {
	if m.latest == nil {
		return nil, pgx.ErrNoRows
	}
	cp := *m.latest
	return &cp, nil
}

func strp(s string) *string { return &s }

func samplePatient() *patient.Patient {
	age := 63
	ipa := 35.0
	return &patient.Patient{
		ID:                          uuid.New(),
		FullName:                    "Maria Gomez",
		DNI:                         strp("28555123"),
		Age:                         &age,
		Sex:                         strp("F"),
		SmokingCurrent:              false,
		SmokingPrevious:             true,
		SmokingPackYears:            &ipa,
		Antecedentes:                strp("Artritis reumatoidea"),
		CurrentMedications:          strp("Metotrexato"),
		PhysicalCrepitacionesVelcro: true,
		DomesticExposures:           listcodec.Encode([]string{"palomas", "dano_humedad"}),
		OccupationalJobs:            listcodec.Encode([]string{"carpinteria_madera"}),
	}
}

func newTestService(t *testing.T, patients *mockPatients, cons *mockConsultations, studies *mockStudies) (*Service, *mockCaseRepo) {
	t.Helper()
	repo := newMockCaseRepo()
	auditLog := audit.NewLogger(filepath.Join(t.TempDir(), "audit.log"), zerolog.Nop())
	svc := NewService(repo, patients, cons, studies, auditLog)
	return svc, repo
}

func TestGetOrCreateBuildsDefaults(t *testing.T) {
	p := samplePatient()
	patients := &mockPatients{items: map[uuid.UUID]*patient.Patient{p.ID: p}}
	cons := &mockConsultations{latest: &consultation.Consultation{
		ID:            uuid.New(),
		PatientID:     p.ID,
		Notes:         strp("Disnea progresiva"),
		LabGeneral:    strp("Hemograma normal"),
		LabImmunology: listcodec.Encode([]string{"fan", "factor_reumatoideo"}),
	}}
	studies := &mockStudies{latest: &study.Study{
		ID:         uuid.New(),
		PatientID:  p.ID,
		StudyType:  "TC de torax",
		Date:       strp("2026-05-10"),
		Center:     strp("Roentgen"),
		AccessCode: strp("AB1234"),
	}}
	svc, _ := newTestService(t, patients, cons, studies)

	pr, err := svc.GetOrCreate(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}

	intro := *pr.Intro
	for _, want := range []string{
		"Edad: 63 años",
		"Motivo de presentación/pregunta: Disnea progresiva",
		"Tabaquismo actual: NO | Tabaquismo previo: SI | IPA: 35",
		"Medicacion concomitante: Metotrexato",
	} {
		if !strings.Contains(intro, want) {
			t.Errorf("intro missing %q:\n%s", want, intro)
		}
	}
	if !strings.Contains(*pr.PhysicalExam, "Crepitantes velcro: SI | Clubbing: NO | Signos HTP: NO") {
		t.Errorf("physical exam = %q", *pr.PhysicalExam)
	}
	if !strings.Contains(*pr.Immunology, "Hemograma normal") || !strings.Contains(*pr.Immunology, "Autoinmunidad: ") {
		t.Errorf("immunology = %q", *pr.Immunology)
	}
	exposures := *pr.Exposures
	if !strings.Contains(exposures, "Hogar: Palomas, Dano por humedad en paredes/techo") {
		t.Errorf("exposures missing questionnaire home labels: %q", exposures)
	}
	if !strings.Contains(exposures, "Laboral: Maderas/Aserrin/Carpintero") {
		t.Errorf("exposures missing questionnaire work labels: %q", exposures)
	}
	imaging := *pr.Imaging
	if !strings.Contains(imaging, "Último estudio: TC de torax - 2026-05-10 - Roentgen") {
		t.Errorf("imaging missing study line: %q", imaging)
	}
	if !strings.Contains(imaging, "Portal: https://estudios.roentgen.com.ar") {
		t.Errorf("imaging missing portal link: %q", imaging)
	}
	if !strings.Contains(imaging, "Número de acceso: AB1234") {
		t.Errorf("imaging missing access code: %q", imaging)
	}
}

func TestGetOrCreateEmptyRecord(t *testing.T) {
	p := &patient.Patient{ID: uuid.New(), FullName: "Juan Perez"}
	patients := &mockPatients{items: map[uuid.UUID]*patient.Patient{p.ID: p}}
	svc, _ := newTestService(t, patients, &mockConsultations{}, &mockStudies{})

	pr, err := svc.GetOrCreate(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(*pr.Intro, "Edad: ___ años") {
		t.Errorf("intro = %q", *pr.Intro)
	}
	if !strings.Contains(*pr.Immunology, "Registrar FAN, FR, Anti CCP, ANCA, PCR, VSG, CPK, Aldolasa.") {
		t.Errorf("immunology = %q", *pr.Immunology)
	}
	if *pr.Exposures != "Sin exposiciones de riesgo declaradas." {
		t.Errorf("exposures = %q", *pr.Exposures)
	}
	if *pr.Imaging != "Sin estudios registrados." {
		t.Errorf("imaging = %q", *pr.Imaging)
	}
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	p := samplePatient()
	patients := &mockPatients{items: map[uuid.UUID]*patient.Patient{p.ID: p}}
	svc, repo := newTestService(t, patients, &mockConsultations{}, &mockStudies{})

	first, err := svc.GetOrCreate(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.GetOrCreate(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("second call created a new presentation: %s vs %s", first.ID, second.ID)
	}
	if len(repo.items) != 1 {
		t.Fatalf("stored %d presentations, want 1", len(repo.items))
	}
}

func TestUpdatePersistsSections(t *testing.T) {
	p := samplePatient()
	patients := &mockPatients{items: map[uuid.UUID]*patient.Patient{p.ID: p}}
	svc, repo := newTestService(t, patients, &mockConsultations{}, &mockStudies{})

	pr, err := svc.Update(context.Background(), p.ID, Input{
		Intro: strp("Caso complejo"),
		Notes: strp("Pedir biopsia"),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	stored := repo.items[pr.ID]
	if stored.Intro == nil || *stored.Intro != "Caso complejo" {
		t.Errorf("intro not stored: %v", stored.Intro)
	}
	if stored.Notes == nil || *stored.Notes != "Pedir biopsia" {
		t.Errorf("notes not stored: %v", stored.Notes)
	}
	if stored.Imaging != nil {
		t.Errorf("imaging should clear when omitted, got %v", *stored.Imaging)
	}
}

func TestExportDoc(t *testing.T) {
	p := samplePatient()
	patients := &mockPatients{items: map[uuid.UUID]*patient.Patient{p.ID: p}}
	svc, _ := newTestService(t, patients, &mockConsultations{}, &mockStudies{})

	name, content, err := svc.ExportDoc(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if name != "caso_"+p.ID.String()+".doc" {
		t.Errorf("name = %q", name)
	}
	html := string(content)
	if !strings.Contains(html, "Presentación de caso: Maria Gomez") {
		t.Errorf("export missing title:\n%s", html)
	}
	if !strings.Contains(html, "DNI: 28555123") {
		t.Errorf("export missing dni")
	}
	if !strings.Contains(html, "Tabaquismo actual: NO") {
		t.Errorf("export missing prefilled intro")
	}
}
