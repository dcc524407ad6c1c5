package patient

import (
	"net/url"
	"testing"
	"time"

	"github.com/comitetoraxvm/comite-torax/internal/platform/forms"
	"github.com/comitetoraxvm/comite-torax/internal/platform/listcodec"
)

var formNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func formValues(kv map[string][]string) forms.Values {
	v := url.Values{}
	for k, vals := range kv {
		v[k] = vals
	}
	return forms.FromURLValues(v)
}

func TestPopulateComputesPackYears(t *testing.T) {
	p := &Patient{}
	p.PopulateFromForm(formValues(map[string][]string{
		"full_name":                  {"Juan Gomez"},
		"smoking_current":            {"on"},
		"smoking_cigarettes_per_day": {"30"},
		"smoking_years":              {"20"},
		"smoking_pack_years":         {"99"}, // explicit value must lose to the computation
	}), nil, formNow)

	if p.SmokingPackYears == nil || *p.SmokingPackYears != 30 {
		t.Errorf("pack years = %v, want 30", p.SmokingPackYears)
	}
}

func TestPopulatePackYearsFallback(t *testing.T) {
	p := &Patient{}
	p.PopulateFromForm(formValues(map[string][]string{
		"full_name":          {"Juan Gomez"},
		"smoking_previous":   {"on"},
		"smoking_pack_years": {"18.5"},
	}), nil, formNow)

	if p.SmokingPackYears == nil || *p.SmokingPackYears != 18.5 {
		t.Errorf("pack years = %v, want fallback 18.5", p.SmokingPackYears)
	}
}

func TestPopulateNeverSmokedShortCircuits(t *testing.T) {
	p := &Patient{}
	p.PopulateFromForm(formValues(map[string][]string{
		"full_name":                  {"Juan Gomez"},
		"smoking_never":              {"on"},
		"smoking_current":            {"on"},
		"smoking_cigarettes_per_day": {"30"},
		"smoking_years":              {"20"},
	}), nil, formNow)

	if p.SmokingCurrent || p.SmokingPrevious {
		t.Error("never-smoked must clear smoking flags")
	}
	if p.SmokingPackYears == nil || *p.SmokingPackYears != 0 {
		t.Errorf("pack years = %v, want 0", p.SmokingPackYears)
	}
	if p.SmokingYears != nil || p.SmokingCigarettesPerDay != nil {
		t.Error("never-smoked must clear consumption fields")
	}
}

func TestPopulateComputesBMI(t *testing.T) {
	p := &Patient{}
	p.PopulateFromForm(formValues(map[string][]string{
		"full_name": {"Juan Gomez"},
		"weight_kg": {"80"},
		"height_cm": {"175"},
	}), nil, formNow)

	if p.BMI == nil || *p.BMI != 26.12 {
		t.Errorf("bmi = %v, want 26.12", p.BMI)
	}
}

func TestComputeBMIEdgeCases(t *testing.T) {
	w, h := 80.0, 0.0
	if got := ComputeBMI(&w, &h); got != nil {
		t.Errorf("zero height should give nil, got %v", *got)
	}
	if got := ComputeBMI(nil, &w); got != nil {
		t.Error("missing weight should give nil")
	}
	neg := -170.0
	if got := ComputeBMI(&w, &neg); got != nil {
		t.Error("negative height should give nil")
	}
}

func TestAgeFromBirthDate(t *testing.T) {
	// birthday already passed this year
	if got := AgeFromBirthDate("1970-03-15", formNow); got == nil || *got != 56 {
		t.Errorf("age = %v, want 56", got)
	}
	// birthday later this year
	if got := AgeFromBirthDate("1970-11-02", formNow); got == nil || *got != 55 {
		t.Errorf("age = %v, want 55", got)
	}
	// same month, day not reached
	if got := AgeFromBirthDate("1970-08-30", formNow); got == nil || *got != 55 {
		t.Errorf("age = %v, want 55", got)
	}
	if got := AgeFromBirthDate("not-a-date", formNow); got != nil {
		t.Error("unparseable date should give nil")
	}
	if got := AgeFromBirthDate("2030-01-01", formNow); got != nil {
		t.Error("future date should give nil")
	}
}

func TestPopulateAgePrefersBirthDate(t *testing.T) {
	p := &Patient{}
	p.PopulateFromForm(formValues(map[string][]string{
		"full_name":  {"Juan Gomez"},
		"birth_date": {"1960-01-10"},
	}), nil, formNow)
	if p.Age == nil || *p.Age != 66 {
		t.Errorf("derived age = %v, want 66", p.Age)
	}

	// explicit age wins over the computation
	p = &Patient{}
	p.PopulateFromForm(formValues(map[string][]string{
		"full_name":  {"Juan Gomez"},
		"age":        {"70"},
		"birth_date": {"1960-01-10"},
	}), nil, formNow)
	if p.Age == nil || *p.Age != 70 {
		t.Errorf("explicit age = %v, want 70", p.Age)
	}
}

func TestPopulateConsentDateDefaults(t *testing.T) {
	p := &Patient{}
	p.PopulateFromForm(formValues(map[string][]string{
		"full_name":     {"Juan Gomez"},
		"consent_given": {"on"},
	}), nil, formNow)
	if p.ConsentDate == nil || *p.ConsentDate != "2026-08-29" {
		t.Errorf("consent date = %v, want today", p.ConsentDate)
	}

	// without consent the date clears
	p.PopulateFromForm(formValues(map[string][]string{
		"full_name": {"Juan Gomez"},
	}), nil, formNow)
	if p.ConsentGiven || p.ConsentDate != nil {
		t.Error("consent date should clear when consent is withdrawn")
	}
}

func TestPopulatePreservesCreationMetadata(t *testing.T) {
	creator := mustUUID(t)
	editor := mustUUID(t)

	p := &Patient{}
	p.PopulateFromForm(formValues(map[string][]string{"full_name": {"Juan"}}), &creator, formNow)
	if p.CreatedByID == nil || *p.CreatedByID != creator {
		t.Fatal("creator not set on first populate")
	}
	created := p.CreatedAt

	later := formNow.Add(48 * time.Hour)
	p.PopulateFromForm(formValues(map[string][]string{"full_name": {"Juan"}}), &editor, later)
	if *p.CreatedByID != creator {
		t.Error("created_by must not be overwritten")
	}
	if !p.CreatedAt.Equal(created) {
		t.Error("created_at must not be overwritten")
	}
	if p.UpdatedByID == nil || *p.UpdatedByID != editor {
		t.Error("updated_by should track the editor")
	}
	if p.UpdatedAt == nil || !p.UpdatedAt.Equal(later) {
		t.Error("updated_at should track the edit time")
	}
}

func TestPopulateEncodesLists(t *testing.T) {
	p := &Patient{}
	p.PopulateFromForm(formValues(map[string][]string{
		"full_name":              {"Juan"},
		"respiratory_conditions": {"asma", "epoc"},
	}), nil, formNow)

	got := listcodec.Decode(p.RespiratoryConditions)
	if len(got) != 2 || got[0] != "asma" || got[1] != "epoc" {
		t.Errorf("decoded conditions = %v", got)
	}
	if p.SystemicSymptoms != nil {
		t.Error("unsubmitted multi-select should stay nil")
	}
}
