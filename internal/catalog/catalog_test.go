package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadWithoutOverrideReturnsDefaults(t *testing.T) {
	c := Load(filepath.Join(t.TempDir(), "missing.json"))
	d := Defaults()
	if !reflect.DeepEqual(c.Centers, d.Centers) {
		t.Errorf("centers = %v, want defaults", c.Centers)
	}
	if len(c.RespiratoryConditions) == 0 {
		t.Error("respiratory conditions default is empty")
	}
}

func TestLoadMergesOverridePerKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogs.json")
	data := `{
		"centers": ["Hospital Italiano"],
		"illicit_drugs": "not-a-list",
		"unknown_key": ["x"]
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c := Load(path)
	if !reflect.DeepEqual(c.Centers, []string{"Hospital Italiano"}) {
		t.Errorf("centers = %v, want override", c.Centers)
	}
	// a non-list value keeps the default
	if !reflect.DeepEqual(c.IllicitDrugs, Defaults().IllicitDrugs) {
		t.Errorf("illicit drugs should keep defaults, got %v", c.IllicitDrugs)
	}
}

func TestLoadBrokenFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogs.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	c := Load(path)
	if !reflect.DeepEqual(c.Centers, Defaults().Centers) {
		t.Error("broken override should keep defaults")
	}
}

func TestLabel(t *testing.T) {
	c := Defaults()
	if got := Label(c.RespiratoryConditions, "epoc"); got != "EPOC" {
		t.Errorf("Label(epoc) = %q", got)
	}
	if got := Label(c.RespiratoryConditions, "desconocido"); got != "desconocido" {
		t.Errorf("unknown value should return itself, got %q", got)
	}
}

func TestPortalLink(t *testing.T) {
	if got := PortalLink("Roentgen"); got == "" {
		t.Error("expected portal link for Roentgen")
	}
	if got := PortalLink("  sanatorio cruz azul "); got == "" {
		t.Error("lookup should be case-insensitive and trimmed")
	}
	if got := PortalLink("Clinica de Especialidades"); got != "" {
		t.Errorf("expected no portal, got %q", got)
	}
}

func TestImmunoLabel(t *testing.T) {
	if got := ImmunoLabel("anti_ccp"); got != "Anti CCP" {
		t.Errorf("ImmunoLabel(anti_ccp) = %q", got)
	}
	if got := ImmunoLabel("anti_mda5"); got != "Anti-MDA5" {
		t.Errorf("rheum panel lookup failed, got %q", got)
	}
	if n := len(ImmunoLabAll()); n != len(ImmunoLabCore)+len(ImmunoLabRheum) {
		t.Errorf("ImmunoLabAll length = %d", n)
	}
}
