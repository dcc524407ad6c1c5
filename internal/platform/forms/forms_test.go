package forms

import (
	"net/url"
	"testing"
)

func TestString_TrimsToNil(t *testing.T) {
	v := FromURLValues(url.Values{"name": {"  Ana  "}, "blank": {"   "}})
	if got := v.String("name"); got == nil || *got != "Ana" {
		t.Errorf("expected trimmed Ana, got %v", got)
	}
	if v.String("blank") != nil {
		t.Error("whitespace-only field should be nil")
	}
	if v.String("missing") != nil {
		t.Error("absent field should be nil")
	}
}

func TestBool_CheckboxCoercion(t *testing.T) {
	truthy := []string{"on", "true", "1", "yes", "ON", "Yes"}
	for _, s := range truthy {
		v := FromURLValues(url.Values{"flag": {s}})
		if !v.Bool("flag") {
			t.Errorf("expected %q to coerce to true", s)
		}
	}
	v := FromURLValues(url.Values{"flag": {"off"}})
	if v.Bool("flag") {
		t.Error("expected off to coerce to false")
	}
	if v.Bool("absent") {
		t.Error("absent checkbox should be false")
	}
}

func TestInt_Lenient(t *testing.T) {
	v := FromURLValues(url.Values{"age": {"63"}, "bad": {"abc"}, "empty": {""}})
	if got := v.Int("age"); got == nil || *got != 63 {
		t.Errorf("expected 63, got %v", got)
	}
	if v.Int("bad") != nil {
		t.Error("invalid int should be nil")
	}
	if v.Int("empty") != nil {
		t.Error("empty int should be nil")
	}
}

func TestFloat_Lenient(t *testing.T) {
	v := FromURLValues(url.Values{"weight": {"72.5"}, "bad": {"x"}})
	if got := v.Float("weight"); got == nil || *got != 72.5 {
		t.Errorf("expected 72.5, got %v", got)
	}
	if v.Float("bad") != nil {
		t.Error("invalid float should be nil")
	}
}

func TestList(t *testing.T) {
	v := FromURLValues(url.Values{"conds": {"asma", "epoc"}})
	if got := v.List("conds"); len(got) != 2 {
		t.Errorf("expected 2 values, got %v", got)
	}
	if got := v.List("missing"); got != nil {
		t.Errorf("expected nil for absent field, got %v", got)
	}
}
