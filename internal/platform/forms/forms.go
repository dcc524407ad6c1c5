// Package forms contains the lenient coercion helpers shared by all
// form-driven handlers. Invalid input never produces an error here; a
// field that fails to parse simply stays nil.
package forms

import (
	"net/url"
	"strconv"
	"strings"
)

// Values wraps submitted form fields.
type Values struct {
	url.Values
}

// FromURLValues adapts parsed form data.
func FromURLValues(v url.Values) Values {
	return Values{Values: v}
}

// String returns the trimmed field value, nil when empty or absent.
func (v Values) String(key string) *string {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil
	}
	return &s
}

// Bool coerces a checkbox field. Present "on"/"true"/"1"/"yes" values are
// true; anything else, including absence, is false.
func (v Values) Bool(key string) bool {
	s := strings.ToLower(strings.TrimSpace(v.Get(key)))
	switch s {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// Int parses an integer field leniently.
func (v Values) Int(key string) *int {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

// Float parses a float field leniently.
func (v Values) Float(key string) *float64 {
	s := strings.TrimSpace(v.Get(key))
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// List returns all submitted values for a multi-select field.
func (v Values) List(key string) []string {
	return v.Values[key]
}
