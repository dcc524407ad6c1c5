// Package listcodec encodes multi-select form values into text columns.
//
// Selections are stored as a JSON array. Decoding also accepts the legacy
// comma-separated format still present in old rows. A secondary "key:value"
// encoding attaches a free-text value to each selected item (used for lab
// titers) inside the same list representation.
package listcodec

import (
	"encoding/json"
	"strings"
)

// Encode serializes values as a JSON array, dropping empty items. Returns
// nil when nothing remains so the column stays NULL.
func Encode(values []string) *string {
	var cleaned []string
	for _, v := range values {
		if v != "" {
			cleaned = append(cleaned, v)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	data, err := json.Marshal(cleaned)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

// Decode parses a stored list column. JSON arrays decode as-is; anything
// else falls back to comma-splitting for legacy rows. Absent values decode
// to an empty slice.
func Decode(value *string) []string {
	if value == nil || *value == "" {
		return []string{}
	}
	var items []string
	if err := json.Unmarshal([]byte(*value), &items); err == nil {
		return items
	}
	var parts []string
	for _, item := range strings.Split(*value, ",") {
		if item != "" {
			parts = append(parts, item)
		}
	}
	if parts == nil {
		return []string{}
	}
	return parts
}

// EncodeKV serializes a key→value mapping as a list of "key:value" items.
// Keys in order preserves nothing (map iteration); callers that care about
// ordering should not, as the legacy format never did. Entries with empty
// keys or blank values are dropped.
func EncodeKV(values map[string]string) *string {
	if len(values) == 0 {
		return nil
	}
	var items []string
	for k, v := range values {
		if k == "" || strings.TrimSpace(v) == "" {
			continue
		}
		items = append(items, k+":"+v)
	}
	return Encode(items)
}

// DecodeKV parses a stored "key:value" list back into a map, skipping
// malformed or keyless entries.
func DecodeKV(value *string) map[string]string {
	result := make(map[string]string)
	for _, item := range Decode(value) {
		if item == "" {
			continue
		}
		idx := strings.Index(item, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(item[:idx])
		val := strings.TrimSpace(item[idx+1:])
		if key != "" {
			result[key] = val
		}
	}
	return result
}
