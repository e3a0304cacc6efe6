package db

import (
	"encoding/json"
	"fmt"
	"time"
)

type serverTimestamp struct{}

// ServerTimestamp is a write-time sentinel replaced by the store's own clock.
var ServerTimestamp = serverTimestamp{}

// Document is a snapshot of one stored document.
type Document struct {
	ID   string
	Data map[string]interface{}
}

// String returns the string field key, or "".
func (d *Document) String(key string) string {
	s, _ := d.Data[key].(string)
	return s
}

// Bool returns the boolean field key. Numeric 0/1 are accepted because the
// SQLite backend reads JSON booleans back that way through json_extract.
func (d *Document) Bool(key string) bool {
	switch v := d.Data[key].(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int64:
		return v != 0
	}
	return false
}

// Int returns the integer field key, or 0.
func (d *Document) Int(key string) int {
	switch v := d.Data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

// Time returns the timestamp field key. Stores hand timestamps back as
// time.Time (Firestore, memory) or as Unix milliseconds (SQLite).
func (d *Document) Time(key string) time.Time {
	switch v := d.Data[key].(type) {
	case time.Time:
		return v
	case float64:
		return time.UnixMilli(int64(v)).UTC()
	case int64:
		return time.UnixMilli(v).UTC()
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err == nil {
			return t
		}
	}
	return time.Time{}
}

// Strings returns the string-array field key. Non-string elements are skipped.
func (d *Document) Strings(key string) []string {
	out := []string{}
	switch v := d.Data[key].(type) {
	case []string:
		out = append(out, v...)
	case []interface{}:
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// Decode copies the whole document into out through its JSON field names.
// It is meant for documents without timestamp fields.
func (d *Document) Decode(out interface{}) error {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return fmt.Errorf("encoding document %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding document %s: %w", d.ID, err)
	}
	return nil
}
