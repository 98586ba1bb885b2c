package party

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire and storage format for date fields.
const DateLayout = "2006-01-02"

// Record is one entity row. Values are normalized per field kind:
// text and date fields hold string, int and ref fields hold int64.
// Absent optional fields are simply missing from the map.
type Record map[string]any

// ID returns the record identifier, 0 when not yet created.
func (r Record) ID() int64 {
	v, _ := toInt64(r["id"])
	return v
}

// Clone returns a shallow copy safe to mutate.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns the string value of a field, "" when absent.
func (r Record) String(field string) string {
	if s, ok := r[field].(string); ok {
		return s
	}
	return ""
}

// Int returns the integer value of a field, 0 when absent.
func (r Record) Int(field string) int64 {
	v, _ := toInt64(r[field])
	return v
}

// Normalize coerces a decoded JSON object (or form values converted to any)
// into a Record typed per the descriptor. Unknown fields are rejected, and
// when requireAll is set every required field must be present and non-empty.
// Partial updates pass requireAll=false so absent fields keep stored values.
func (d *Descriptor) Normalize(raw map[string]any, requireAll bool) (Record, error) {
	rec := make(Record, len(raw))
	for k := range raw {
		if k == "id" {
			continue
		}
		if d.Field(k) == nil {
			return nil, fmt.Errorf("%w: unknown field %q for %s", ErrInvalidInput, k, d.Slug)
		}
	}
	for _, f := range d.Fields {
		v, present := raw[f.Name]
		if !present || isEmpty(v) {
			if f.Required && requireAll {
				return nil, fmt.Errorf("%w: %s is required", ErrInvalidInput, f.Name)
			}
			continue
		}
		norm, err := normalizeValue(f, v)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = norm
	}
	return rec, nil
}

// Merge overlays update values onto the current record, field by field.
// Fields absent from update keep their stored values (COALESCE semantics).
func (d *Descriptor) Merge(current, update Record) Record {
	out := current.Clone()
	for _, f := range d.Fields {
		if v, ok := update[f.Name]; ok {
			out[f.Name] = v
		}
	}
	return out
}

func normalizeValue(f Field, v any) (any, error) {
	switch f.Kind {
	case KindText:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidInput, f.Name)
		}
		return strings.TrimSpace(s), nil
	case KindDate:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a date string", ErrInvalidInput, f.Name)
		}
		s = strings.TrimSpace(s)
		if _, err := time.Parse(DateLayout, s); err != nil {
			return nil, fmt.Errorf("%w: %s must be formatted %s", ErrInvalidInput, f.Name, DateLayout)
		}
		return s, nil
	case KindInt, KindRef:
		n, ok := toInt64(v)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be an integer", ErrInvalidInput, f.Name)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("%w: field %s has unsupported kind %q", ErrInvalidInput, f.Name, f.Kind)
	}
}

func toInt64(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		if t != float64(int64(t)) {
			return 0, false
		}
		return int64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}
