package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// RawRecord is an untyped record as received from a data source. Keys are
// arbitrary, numbers may arrive as JSON numbers or numeric strings, and any
// field may be missing. All accessors are total: they report absence with a
// false second return instead of failing.
type RawRecord map[string]any

// DecodeRawRecord parses a single JSON object. A JSON null decodes to a nil record.
func DecodeRawRecord(data []byte) (RawRecord, error) {
	var rec RawRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode raw record: %w", err)
	}
	return rec, nil
}

// DecodeRawRecords parses a JSON array of objects.
func DecodeRawRecords(data []byte) ([]RawRecord, error) {
	var recs []RawRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode raw records: %w", err)
	}
	return recs, nil
}

// Value returns the field if it is present and not null.
func (r RawRecord) Value(key string) (any, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Has reports whether the field is present, not null, and not an empty string.
func (r RawRecord) Has(key string) bool {
	v, ok := r.Value(key)
	if !ok {
		return false
	}
	if s, isString := v.(string); isString && s == "" {
		return false
	}
	return true
}

// String returns the field as a trimmed, non-empty string. Numbers are
// formatted in their shortest form.
func (r RawRecord) String(key string) (string, bool) {
	v, ok := r.Value(key)
	if !ok {
		return "", false
	}

	var s string
	switch t := v.(type) {
	case string:
		s = t
	case json.Number:
		s = t.String()
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		s = strconv.Itoa(t)
	case int64:
		s = strconv.FormatInt(t, 10)
	default:
		return "", false
	}

	s = strings.TrimSpace(s)
	return s, s != ""
}

// Float returns the field as a finite float64. Numeric strings are parsed;
// anything else, including NaN and infinities, reports false.
func (r RawRecord) Float(key string) (float64, bool) {
	v, ok := r.Value(key)
	if !ok {
		return 0, false
	}

	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// intLimit is 2^(bits-1); truncated values must lie in [-intLimit, intLimit).
const intLimit = -float64(math.MinInt)

// Int returns the field truncated toward zero. Values outside the int range
// are reported as absent.
func (r RawRecord) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	t := math.Trunc(f)
	if t < -intLimit || t >= intLimit {
		return 0, false
	}
	return int(t), true
}

// Record returns a nested object field.
func (r RawRecord) Record(key string) (RawRecord, bool) {
	v, ok := r.Value(key)
	if !ok {
		return nil, false
	}
	switch t := v.(type) {
	case RawRecord:
		return t, true
	case map[string]any:
		return RawRecord(t), true
	default:
		return nil, false
	}
}

// timeLayouts are tried in order when parsing timestamps.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// Time returns the field parsed as a timestamp. Layouts without a zone are
// interpreted as Asia/Taipei local time.
func (r RawRecord) Time(key string) (time.Time, bool) {
	s, ok := r.String(key)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, taipei); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// taipei is UTC+8 year-round; a fixed zone avoids depending on tzdata.
var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

// FilterValid keeps only the raw records whose required fields are all
// present, non-null and non-empty.
func FilterValid(raws []RawRecord, required ...string) []RawRecord {
	out := make([]RawRecord, 0, len(raws))
	for _, raw := range raws {
		if raw == nil {
			continue
		}
		valid := true
		for _, field := range required {
			if !raw.Has(field) {
				valid = false
				break
			}
		}
		if valid {
			out = append(out, raw)
		}
	}
	return out
}
