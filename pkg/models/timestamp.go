package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the storage and wire format for timestamps: UTC, second
// resolution, sortable as a plain string. Kept for compatibility with the
// existing schema and its consumers.
const TimeLayout = "2006-01-02 15:04:05"

// Timestamp wraps time.Time to persist and serialize in TimeLayout while
// still being compared numerically in code.
type Timestamp struct {
	time.Time
}

// Now returns the current time truncated to second resolution in UTC.
func Now() Timestamp {
	return Timestamp{time.Now().UTC().Truncate(time.Second)}
}

// At wraps an arbitrary time, normalized to UTC second resolution.
func At(t time.Time) Timestamp {
	return Timestamp{t.UTC().Truncate(time.Second)}
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}

	return []byte(`"` + t.UTC().Format(TimeLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}

	parsed, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}

	t.Time = parsed

	return nil
}

// Value implements driver.Valuer so timestamps land in SQLite as sortable
// formatted strings.
func (t Timestamp) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}

	return t.UTC().Format(TimeLayout), nil
}

// Scan implements sql.Scanner, accepting the stored string form as well as
// native time values the driver may hand back.
func (t *Timestamp) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC().Truncate(time.Second)
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}

func (t *Timestamp) parse(s string) error {
	parsed, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		// The sqlite driver may return RFC3339 for rows written by other tools.
		parsed, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid stored timestamp %q: %w", s, err)
		}
	}

	t.Time = parsed.UTC().Truncate(time.Second)

	return nil
}
