// Package timex contains small time helpers shared by the server:
// ISO-8601 timestamp parsing, a JSON-friendly duration type, and an
// injectable clock so ordering decisions stay deterministic in tests.
package timex

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Clock supplies the current time. Production code uses System; tests
// substitute a fixed implementation so every timestamp comparison is
// reproducible.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by the wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// timestampLayouts are tried in order by ParseTimestamp. Clients send
// ISO-8601 with sub-second precision; older ones omit the fraction or
// the zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses an ISO-8601 point in time, keeping sub-second
// precision when present. Layouts without a zone are interpreted as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", s)
}

// ParseDate parses a calendar date in ISO-8601 form (YYYY-MM-DD).
func ParseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

// Duration is a time.Duration that unmarshals from JSON as either a
// string such as "15m" or an integer number of nanoseconds. It is used
// by configuration DTOs.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}
