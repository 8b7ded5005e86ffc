package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// StringSlice is a []string persisted as a JSON column (tags,
// categories). A nil slice maps to SQL NULL.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringSlice) Scan(src any) error {
	if src == nil {
		*s = nil
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into StringSlice", src)
	}
	return json.Unmarshal(data, (*[]string)(s))
}

// Date is a calendar date without a time component (due dates). It
// marshals as "2006-01-02".
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(time.DateOnly))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ChangeID is the id a client attaches to an uploaded change: a
// server-assigned integer for records that have synced before, or an
// opaque client-generated token (or nothing) for records created
// offline. Only a numeric id can address an existing server record.
type ChangeID struct {
	// Int64 is the server id; valid only when Server is true.
	Int64 int64
	// Server reports whether the client supplied a numeric id.
	Server bool
	// Raw keeps a non-numeric client token verbatim.
	Raw string
}

func (c *ChangeID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = ChangeID{}
		return nil
	}

	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*c = ChangeID{Int64: n, Server: true}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Any other shape (fraction, bool, object) can never address a
		// server record. Keep it verbatim as an opaque client token:
		// one odd id must not fail decoding of the whole batch.
		*c = ChangeID{Raw: string(b)}
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*c = ChangeID{Int64: n, Server: true, Raw: s}
		return nil
	}
	*c = ChangeID{Raw: s}
	return nil
}

func (c ChangeID) MarshalJSON() ([]byte, error) {
	if c.Server {
		return json.Marshal(c.Int64)
	}
	if c.Raw != "" {
		return json.Marshal(c.Raw)
	}
	return []byte("null"), nil
}
