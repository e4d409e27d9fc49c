package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const (
	dateTimeLayout = "2006-01-02 15:04:05"
	dateLayout     = "2006-01-02"
)

// DateTime is a time.Time that serializes as "YYYY-MM-DD HH:MM:SS" on the
// wire instead of RFC 3339. Database scanning goes through sql.Scanner so
// pgx can read timestamp columns into it.
type DateTime struct {
	time.Time
}

// NewDateTime wraps a time.Time.
func NewDateTime(t time.Time) DateTime { return DateTime{Time: t} }

// MarshalJSON implements json.Marshaler.
func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(dateTimeLayout) + `"`), nil
}

// UnmarshalJSON accepts the wire layout and RFC 3339 for convenience.
func (d *DateTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{dateTimeLayout, time.RFC3339, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid datetime %q", s)
}

// Scan implements sql.Scanner.
func (d *DateTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
	case time.Time:
		d.Time = v
	case string:
		return d.UnmarshalJSON([]byte(`"` + v + `"`))
	default:
		return fmt.Errorf("cannot scan %T into DateTime", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (d DateTime) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Date is a day-granular DateTime serializing as "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate truncates t to day granularity.
func NewDate(t time.Time) Date {
	y, m, day := t.Date()
	return Date{Time: time.Date(y, m, day, 0, 0, 0, 0, t.Location())}
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q", s)
	}
	d.Time = t
	return nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
	case time.Time:
		*d = NewDate(v)
	case string:
		return d.UnmarshalJSON([]byte(`"` + v + `"`))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.Time, nil
}

// Equal reports whether two dates fall on the same day.
func (d Date) Equal(other Date) bool {
	return d.Format(dateLayout) == other.Format(dateLayout)
}
