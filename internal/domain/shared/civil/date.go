// Package civil models calendar dates without time-of-day, anchored to the
// fixed civil zone the business operates in.
package civil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const layout = "2006-01-02"

// Zone is the single civil zone every date is interpreted in (UTC-3, Argentina).
// It is fixed on purpose and never derived from the process environment.
var Zone = time.FixedZone("ART", -3*60*60)

var ErrInvalidDate = errors.New("civil: invalid date")

// Date is a calendar day in Zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New builds a normalized date; out-of-range days roll over like time.Date.
func New(year int, month time.Month, day int) Date {
	return Of(time.Date(year, month, day, 0, 0, 0, 0, Zone))
}

// Of re-interprets an instant in Zone and returns its calendar day.
func Of(t time.Time) Date {
	t = t.In(Zone)
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today is the current civil date in Zone.
func Today() Date {
	return Of(time.Now())
}

// Parse accepts YYYY-MM-DD, or an RFC3339 timestamp which is first moved into Zone.
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}
	if t, err := time.ParseInLocation(layout, s, Zone); err == nil {
		return Of(t), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Of(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// MustParse is Parse that panics; meant for fixtures and tests.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// Midnight returns the start of the day in Zone.
func (d Date) Midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, Zone)
}

func (d Date) AddDays(n int) Date {
	return Of(d.Midnight().AddDate(0, 0, n))
}

func (d Date) Weekday() time.Weekday {
	return d.Midnight().Weekday()
}

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Date) Before(other Date) bool { return d.Compare(other) < 0 }
func (d Date) After(other Date) bool  { return d.Compare(other) > 0 }
func (d Date) Equal(other Date) bool  { return d.Compare(other) == 0 }

// DaysUntil counts calendar days from d to other (negative when other is earlier).
func (d Date) DaysUntil(other Date) int {
	// both midnights share the fixed offset, so there is no DST drift
	return int((other.Midnight().Unix() - d.Midnight().Unix()) / 86400)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Midnight().Format(layout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
