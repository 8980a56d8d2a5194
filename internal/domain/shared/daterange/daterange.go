package daterange

import (
	"errors"
	"fmt"

	"cabinrent/internal/domain/shared/civil"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must be after checkin")
	ErrTooLong      = errors.New("daterange: range is longer than allowed")
	ErrPastCheckIn  = errors.New("daterange: checkin is in the past")
)

const (
	// DefaultMaxStayNights bounds a single reservation.
	DefaultMaxStayNights = 90
	// MaxWindowNights bounds quote, calendar and search windows.
	MaxWindowNights = 366
)

// DateRange represents a half-open interval [CheckIn, CheckOut) of civil dates.
type DateRange struct {
	CheckIn  civil.Date `json:"check_in"`
	CheckOut civil.Date `json:"check_out"`
}

func New(checkIn, checkOut civil.Date) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn, CheckOut: checkOut}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// Parse builds a range from two date strings, reporting the first malformed side.
func Parse(from, to string) (DateRange, error) {
	checkIn, err := civil.Parse(from)
	if err != nil {
		return DateRange{}, fmt.Errorf("from: %w", err)
	}
	checkOut, err := civil.Parse(to)
	if err != nil {
		return DateRange{}, fmt.Errorf("to: %w", err)
	}
	return New(checkIn, checkOut)
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if !dr.CheckOut.After(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return dr.CheckIn.DaysUntil(dr.CheckOut)
}

// CheckNights rejects ranges longer than max nights. A non-positive max
// falls back to MaxWindowNights.
func (dr DateRange) CheckNights(max int) error {
	if max <= 0 {
		max = MaxWindowNights
	}
	if n := dr.Nights(); n > max {
		return fmt.Errorf("%w: %d nights, at most %d", ErrTooLong, n, max)
	}
	return nil
}

// CheckStartsFrom rejects ranges whose check-in is before today.
func (dr DateRange) CheckStartsFrom(today civil.Date) error {
	if dr.CheckIn.Before(today) {
		return fmt.Errorf("%w: %s is before %s", ErrPastCheckIn, dr.CheckIn, today)
	}
	return nil
}

// Overlaps reports a half-open intersection; ranges that only touch do not overlap.
func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) ContainsDate(d civil.Date) bool {
	return !d.Before(dr.CheckIn) && d.Before(dr.CheckOut)
}

func (dr DateRange) Adjacent(other DateRange) bool {
	return dr.CheckOut.Equal(other.CheckIn) || dr.CheckIn.Equal(other.CheckOut)
}

// Merge joins two ranges that overlap or touch.
func (dr DateRange) Merge(other DateRange) (DateRange, bool) {
	if !(dr.Overlaps(other) || dr.Adjacent(other)) {
		return DateRange{}, false
	}
	start := dr.CheckIn
	if other.CheckIn.Before(start) {
		start = other.CheckIn
	}
	end := dr.CheckOut
	if other.CheckOut.After(end) {
		end = other.CheckOut
	}
	return DateRange{CheckIn: start, CheckOut: end}, true
}

// Clip narrows dr to window. The second result is false when they do not overlap.
func (dr DateRange) Clip(window DateRange) (DateRange, bool) {
	if !dr.Overlaps(window) {
		return DateRange{}, false
	}
	out := dr
	if out.CheckIn.Before(window.CheckIn) {
		out.CheckIn = window.CheckIn
	}
	if out.CheckOut.After(window.CheckOut) {
		out.CheckOut = window.CheckOut
	}
	return out, true
}

// InclusiveDays lists every date from CheckIn through CheckOut, both ends included.
// Pricing charges the checkout date too, unlike the half-open occupancy rule.
func (dr DateRange) InclusiveDays() []civil.Date {
	if dr.Validate() != nil {
		return nil
	}
	days := make([]civil.Date, 0, dr.Nights()+1)
	for d := dr.CheckIn; !d.After(dr.CheckOut); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

func (dr DateRange) String() string {
	return dr.CheckIn.String() + "/" + dr.CheckOut.String()
}
