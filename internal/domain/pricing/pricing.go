package pricing

import (
	"errors"
	"time"

	"cabinrent/internal/domain/shared/civil"
	"cabinrent/internal/domain/shared/daterange"
)

var (
	ErrNegativeTariff  = errors.New("pricing: tariffs must be non-negative")
	ErrCalendarMissing = errors.New("pricing: holiday calendar is required")
)

// DayKind is the tariff band a day falls in.
type DayKind string

const (
	KindWeekday DayKind = "weekday"
	KindWeekend DayKind = "weekend"
	KindHoliday DayKind = "holiday"
)

// Tariffs holds the nightly rate per band in the smallest currency unit.
type Tariffs struct {
	Weekday int64
	Weekend int64
	Holiday int64
}

func DefaultTariffs() Tariffs {
	return Tariffs{Weekday: 150000, Weekend: 180000, Holiday: 200000}
}

func (t Tariffs) Validate() error {
	if t.Weekday < 0 || t.Weekend < 0 || t.Holiday < 0 {
		return ErrNegativeTariff
	}
	return nil
}

func (t Tariffs) Rate(kind DayKind) int64 {
	switch kind {
	case KindHoliday:
		return t.Holiday
	case KindWeekend:
		return t.Weekend
	default:
		return t.Weekday
	}
}

var weekdayNames = [7]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

func WeekdayName(w time.Weekday) string {
	return weekdayNames[w]
}

type DayEntry struct {
	Date        civil.Date
	Weekday     int
	WeekdayName string
	Rate        int64
	Kind        DayKind
	HolidayName string
}

type PriceQuote struct {
	Range daterange.DateRange
	Days  []DayEntry
	Total int64
}

// Engine prices date ranges against a holiday calendar and three tariff bands.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	calendar *HolidayCalendar
	tariffs  Tariffs
}

func NewEngine(calendar *HolidayCalendar, tariffs Tariffs) (*Engine, error) {
	if calendar == nil {
		return nil, ErrCalendarMissing
	}
	if err := tariffs.Validate(); err != nil {
		return nil, err
	}
	return &Engine{calendar: calendar, tariffs: tariffs}, nil
}

func (e *Engine) Calendar() *HolidayCalendar { return e.calendar }
func (e *Engine) Tariffs() Tariffs           { return e.tariffs }

func (e *Engine) IsHoliday(d civil.Date) bool {
	return e.calendar.IsHoliday(d)
}

// Classify applies holiday > weekend > weekday precedence.
func (e *Engine) Classify(d civil.Date) DayKind {
	if e.calendar.IsHoliday(d) {
		return KindHoliday
	}
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return KindWeekend
	}
	return KindWeekday
}

func (e *Engine) DayRate(d civil.Date) int64 {
	return e.tariffs.Rate(e.Classify(d))
}

func (e *Engine) Day(d civil.Date) DayEntry {
	kind := e.Classify(d)
	name, _ := e.calendar.Name(d)
	w := d.Weekday()
	return DayEntry{
		Date:        d,
		Weekday:     int(w),
		WeekdayName: WeekdayName(w),
		Rate:        e.tariffs.Rate(kind),
		Kind:        kind,
		HolidayName: name,
	}
}

// Quote prices every date from CheckIn through CheckOut inclusive; the
// checkout date is charged too.
func (e *Engine) Quote(dr daterange.DateRange) (PriceQuote, error) {
	if err := dr.Validate(); err != nil {
		return PriceQuote{}, err
	}
	days := dr.InclusiveDays()
	quote := PriceQuote{Range: dr, Days: make([]DayEntry, 0, len(days))}
	for _, d := range days {
		entry := e.Day(d)
		quote.Days = append(quote.Days, entry)
		quote.Total += entry.Rate
	}
	return quote, nil
}

// UncoveredYears lists the years touched by dr that the calendar has no data for.
func (e *Engine) UncoveredYears(dr daterange.DateRange) []int {
	var out []int
	for y := dr.CheckIn.Year; y <= dr.CheckOut.Year; y++ {
		if !e.calendar.Covers(y) {
			out = append(out, y)
		}
	}
	return out
}
