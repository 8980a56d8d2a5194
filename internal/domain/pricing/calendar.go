package pricing

import (
	"sort"
	"strings"

	"cabinrent/internal/domain/shared/civil"
)

type Holiday struct {
	Date civil.Date
	Name string
}

// HolidayCalendar is an immutable year -> dates table. Build it once and share
// it freely; nothing mutates it after NewHolidayCalendar returns.
type HolidayCalendar struct {
	years map[int]map[civil.Date]string
}

func NewHolidayCalendar(holidays []Holiday) *HolidayCalendar {
	cal := &HolidayCalendar{years: make(map[int]map[civil.Date]string)}
	for _, h := range holidays {
		if h.Date.IsZero() {
			continue
		}
		byDate, ok := cal.years[h.Date.Year]
		if !ok {
			byDate = make(map[civil.Date]string)
			cal.years[h.Date.Year] = byDate
		}
		byDate[h.Date] = strings.TrimSpace(h.Name)
	}
	return cal
}

func (c *HolidayCalendar) IsHoliday(d civil.Date) bool {
	_, ok := c.Name(d)
	return ok
}

func (c *HolidayCalendar) Name(d civil.Date) (string, bool) {
	if c == nil {
		return "", false
	}
	name, ok := c.years[d.Year][d]
	return name, ok
}

// Covers reports whether the table has any entry for year. Dates of an
// uncovered year are never holidays.
func (c *HolidayCalendar) Covers(year int) bool {
	if c == nil {
		return false
	}
	_, ok := c.years[year]
	return ok
}

func (c *HolidayCalendar) Years() []int {
	if c == nil {
		return nil
	}
	out := make([]int, 0, len(c.years))
	for y := range c.years {
		out = append(out, y)
	}
	sort.Ints(out)
	return out
}

// InYear lists the holidays of year in date order.
func (c *HolidayCalendar) InYear(year int) []Holiday {
	if c == nil {
		return nil
	}
	byDate := c.years[year]
	out := make([]Holiday, 0, len(byDate))
	for d, name := range byDate {
		out = append(out, Holiday{Date: d, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
