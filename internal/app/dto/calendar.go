package dto

import (
	"cabinrent/internal/domain/availability"
	domainpricing "cabinrent/internal/domain/pricing"
	"cabinrent/internal/domain/shared/civil"
)

type CalendarBlock struct {
	From          civil.Date `json:"from"`
	To            civil.Date `json:"to"`
	ReservationID string     `json:"reservation_id"`
	Status        string     `json:"status"`
}

// CalendarDay describes the night starting on Date.
type CalendarDay struct {
	Date      civil.Date `json:"date"`
	Available bool       `json:"available"`
	Kind      string     `json:"kind"`
	Rate      int64      `json:"rate"`
}

// CalendarSpan is a stretch of consecutive occupied nights.
type CalendarSpan struct {
	From civil.Date `json:"from"`
	To   civil.Date `json:"to"`
}

type CabinCalendar struct {
	CabinID  string          `json:"cabin_id"`
	From     civil.Date      `json:"from"`
	To       civil.Date      `json:"to"`
	Blocks   []CalendarBlock `json:"blocks"`
	Occupied []CalendarSpan  `json:"occupied"`
	Days     []CalendarDay   `json:"days"`
}

// MapCalendar renders blocks and one entry per night of the window, with the
// tariff hint the engine would charge for that date.
func MapCalendar(cal availability.Calendar, engine *domainpricing.Engine) CabinCalendar {
	out := CabinCalendar{
		CabinID:  string(cal.CabinID),
		From:     cal.Window.CheckIn,
		To:       cal.Window.CheckOut,
		Blocks:   make([]CalendarBlock, 0, len(cal.Blocks)),
		Occupied: make([]CalendarSpan, 0, len(cal.Spans)),
		Days:     make([]CalendarDay, 0, cal.Window.Nights()),
	}
	for _, b := range cal.Blocks {
		out.Blocks = append(out.Blocks, CalendarBlock{
			From:          b.Range.CheckIn,
			To:            b.Range.CheckOut,
			ReservationID: string(b.ReservationID),
			Status:        string(b.Status),
		})
	}
	for _, span := range cal.Spans {
		out.Occupied = append(out.Occupied, CalendarSpan{From: span.CheckIn, To: span.CheckOut})
	}
	for d := cal.Window.CheckIn; d.Before(cal.Window.CheckOut); d = d.AddDays(1) {
		day := CalendarDay{Date: d, Available: !cal.OccupiedOn(d)}
		if engine != nil {
			entry := engine.Day(d)
			day.Kind = string(entry.Kind)
			day.Rate = entry.Rate
		}
		out.Days = append(out.Days, day)
	}
	return out
}
