package availability

import (
	"sort"

	"cabinrent/internal/domain/cabins"
	"cabinrent/internal/domain/reservations"
	"cabinrent/internal/domain/shared/civil"
	"cabinrent/internal/domain/shared/daterange"
)

// Block is an occupied stretch of a cabin calendar.
type Block struct {
	Range         daterange.DateRange
	ReservationID reservations.ReservationID
	Status        reservations.Status
}

type Calendar struct {
	CabinID cabins.CabinID
	Window  daterange.DateRange
	Blocks  []Block
	// Spans are the blocks with touching or overlapping ranges joined.
	Spans []daterange.DateRange
}

// BuildCalendar lists the active reservations of one cabin inside window,
// clipped to it and ordered by check-in.
func BuildCalendar(id cabins.CabinID, window daterange.DateRange, rs []*reservations.Reservation) (Calendar, error) {
	if err := window.Validate(); err != nil {
		return Calendar{}, err
	}
	cal := Calendar{CabinID: id, Window: window}
	for _, r := range rs {
		if r.CabinID != id || !Conflicts(r, window) {
			continue
		}
		clipped, _ := r.Range.Clip(window)
		cal.Blocks = append(cal.Blocks, Block{Range: clipped, ReservationID: r.ID, Status: r.Status})
	}
	sort.Slice(cal.Blocks, func(i, j int) bool {
		return cal.Blocks[i].Range.CheckIn.Before(cal.Blocks[j].Range.CheckIn)
	})
	for _, b := range cal.Blocks {
		if n := len(cal.Spans); n > 0 {
			if merged, ok := cal.Spans[n-1].Merge(b.Range); ok {
				cal.Spans[n-1] = merged
				continue
			}
		}
		cal.Spans = append(cal.Spans, b.Range)
	}
	return cal, nil
}

// OccupiedOn reports whether the night starting on d is taken.
func (c Calendar) OccupiedOn(d civil.Date) bool {
	for _, span := range c.Spans {
		if span.ContainsDate(d) {
			return true
		}
	}
	return false
}
