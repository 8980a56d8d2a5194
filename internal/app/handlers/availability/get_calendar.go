package availability

import (
	"context"

	"cabinrent/internal/app/dto"
	"cabinrent/internal/app/handlers/support"
	"cabinrent/internal/app/queries"
	"cabinrent/internal/app/uow"
	domainavailability "cabinrent/internal/domain/availability"
	domaincabins "cabinrent/internal/domain/cabins"
	domainpricing "cabinrent/internal/domain/pricing"
	"cabinrent/internal/domain/shared/daterange"
)

const getCalendarKey = "availability.calendar"

type GetCabinCalendarQuery struct {
	CabinID string `validate:"required"`
	From    string `validate:"required"`
	To      string `validate:"required"`
}

func (q GetCabinCalendarQuery) Key() string { return getCalendarKey }

type GetCabinCalendarHandler struct {
	UoWFactory uow.UoWFactory
	Pricing    *domainpricing.Engine
	// MaxNights caps the window; zero means daterange.MaxWindowNights.
	MaxNights int
}

func (h *GetCabinCalendarHandler) Handle(ctx context.Context, q GetCabinCalendarQuery) (dto.CabinCalendar, error) {
	window, err := daterange.Parse(q.From, q.To)
	if err != nil {
		return dto.CabinCalendar{}, err
	}
	if err := window.CheckNights(h.MaxNights); err != nil {
		return dto.CabinCalendar{}, err
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CabinCalendar{}, err
	}
	defer support.Release(cleanup)

	cabin, err := unit.Cabins().ByID(ctx, domaincabins.CabinID(q.CabinID))
	if err != nil {
		return dto.CabinCalendar{}, err
	}
	rs, err := unit.Reservations().ListOverlapping(ctx, window)
	if err != nil {
		return dto.CabinCalendar{}, err
	}
	cal, err := domainavailability.BuildCalendar(cabin.ID, window, rs)
	if err != nil {
		return dto.CabinCalendar{}, err
	}
	return dto.MapCalendar(cal, h.Pricing), nil
}

var _ queries.Handler[GetCabinCalendarQuery, dto.CabinCalendar] = (*GetCabinCalendarHandler)(nil)
