package availability

import (
	"context"

	"cabinrent/internal/app/dto"
	"cabinrent/internal/app/handlers/support"
	"cabinrent/internal/app/queries"
	"cabinrent/internal/app/uow"
	domainavailability "cabinrent/internal/domain/availability"
	domaincabins "cabinrent/internal/domain/cabins"
	"cabinrent/internal/domain/shared/daterange"
)

const findAvailableKey = "availability.find"

// FindAvailableCabinsQuery carries raw YYYY-MM-DD strings; parsing happens in
// the handler so malformed input surfaces as a validation error.
type FindAvailableCabinsQuery struct {
	From string `validate:"required"`
	To   string `validate:"required"`
}

func (q FindAvailableCabinsQuery) Key() string { return findAvailableKey }

type FindAvailableCabinsHandler struct {
	UoWFactory uow.UoWFactory
	MaxNights  int
}

func (h *FindAvailableCabinsHandler) Handle(ctx context.Context, q FindAvailableCabinsQuery) (dto.CabinCollection, error) {
	dr, err := daterange.Parse(q.From, q.To)
	if err != nil {
		return dto.CabinCollection{}, err
	}
	if err := dr.CheckNights(h.MaxNights); err != nil {
		return dto.CabinCollection{}, err
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CabinCollection{}, err
	}
	defer support.Release(cleanup)

	all, err := unit.Cabins().List(ctx)
	if err != nil {
		return dto.CabinCollection{}, err
	}
	candidates, err := unit.Reservations().ListOverlapping(ctx, dr)
	if err != nil {
		return dto.CabinCollection{}, err
	}
	free, err := domainavailability.FindAvailableCabins(dr, all, candidates)
	if err != nil {
		return dto.CabinCollection{}, err
	}
	domaincabins.SortByName(free)
	return dto.MapCabins(free), nil
}

var _ queries.Handler[FindAvailableCabinsQuery, dto.CabinCollection] = (*FindAvailableCabinsHandler)(nil)
