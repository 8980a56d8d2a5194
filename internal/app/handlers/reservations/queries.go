package reservations

import (
	"context"

	"cabinrent/internal/app/dto"
	"cabinrent/internal/app/handlers/support"
	"cabinrent/internal/app/queries"
	"cabinrent/internal/app/uow"
	domaincabins "cabinrent/internal/domain/cabins"
	domainreservations "cabinrent/internal/domain/reservations"
)

const (
	listReservationsKey = "reservations.list"
	getReservationKey   = "reservations.get"
)

type ListReservationsQuery struct {
	CabinID string
	Status  string `validate:"omitempty,oneof=pending confirmed cancelled"`
}

func (q ListReservationsQuery) Key() string { return listReservationsKey }

type ListReservationsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListReservationsHandler) Handle(ctx context.Context, q ListReservationsQuery) (dto.ReservationCollection, error) {
	filter := domainreservations.ListFilter{CabinID: domaincabins.CabinID(q.CabinID)}
	if q.Status != "" {
		status, err := domainreservations.ParseStatus(q.Status)
		if err != nil {
			return dto.ReservationCollection{}, err
		}
		filter.Status = status
	}
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	defer support.Release(cleanup)

	items, err := unit.Reservations().List(ctx, filter)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	return dto.MapReservations(items), nil
}

type GetReservationQuery struct {
	ReservationID string `validate:"required"`
}

func (q GetReservationQuery) Key() string { return getReservationKey }

type GetReservationHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetReservationHandler) Handle(ctx context.Context, q GetReservationQuery) (dto.Reservation, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Reservation{}, err
	}
	defer support.Release(cleanup)

	r, err := unit.Reservations().ByID(ctx, domainreservations.ReservationID(q.ReservationID))
	if err != nil {
		return dto.Reservation{}, err
	}
	return dto.MapReservation(r), nil
}

var (
	_ queries.Handler[ListReservationsQuery, dto.ReservationCollection] = (*ListReservationsHandler)(nil)
	_ queries.Handler[GetReservationQuery, dto.Reservation]             = (*GetReservationHandler)(nil)
)
