package cabins

import (
	"context"

	"cabinrent/internal/app/dto"
	"cabinrent/internal/app/handlers/support"
	"cabinrent/internal/app/queries"
	"cabinrent/internal/app/uow"
	domaincabins "cabinrent/internal/domain/cabins"
)

const (
	listCabinsKey = "cabins.list"
	getCabinKey   = "cabins.get"
)

type ListCabinsQuery struct{}

func (q ListCabinsQuery) Key() string { return listCabinsKey }

type ListCabinsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListCabinsHandler) Handle(ctx context.Context, _ ListCabinsQuery) (dto.CabinCollection, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CabinCollection{}, err
	}
	defer support.Release(cleanup)

	items, err := unit.Cabins().List(ctx)
	if err != nil {
		return dto.CabinCollection{}, err
	}
	domaincabins.SortByName(items)
	return dto.MapCabins(items), nil
}

type GetCabinQuery struct {
	CabinID string `validate:"required"`
}

func (q GetCabinQuery) Key() string { return getCabinKey }

type GetCabinHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetCabinHandler) Handle(ctx context.Context, q GetCabinQuery) (dto.Cabin, error) {
	unit, ctx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Cabin{}, err
	}
	defer support.Release(cleanup)

	cabin, err := unit.Cabins().ByID(ctx, domaincabins.CabinID(q.CabinID))
	if err != nil {
		return dto.Cabin{}, err
	}
	return dto.MapCabin(cabin), nil
}

var (
	_ queries.Handler[ListCabinsQuery, dto.CabinCollection] = (*ListCabinsHandler)(nil)
	_ queries.Handler[GetCabinQuery, dto.Cabin]             = (*GetCabinHandler)(nil)
)
