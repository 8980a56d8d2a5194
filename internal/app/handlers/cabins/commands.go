package cabins

import (
	"context"

	"github.com/google/uuid"

	"cabinrent/internal/app/commands"
	"cabinrent/internal/app/dto"
	"cabinrent/internal/app/handlers/support"
	"cabinrent/internal/app/outbox"
	"cabinrent/internal/app/policies"
	"cabinrent/internal/app/uow"
	domaincabins "cabinrent/internal/domain/cabins"
)

const (
	createCabinKey = "cabins.create"
	updateCabinKey = "cabins.update"
)

type CreateCabinCommand struct {
	Name        string   `validate:"required,max=120"`
	Description string   `validate:"max=4000"`
	Capacity    int      `validate:"min=1,max=50"`
	Bedrooms    int      `validate:"min=0,max=50"`
	Amenities   []string `validate:"max=50,dive,max=60"`
}

func (c CreateCabinCommand) Key() string { return createCabinKey }

type UpdateCabinCommand struct {
	CabinID     string   `validate:"required"`
	Name        string   `validate:"required,max=120"`
	Description string   `validate:"max=4000"`
	Capacity    int      `validate:"min=1,max=50"`
	Bedrooms    int      `validate:"min=0,max=50"`
	Amenities   []string `validate:"max=50,dive,max=60"`
}

func (c UpdateCabinCommand) Key() string { return updateCabinKey }

// Handler serves every cabin command; they share the same dependencies.
type Handler struct {
	UoWFactory  uow.UoWFactory
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Images      policies.ImageStorage
	Clock       policies.Clock
	IDGenerator func() string
}

func (h *Handler) Create() commands.Handler[CreateCabinCommand, *dto.Cabin] {
	return commands.HandlerFunc[CreateCabinCommand, *dto.Cabin](h.create)
}

func (h *Handler) Update() commands.Handler[UpdateCabinCommand, *dto.Cabin] {
	return commands.HandlerFunc[UpdateCabinCommand, *dto.Cabin](h.update)
}

func (h *Handler) create(ctx context.Context, cmd CreateCabinCommand) (*dto.Cabin, error) {
	return support.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Cabin, error) {
		cabin, err := domaincabins.NewCabin(domaincabins.Params{
			ID:          domaincabins.CabinID(h.newID()),
			Name:        cmd.Name,
			Description: cmd.Description,
			Capacity:    cmd.Capacity,
			Bedrooms:    cmd.Bedrooms,
			Amenities:   cmd.Amenities,
			Now:         h.Clock.Now(),
		})
		if err != nil {
			return nil, err
		}
		return h.persist(ctx, unit, cabin)
	})
}

func (h *Handler) update(ctx context.Context, cmd UpdateCabinCommand) (*dto.Cabin, error) {
	return support.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Cabin, error) {
		cabin, err := unit.Cabins().ByID(ctx, domaincabins.CabinID(cmd.CabinID))
		if err != nil {
			return nil, err
		}
		err = cabin.Update(domaincabins.Params{
			Name:        cmd.Name,
			Description: cmd.Description,
			Capacity:    cmd.Capacity,
			Bedrooms:    cmd.Bedrooms,
			Amenities:   cmd.Amenities,
		}, h.Clock.Now())
		if err != nil {
			return nil, err
		}
		return h.persist(ctx, unit, cabin)
	})
}

func (h *Handler) persist(ctx context.Context, unit uow.UnitOfWork, cabin *domaincabins.Cabin) (*dto.Cabin, error) {
	if err := unit.Cabins().Save(ctx, cabin); err != nil {
		return nil, err
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, cabin); err != nil {
		return nil, err
	}
	out := dto.MapCabin(cabin)
	return &out, nil
}

func (h *Handler) newID() string {
	if h.IDGenerator != nil {
		return h.IDGenerator()
	}
	return uuid.NewString()
}
