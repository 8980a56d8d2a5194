package reservations

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"cabinrent/internal/app/apperr"
	"cabinrent/internal/app/commands"
	"cabinrent/internal/app/dto"
	"cabinrent/internal/app/handlers/support"
	"cabinrent/internal/app/middleware"
	"cabinrent/internal/app/outbox"
	"cabinrent/internal/app/policies"
	"cabinrent/internal/app/uow"
	domainavailability "cabinrent/internal/domain/availability"
	domaincabins "cabinrent/internal/domain/cabins"
	domainpricing "cabinrent/internal/domain/pricing"
	domainreservations "cabinrent/internal/domain/reservations"
	"cabinrent/internal/domain/shared/civil"
	"cabinrent/internal/domain/shared/daterange"
)

const createReservationKey = "reservations.create"

type CreateReservationCommand struct {
	CabinID         string `validate:"required"`
	From            string `validate:"required"`
	To              string `validate:"required"`
	GuestName       string `validate:"required,max=120"`
	GuestEmail      string `validate:"required_without=GuestPhone,omitempty,email,max=254"`
	GuestPhone      string `validate:"required_without=GuestEmail,omitempty,max=40"`
	Notes           string `validate:"max=2000"`
	Guests          int    `validate:"min=1,max=50"`
	IdempotencyKeyV string `validate:"max=128"`
}

func (c CreateReservationCommand) Key() string { return createReservationKey }

func (c CreateReservationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c CreateReservationCommand) ResultPrototype() any { return &dto.Reservation{} }

// Handler serves reservation commands. Every write runs inside one unit of
// work and relies on the repository guard for the final overlap check.
type Handler struct {
	UoWFactory  uow.UoWFactory
	Pricing     *domainpricing.Engine
	Outbox      outbox.Outbox
	Encoder     outbox.EventEncoder
	Clock       policies.Clock
	Logger      *slog.Logger
	IDGenerator func() string
	// MaxNights caps one stay; zero means daterange.DefaultMaxStayNights.
	MaxNights int
}

func (h *Handler) Create() commands.Handler[CreateReservationCommand, *dto.Reservation] {
	return commands.HandlerFunc[CreateReservationCommand, *dto.Reservation](h.create)
}

func (h *Handler) create(ctx context.Context, cmd CreateReservationCommand) (*dto.Reservation, error) {
	dr, err := h.parseStay(cmd.From, cmd.To)
	if err != nil {
		return nil, err
	}
	return support.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Reservation, error) {
		cabin, err := unit.Cabins().ByID(ctx, domaincabins.CabinID(cmd.CabinID))
		if err != nil {
			return nil, err
		}
		if cmd.Guests > cabin.Capacity {
			return nil, apperr.Validation(fmt.Sprintf("cabin %s sleeps at most %d guests", cabin.ID, cabin.Capacity))
		}
		existing, err := unit.Reservations().ListOverlapping(ctx, dr)
		if err != nil {
			return nil, err
		}
		if !domainavailability.IsCabinAvailable(cabin.ID, dr, existing) {
			return nil, domainreservations.ErrConflict
		}
		quote, err := h.quote(ctx, dr)
		if err != nil {
			return nil, err
		}
		r, err := domainreservations.NewReservation(domainreservations.CreateParams{
			ID:         domainreservations.ReservationID(h.newID()),
			CabinID:    cabin.ID,
			Range:      dr,
			TotalPrice: quote.Total,
			Guest: domainreservations.Guest{
				Name:  cmd.GuestName,
				Email: cmd.GuestEmail,
				Phone: cmd.GuestPhone,
				Notes: cmd.Notes,
			},
			Guests:    cmd.Guests,
			CreatedAt: h.Clock.Now(),
		})
		if err != nil {
			return nil, err
		}
		if err := unit.Reservations().Add(ctx, r); err != nil {
			return nil, err
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, r); err != nil {
			return nil, err
		}
		h.logger().InfoContext(ctx, "reservation requested",
			"reservation_id", r.ID, "cabin_id", r.CabinID, "range", dr.String(), "total", r.TotalPrice)
		out := dto.MapReservation(r)
		return &out, nil
	})
}

// parseStay parses a requested stay and rejects check-ins before today in
// civil.Zone and stays longer than MaxNights.
func (h *Handler) parseStay(from, to string) (daterange.DateRange, error) {
	dr, err := daterange.Parse(from, to)
	if err != nil {
		return daterange.DateRange{}, err
	}
	if err := dr.CheckStartsFrom(civil.Of(h.Clock.Now())); err != nil {
		return daterange.DateRange{}, err
	}
	max := h.MaxNights
	if max <= 0 {
		max = daterange.DefaultMaxStayNights
	}
	if err := dr.CheckNights(max); err != nil {
		return daterange.DateRange{}, err
	}
	return dr, nil
}

func (h *Handler) quote(ctx context.Context, dr daterange.DateRange) (domainpricing.PriceQuote, error) {
	if h.Pricing == nil {
		return domainpricing.PriceQuote{}, fmt.Errorf("reservations: pricing engine not configured")
	}
	if years := h.Pricing.UncoveredYears(dr); len(years) > 0 {
		h.logger().WarnContext(ctx, "holiday calendar does not cover reserved years", "years", years)
	}
	return h.Pricing.Quote(dr)
}

func (h *Handler) newID() string {
	if h.IDGenerator != nil {
		return h.IDGenerator()
	}
	return uuid.NewString()
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

var _ middleware.IdempotentCommand = CreateReservationCommand{}
