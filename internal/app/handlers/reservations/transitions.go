package reservations

import (
	"context"

	"cabinrent/internal/app/commands"
	"cabinrent/internal/app/dto"
	"cabinrent/internal/app/handlers/support"
	"cabinrent/internal/app/outbox"
	"cabinrent/internal/app/uow"
	domainavailability "cabinrent/internal/domain/availability"
	domainreservations "cabinrent/internal/domain/reservations"
)

const (
	confirmReservationKey    = "reservations.confirm"
	cancelReservationKey     = "reservations.cancel"
	rescheduleReservationKey = "reservations.reschedule"
	deleteReservationKey     = "reservations.delete"
)

type ConfirmReservationCommand struct {
	ReservationID string `validate:"required"`
}

func (c ConfirmReservationCommand) Key() string { return confirmReservationKey }

type CancelReservationCommand struct {
	ReservationID string `validate:"required"`
	Reason        string `validate:"max=500"`
}

func (c CancelReservationCommand) Key() string { return cancelReservationKey }

type RescheduleReservationCommand struct {
	ReservationID string `validate:"required"`
	From          string `validate:"required"`
	To            string `validate:"required"`
}

func (c RescheduleReservationCommand) Key() string { return rescheduleReservationKey }

type DeleteReservationCommand struct {
	ReservationID string `validate:"required"`
}

func (c DeleteReservationCommand) Key() string { return deleteReservationKey }

func (h *Handler) Confirm() commands.Handler[ConfirmReservationCommand, *dto.Reservation] {
	return commands.HandlerFunc[ConfirmReservationCommand, *dto.Reservation](func(ctx context.Context, cmd ConfirmReservationCommand) (*dto.Reservation, error) {
		return h.mutate(ctx, cmd.ReservationID, func(unit uow.UnitOfWork, r *domainreservations.Reservation) (bool, error) {
			if r.Status == domainreservations.StatusConfirmed {
				return false, nil
			}
			return true, r.Confirm(h.Clock.Now())
		})
	})
}

// Cancel succeeds on an already cancelled reservation without writing anything.
func (h *Handler) Cancel() commands.Handler[CancelReservationCommand, *dto.Reservation] {
	return commands.HandlerFunc[CancelReservationCommand, *dto.Reservation](func(ctx context.Context, cmd CancelReservationCommand) (*dto.Reservation, error) {
		return h.mutate(ctx, cmd.ReservationID, func(unit uow.UnitOfWork, r *domainreservations.Reservation) (bool, error) {
			return r.Cancel(cmd.Reason, h.Clock.Now()), nil
		})
	})
}

// Reschedule moves an active reservation and re-prices it. Its own current
// range never blocks the new one.
func (h *Handler) Reschedule() commands.Handler[RescheduleReservationCommand, *dto.Reservation] {
	return commands.HandlerFunc[RescheduleReservationCommand, *dto.Reservation](func(ctx context.Context, cmd RescheduleReservationCommand) (*dto.Reservation, error) {
		dr, err := h.parseStay(cmd.From, cmd.To)
		if err != nil {
			return nil, err
		}
		return h.mutate(ctx, cmd.ReservationID, func(unit uow.UnitOfWork, r *domainreservations.Reservation) (bool, error) {
			if !r.IsActive() {
				return false, domainreservations.ErrInvalidTransition
			}
			existing, err := unit.Reservations().ListOverlapping(ctx, dr)
			if err != nil {
				return false, err
			}
			others := existing[:0:0]
			for _, other := range existing {
				if other.ID != r.ID {
					others = append(others, other)
				}
			}
			if !domainavailability.IsCabinAvailable(r.CabinID, dr, others) {
				return false, domainreservations.ErrConflict
			}
			quote, err := h.quote(ctx, dr)
			if err != nil {
				return false, err
			}
			return true, r.Reschedule(dr, quote.Total, h.Clock.Now())
		})
	})
}

func (h *Handler) Delete() commands.Handler[DeleteReservationCommand, *dto.Reservation] {
	return commands.HandlerFunc[DeleteReservationCommand, *dto.Reservation](func(ctx context.Context, cmd DeleteReservationCommand) (*dto.Reservation, error) {
		return support.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Reservation, error) {
			r, err := unit.Reservations().ByID(ctx, domainreservations.ReservationID(cmd.ReservationID))
			if err != nil {
				return nil, err
			}
			r.MarkDeleted(h.Clock.Now())
			if err := unit.Reservations().Delete(ctx, r.ID); err != nil {
				return nil, err
			}
			if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, r); err != nil {
				return nil, err
			}
			h.logger().InfoContext(ctx, "reservation deleted", "reservation_id", r.ID)
			out := dto.MapReservation(r)
			return &out, nil
		})
	})
}

// mutate loads a reservation, applies change and persists it when change
// reports a modification.
func (h *Handler) mutate(ctx context.Context, id string, change func(unit uow.UnitOfWork, r *domainreservations.Reservation) (bool, error)) (*dto.Reservation, error) {
	return support.WithUnit(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) (*dto.Reservation, error) {
		r, err := unit.Reservations().ByID(ctx, domainreservations.ReservationID(id))
		if err != nil {
			return nil, err
		}
		changed, err := change(unit, r)
		if err != nil {
			return nil, err
		}
		if changed {
			if err := unit.Reservations().Update(ctx, r); err != nil {
				return nil, err
			}
			if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, r); err != nil {
				return nil, err
			}
			h.logger().InfoContext(ctx, "reservation updated", "reservation_id", r.ID, "status", r.Status)
		}
		out := dto.MapReservation(r)
		return &out, nil
	})
}
