package reservations

import (
	"time"

	"cabinrent/internal/domain/cabins"
	"cabinrent/internal/domain/shared/daterange"
)

type ReservationRequested struct {
	ReservationID ReservationID       `json:"reservation_id"`
	CabinID       cabins.CabinID      `json:"cabin_id"`
	Range         daterange.DateRange `json:"range"`
	TotalPrice    int64               `json:"total_price"`
	GuestEmail    string              `json:"guest_email"`
	At            time.Time           `json:"occurred_at"`
}

func (e ReservationRequested) EventName() string     { return "reservation.requested" }
func (e ReservationRequested) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationRequested) OccurredAt() time.Time { return e.At }

type ReservationConfirmed struct {
	ReservationID ReservationID       `json:"reservation_id"`
	CabinID       cabins.CabinID      `json:"cabin_id"`
	Range         daterange.DateRange `json:"range"`
	At            time.Time           `json:"occurred_at"`
}

func (e ReservationConfirmed) EventName() string     { return "reservation.confirmed" }
func (e ReservationConfirmed) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationConfirmed) OccurredAt() time.Time { return e.At }

type ReservationCancelled struct {
	ReservationID ReservationID  `json:"reservation_id"`
	CabinID       cabins.CabinID `json:"cabin_id"`
	Reason        string         `json:"reason"`
	At            time.Time      `json:"occurred_at"`
}

func (e ReservationCancelled) EventName() string     { return "reservation.cancelled" }
func (e ReservationCancelled) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }

type ReservationRescheduled struct {
	ReservationID ReservationID       `json:"reservation_id"`
	CabinID       cabins.CabinID      `json:"cabin_id"`
	From          daterange.DateRange `json:"from"`
	To            daterange.DateRange `json:"to"`
	TotalPrice    int64               `json:"total_price"`
	At            time.Time           `json:"occurred_at"`
}

func (e ReservationRescheduled) EventName() string     { return "reservation.rescheduled" }
func (e ReservationRescheduled) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationRescheduled) OccurredAt() time.Time { return e.At }

type ReservationDeleted struct {
	ReservationID ReservationID  `json:"reservation_id"`
	CabinID       cabins.CabinID `json:"cabin_id"`
	At            time.Time      `json:"occurred_at"`
}

func (e ReservationDeleted) EventName() string     { return "reservation.deleted" }
func (e ReservationDeleted) AggregateID() string   { return string(e.ReservationID) }
func (e ReservationDeleted) OccurredAt() time.Time { return e.At }
