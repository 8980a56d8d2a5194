package dto

import (
	"time"

	domainreservations "cabinrent/internal/domain/reservations"
	"cabinrent/internal/domain/shared/civil"
)

type Guest struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Notes string `json:"notes,omitempty"`
}

type Reservation struct {
	ID           string     `json:"id"`
	CabinID      string     `json:"cabin_id"`
	CheckIn      civil.Date `json:"check_in"`
	CheckOut     civil.Date `json:"check_out"`
	Nights       int        `json:"nights"`
	Status       string     `json:"status"`
	TotalPrice   int64      `json:"total_price"`
	Guest        Guest      `json:"guest"`
	Guests       int        `json:"guests"`
	CancelReason string     `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type ReservationCollection struct {
	Items []Reservation `json:"items"`
	Total int           `json:"total"`
}

func MapReservation(r *domainreservations.Reservation) Reservation {
	if r == nil {
		return Reservation{}
	}
	return Reservation{
		ID:           string(r.ID),
		CabinID:      string(r.CabinID),
		CheckIn:      r.Range.CheckIn,
		CheckOut:     r.Range.CheckOut,
		Nights:       r.Range.Nights(),
		Status:       string(r.Status),
		TotalPrice:   r.TotalPrice,
		Guest:        Guest(r.Guest),
		Guests:       r.Guests,
		CancelReason: r.CancelReason,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func MapReservations(items []*domainreservations.Reservation) ReservationCollection {
	out := ReservationCollection{Items: make([]Reservation, 0, len(items))}
	for _, r := range items {
		out.Items = append(out.Items, MapReservation(r))
	}
	out.Total = len(out.Items)
	return out
}
