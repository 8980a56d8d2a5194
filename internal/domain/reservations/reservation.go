package reservations

import (
	"context"
	"errors"
	"strings"
	"time"

	"cabinrent/internal/domain/cabins"
	"cabinrent/internal/domain/shared/daterange"
	"cabinrent/internal/domain/shared/events"
)

var (
	ErrIDRequired        = errors.New("reservations: id is required")
	ErrCabinRequired     = errors.New("reservations: cabin id is required")
	ErrNegativeTotal     = errors.New("reservations: total price must be non-negative")
	ErrGuestName         = errors.New("reservations: guest name is required")
	ErrGuestContact      = errors.New("reservations: guest email or phone is required")
	ErrGuestsCount       = errors.New("reservations: guests count must be positive")
	ErrInvalidTransition = errors.New("reservations: invalid status transition")
	ErrInvalidStatus     = errors.New("reservations: unknown status")
	ErrNotFound          = errors.New("reservations: not found")
	// ErrConflict is returned by stores when an active reservation of the same
	// cabin already overlaps the requested range.
	ErrConflict = errors.New("reservations: cabin already booked for the requested dates")
	// ErrConcurrentUpdate signals a stale version on update.
	ErrConcurrentUpdate = errors.New("reservations: concurrent update detected")
)

type ReservationID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(raw string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(raw))) {
	case StatusPending:
		return StatusPending, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusCancelled:
		return StatusCancelled, nil
	}
	return "", ErrInvalidStatus
}

type Guest struct {
	Name  string
	Email string
	Phone string
	Notes string
}

type Reservation struct {
	ID           ReservationID
	CabinID      cabins.CabinID
	Range        daterange.DateRange
	Status       Status
	TotalPrice   int64
	Guest        Guest
	Guests       int
	CancelReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
	events.Recorder
}

type ListFilter struct {
	CabinID cabins.CabinID
	Status  Status
}

type Repository interface {
	ByID(ctx context.Context, id ReservationID) (*Reservation, error)
	// Add inserts a new reservation, atomically rejecting it with ErrConflict
	// when it is active and overlaps another active reservation of the cabin.
	Add(ctx context.Context, r *Reservation) error
	// Update persists a changed reservation with the same overlap guard.
	Update(ctx context.Context, r *Reservation) error
	Delete(ctx context.Context, id ReservationID) error
	ListByCabin(ctx context.Context, cabinID cabins.CabinID) ([]*Reservation, error)
	// ListOverlapping returns active reservations whose range overlaps dr.
	ListOverlapping(ctx context.Context, dr daterange.DateRange) ([]*Reservation, error)
	List(ctx context.Context, filter ListFilter) ([]*Reservation, error)
}

type CreateParams struct {
	ID         ReservationID
	CabinID    cabins.CabinID
	Range      daterange.DateRange
	TotalPrice int64
	Guest      Guest
	Guests     int
	CreatedAt  time.Time
}

func NewReservation(params CreateParams) (*Reservation, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if strings.TrimSpace(string(params.CabinID)) == "" {
		return nil, ErrCabinRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if params.TotalPrice < 0 {
		return nil, ErrNegativeTotal
	}
	if params.Guests < 1 {
		return nil, ErrGuestsCount
	}
	guest, err := normalizeGuest(params.Guest)
	if err != nil {
		return nil, err
	}
	now := params.CreatedAt.UTC()
	r := &Reservation{
		ID:         params.ID,
		CabinID:    params.CabinID,
		Range:      params.Range,
		Status:     StatusPending,
		TotalPrice: params.TotalPrice,
		Guest:      guest,
		Guests:     params.Guests,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.Record(ReservationRequested{
		ReservationID: r.ID,
		CabinID:       r.CabinID,
		Range:         r.Range,
		TotalPrice:    r.TotalPrice,
		GuestEmail:    r.Guest.Email,
		At:            now,
	})
	return r, nil
}

func (r *Reservation) IsActive() bool {
	return r.Status != StatusCancelled
}

// ConflictsWith applies the half-open overlap rule to active reservations only.
func (r *Reservation) ConflictsWith(dr daterange.DateRange) bool {
	if r == nil || !r.IsActive() {
		return false
	}
	return r.Range.Overlaps(dr)
}

// Confirm is a no-op for already confirmed reservations.
func (r *Reservation) Confirm(now time.Time) error {
	switch r.Status {
	case StatusConfirmed:
		return nil
	case StatusPending:
	default:
		return ErrInvalidTransition
	}
	r.Status = StatusConfirmed
	r.UpdatedAt = now.UTC()
	r.Record(ReservationConfirmed{ReservationID: r.ID, CabinID: r.CabinID, Range: r.Range, At: r.UpdatedAt})
	return nil
}

// Cancel is idempotent: cancelling twice changes nothing the second time and
// records no event. It reports whether the status actually changed.
func (r *Reservation) Cancel(reason string, now time.Time) bool {
	if r.Status == StatusCancelled {
		return false
	}
	r.Status = StatusCancelled
	r.CancelReason = strings.TrimSpace(reason)
	r.UpdatedAt = now.UTC()
	r.Record(ReservationCancelled{ReservationID: r.ID, CabinID: r.CabinID, Reason: r.CancelReason, At: r.UpdatedAt})
	return true
}

func (r *Reservation) Reschedule(dr daterange.DateRange, total int64, now time.Time) error {
	if !r.IsActive() {
		return ErrInvalidTransition
	}
	if err := dr.Validate(); err != nil {
		return err
	}
	if total < 0 {
		return ErrNegativeTotal
	}
	previous := r.Range
	r.Range = dr
	r.TotalPrice = total
	r.UpdatedAt = now.UTC()
	r.Record(ReservationRescheduled{ReservationID: r.ID, CabinID: r.CabinID, From: previous, To: dr, TotalPrice: total, At: r.UpdatedAt})
	return nil
}

// MarkDeleted records the admin removal; the store performs the actual delete.
func (r *Reservation) MarkDeleted(now time.Time) {
	r.Record(ReservationDeleted{ReservationID: r.ID, CabinID: r.CabinID, At: now.UTC()})
}

func normalizeGuest(g Guest) (Guest, error) {
	g.Name = strings.TrimSpace(g.Name)
	g.Email = strings.ToLower(strings.TrimSpace(g.Email))
	g.Phone = strings.TrimSpace(g.Phone)
	g.Notes = strings.TrimSpace(g.Notes)
	if g.Name == "" {
		return Guest{}, ErrGuestName
	}
	if g.Email == "" && g.Phone == "" {
		return Guest{}, ErrGuestContact
	}
	return g, nil
}
