package memory

import (
	"context"
	"sort"
	"sync"

	domaincabins "cabinrent/internal/domain/cabins"
	domainreservations "cabinrent/internal/domain/reservations"
	"cabinrent/internal/domain/shared/daterange"
	"cabinrent/internal/domain/shared/events"
)

// ReservationRepository serialises every write behind one mutex, so the
// overlap check and the insert form a single atomic step.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[domainreservations.ReservationID]*domainreservations.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[domainreservations.ReservationID]*domainreservations.Reservation)}
}

func (r *ReservationRepository) ByID(_ context.Context, id domainreservations.ReservationID) (*domainreservations.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.items[id]
	if !ok {
		return nil, domainreservations.ErrNotFound
	}
	return cloneReservation(res), nil
}

func (r *ReservationRepository) Add(_ context.Context, res *domainreservations.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[res.ID]; exists {
		return domainreservations.ErrConcurrentUpdate
	}
	if r.overlapsLocked(res) {
		return domainreservations.ErrConflict
	}
	res.Version = 1
	r.items[res.ID] = cloneReservation(res)
	return nil
}

func (r *ReservationRepository) Update(_ context.Context, res *domainreservations.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.items[res.ID]
	if !ok {
		return domainreservations.ErrNotFound
	}
	if current.Version != res.Version {
		return domainreservations.ErrConcurrentUpdate
	}
	if r.overlapsLocked(res) {
		return domainreservations.ErrConflict
	}
	res.Version++
	r.items[res.ID] = cloneReservation(res)
	return nil
}

func (r *ReservationRepository) Delete(_ context.Context, id domainreservations.ReservationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainreservations.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ReservationRepository) ListByCabin(ctx context.Context, cabinID domaincabins.CabinID) ([]*domainreservations.Reservation, error) {
	return r.List(ctx, domainreservations.ListFilter{CabinID: cabinID})
}

func (r *ReservationRepository) ListOverlapping(_ context.Context, dr daterange.DateRange) ([]*domainreservations.Reservation, error) {
	return r.collect(func(res *domainreservations.Reservation) bool {
		return res.ConflictsWith(dr)
	}), nil
}

func (r *ReservationRepository) List(_ context.Context, filter domainreservations.ListFilter) ([]*domainreservations.Reservation, error) {
	return r.collect(func(res *domainreservations.Reservation) bool {
		if filter.CabinID != "" && res.CabinID != filter.CabinID {
			return false
		}
		return filter.Status == "" || res.Status == filter.Status
	}), nil
}

func (r *ReservationRepository) collect(keep func(*domainreservations.Reservation) bool) []*domainreservations.Reservation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainreservations.Reservation, 0)
	for _, res := range r.items {
		if keep(res) {
			out = append(out, cloneReservation(res))
		}
	}
	sortReservations(out)
	return out
}

func (r *ReservationRepository) overlapsLocked(res *domainreservations.Reservation) bool {
	if !res.IsActive() {
		return false
	}
	for id, other := range r.items {
		if id == res.ID || other.CabinID != res.CabinID {
			continue
		}
		if other.ConflictsWith(res.Range) {
			return true
		}
	}
	return false
}

func sortReservations(items []*domainreservations.Reservation) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if c := a.Range.CheckIn.Compare(b.Range.CheckIn); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

func cloneReservation(res *domainreservations.Reservation) *domainreservations.Reservation {
	cp := *res
	cp.Recorder = events.Recorder{}
	return &cp
}

var _ domainreservations.Repository = (*ReservationRepository)(nil)
