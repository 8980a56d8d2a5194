package memory

import (
	"context"
	"errors"
	"sync"

	"cabinrent/internal/app/uow"
	domaincabins "cabinrent/internal/domain/cabins"
	domainreservations "cabinrent/internal/domain/reservations"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	CabinsRepo       domaincabins.Repository
	ReservationsRepo domainreservations.Repository
	// Outbox, when set, drops records buffered by a unit that rolls back.
	Outbox *Outbox
}

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a unit without isolation; writes are visible immediately.
// Rollback removes the reservations the unit inserted but does not revert
// updates. Atomicity of booking comes from the repository guard.
func (f Factory) Begin(_ context.Context, _ uow.TxOptions) (uow.UnitOfWork, error) {
	if f.CabinsRepo == nil || f.ReservationsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	u := &Unit{cabins: f.CabinsRepo, outbox: f.Outbox}
	u.reservations = &unitReservations{Repository: f.ReservationsRepo, unit: u}
	return u, nil
}

type Unit struct {
	cabins       domaincabins.Repository
	reservations *unitReservations
	outbox       *Outbox

	mu    sync.Mutex
	added []domainreservations.ReservationID
}

func (u *Unit) Cabins() domaincabins.Repository { return u.cabins }

func (u *Unit) Reservations() domainreservations.Repository { return u.reservations }

func (u *Unit) Commit(context.Context) error {
	u.mu.Lock()
	u.added = nil
	u.mu.Unlock()
	if u.outbox != nil {
		u.outbox.promote(u)
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.mu.Lock()
	added := u.added
	u.added = nil
	u.mu.Unlock()
	if u.outbox != nil {
		u.outbox.discard(u)
	}
	var errs []error
	for i := len(added) - 1; i >= 0; i-- {
		err := u.reservations.Repository.Delete(ctx, added[i])
		if err != nil && !errors.Is(err, domainreservations.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// unitReservations remembers inserted ids so Rollback can take them back.
type unitReservations struct {
	domainreservations.Repository
	unit *Unit
}

func (r *unitReservations) Add(ctx context.Context, res *domainreservations.Reservation) error {
	if err := r.Repository.Add(ctx, res); err != nil {
		return err
	}
	r.unit.mu.Lock()
	r.unit.added = append(r.unit.added, res.ID)
	r.unit.mu.Unlock()
	return nil
}
