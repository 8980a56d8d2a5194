// Package availability decides which cabins are free for a date range.
//
// Everything here is a pure function over the cabins and reservations handed
// in by the caller: no caching, no I/O. Conflict detection is a linear scan
// over the supplied reservations, which is plenty for a handful of cabins; a
// per-cabin interval index would be the upgrade for a larger fleet.
package availability

import (
	"cabinrent/internal/domain/cabins"
	"cabinrent/internal/domain/reservations"
	"cabinrent/internal/domain/shared/daterange"
)

// Conflicts reports whether r blocks dr: r must be active and
// r.CheckOut > dr.CheckIn && r.CheckIn < dr.CheckOut.
func Conflicts(r *reservations.Reservation, dr daterange.DateRange) bool {
	return r.ConflictsWith(dr)
}

// ConflictingCabins collects the ids of cabins holding an active reservation
// that overlaps dr.
func ConflictingCabins(dr daterange.DateRange, rs []*reservations.Reservation) map[cabins.CabinID]struct{} {
	busy := make(map[cabins.CabinID]struct{})
	for _, r := range rs {
		if Conflicts(r, dr) {
			busy[r.CabinID] = struct{}{}
		}
	}
	return busy
}

// FindAvailableCabins returns, in input order, the cabins with no conflicting
// active reservation. An empty reservation set yields every cabin.
func FindAvailableCabins(dr daterange.DateRange, all []*cabins.Cabin, rs []*reservations.Reservation) ([]*cabins.Cabin, error) {
	if err := dr.Validate(); err != nil {
		return nil, err
	}
	busy := ConflictingCabins(dr, rs)
	free := make([]*cabins.Cabin, 0, len(all))
	for _, c := range all {
		if c == nil {
			continue
		}
		if _, taken := busy[c.ID]; taken {
			continue
		}
		free = append(free, c)
	}
	return free, nil
}

func IsCabinAvailable(id cabins.CabinID, dr daterange.DateRange, rs []*reservations.Reservation) bool {
	for _, r := range rs {
		if r.CabinID == id && Conflicts(r, dr) {
			return false
		}
	}
	return true
}
