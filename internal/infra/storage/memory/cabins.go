package memory

import (
	"context"
	"sync"

	domaincabins "cabinrent/internal/domain/cabins"
	"cabinrent/internal/domain/shared/events"
)

// CabinRepository keeps cabins in a map. Values are copied on the way in and
// out so callers never share aggregate state.
type CabinRepository struct {
	mu    sync.RWMutex
	items map[domaincabins.CabinID]*domaincabins.Cabin
}

func NewCabinRepository() *CabinRepository {
	return &CabinRepository{items: make(map[domaincabins.CabinID]*domaincabins.Cabin)}
}

func (r *CabinRepository) ByID(_ context.Context, id domaincabins.CabinID) (*domaincabins.Cabin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.items[id]
	if !ok {
		return nil, domaincabins.ErrNotFound
	}
	return cloneCabin(c), nil
}

func (r *CabinRepository) List(_ context.Context) ([]*domaincabins.Cabin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domaincabins.Cabin, 0, len(r.items))
	for _, c := range r.items {
		out = append(out, cloneCabin(c))
	}
	domaincabins.SortByName(out)
	return out, nil
}

func (r *CabinRepository) Save(_ context.Context, cabin *domaincabins.Cabin) error {
	if cabin == nil || cabin.ID == "" {
		return domaincabins.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[cabin.ID]; ok && current.Version != cabin.Version {
		return domaincabins.ErrConcurrentUpdate
	}
	cabin.Version++
	r.items[cabin.ID] = cloneCabin(cabin)
	return nil
}

func (r *CabinRepository) Delete(_ context.Context, id domaincabins.CabinID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domaincabins.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func cloneCabin(c *domaincabins.Cabin) *domaincabins.Cabin {
	cp := *c
	cp.Amenities = append([]string(nil), c.Amenities...)
	cp.Images = append([]domaincabins.ImageRef(nil), c.Images...)
	cp.Recorder = events.Recorder{}
	return &cp
}

var _ domaincabins.Repository = (*CabinRepository)(nil)
