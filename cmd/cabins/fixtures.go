package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"cabinrent/internal/app/uow"
	domaincabins "cabinrent/internal/domain/cabins"
)

// cabinFixture is one entry of the CABIN_FIXTURES file. JSON files parse too,
// YAML being a superset.
type cabinFixture struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Capacity    int      `yaml:"capacity"`
	Bedrooms    int      `yaml:"bedrooms"`
	Amenities   []string `yaml:"amenities"`
}

// loadCabinFixtures inserts cabins that do not exist yet and returns how many
// were created.
func loadCabinFixtures(ctx context.Context, factory uow.UoWFactory, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []cabinFixture
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return 0, fmt.Errorf("decode fixtures: %w", err)
	}
	now := time.Now()
	created := 0
	for _, fx := range fixtures {
		cabin, err := domaincabins.NewCabin(domaincabins.Params{
			ID:          domaincabins.CabinID(fx.ID),
			Name:        fx.Name,
			Description: fx.Description,
			Capacity:    fx.Capacity,
			Bedrooms:    fx.Bedrooms,
			Amenities:   fx.Amenities,
			Now:         now,
		})
		if err != nil {
			return created, fmt.Errorf("fixture %q: %w", fx.ID, err)
		}
		inserted, err := insertCabin(ctx, factory, cabin)
		if err != nil {
			return created, fmt.Errorf("fixture %q: %w", fx.ID, err)
		}
		if inserted {
			created++
		}
	}
	return created, nil
}

func insertCabin(ctx context.Context, factory uow.UoWFactory, cabin *domaincabins.Cabin) (bool, error) {
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return false, err
	}
	ctx = uow.Bind(ctx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	if _, err := unit.Cabins().ByID(ctx, cabin.ID); err == nil {
		return false, nil
	} else if !errors.Is(err, domaincabins.ErrNotFound) {
		return false, err
	}
	cabin.Drain()
	if err := unit.Cabins().Save(ctx, cabin); err != nil {
		return false, err
	}
	if err := unit.Commit(ctx); err != nil {
		return false, err
	}
	committed = true
	return true, nil
}
