// Package holidays loads the holiday calendar used for pricing from YAML.
package holidays

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	domainpricing "cabinrent/internal/domain/pricing"
	"cabinrent/internal/domain/shared/civil"
)

//go:embed holidays_2024.yaml
var defaultTable []byte

var (
	ErrEmptyTable    = errors.New("holidays: table has no entries")
	ErrDuplicateDate = errors.New("holidays: duplicate date")
)

type file struct {
	Holidays []entry `yaml:"holidays"`
}

type entry struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

// Default returns the embedded table.
func Default() *domainpricing.HolidayCalendar {
	cal, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("holidays: embedded table: %v", err))
	}
	return cal
}

// Load reads a table from path, falling back to the embedded one when path
// is empty.
func Load(path string) (*domainpricing.HolidayCalendar, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("holidays: read %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*domainpricing.HolidayCalendar, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("holidays: decode: %w", err)
	}
	if len(f.Holidays) == 0 {
		return nil, ErrEmptyTable
	}
	seen := make(map[civil.Date]struct{}, len(f.Holidays))
	out := make([]domainpricing.Holiday, 0, len(f.Holidays))
	for i, e := range f.Holidays {
		d, err := civil.Parse(strings.TrimSpace(e.Date))
		if err != nil {
			return nil, fmt.Errorf("holidays: entry %d: %w", i, err)
		}
		if _, dup := seen[d]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDate, d)
		}
		seen[d] = struct{}{}
		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = "Feriado"
		}
		out = append(out, domainpricing.Holiday{Date: d, Name: name})
	}
	return domainpricing.NewHolidayCalendar(out), nil
}
