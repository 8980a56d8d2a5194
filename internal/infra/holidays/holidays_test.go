package holidays

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinrent/internal/domain/shared/civil"
)

func TestDefaultTable(t *testing.T) {
	cal := Default()
	assert.Equal(t, []int{2024}, cal.Years())
	assert.True(t, cal.IsHoliday(civil.MustParse("2024-05-01")))
	assert.True(t, cal.IsHoliday(civil.MustParse("2024-10-12")))
	assert.False(t, cal.IsHoliday(civil.MustParse("2024-05-25")))

	name, ok := cal.Name(civil.MustParse("2024-12-25"))
	require.True(t, ok)
	assert.Equal(t, "Navidad", name)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		years   []int
	}{
		{
			name:  "multi year",
			yaml:  "holidays:\n  - date: \"2025-01-01\"\n    name: Año Nuevo\n  - date: \"2024-12-25\"\n",
			years: []int{2024, 2025},
		},
		{name: "empty", yaml: "holidays: []\n", wantErr: ErrEmptyTable},
		{name: "bad date", yaml: "holidays:\n  - date: \"2025-13-01\"\n", wantErr: civil.ErrInvalidDate},
		{name: "duplicate", yaml: "holidays:\n  - date: \"2025-01-01\"\n  - date: \"2025-01-01\"\n", wantErr: ErrDuplicateDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cal, err := Parse([]byte(tt.yaml))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.years, cal.Years())
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte("holidays:\n  - date: \"2025-05-01\"\n"), 0o600))

	cal, err := Load(path)
	require.NoError(t, err)
	name, ok := cal.Name(civil.MustParse("2025-05-01"))
	require.True(t, ok)
	assert.Equal(t, "Feriado", name)

	cal, err = Load("")
	require.NoError(t, err)
	assert.True(t, cal.Covers(2024))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
