package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinrent/internal/domain/shared/civil"
	"cabinrent/internal/domain/shared/daterange"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cal := NewHolidayCalendar([]Holiday{
		{Date: civil.MustParse("2024-05-01"), Name: "Día del Trabajador"},
		{Date: civil.MustParse("2024-10-12"), Name: "Día de la Diversidad Cultural"},
		{Date: civil.MustParse("2024-12-25"), Name: "Navidad"},
	})
	e, err := NewEngine(cal, DefaultTariffs())
	require.NoError(t, err)
	return e
}

func rng(t *testing.T, from, to string) daterange.DateRange {
	t.Helper()
	dr, err := daterange.Parse(from, to)
	require.NoError(t, err)
	return dr
}

func TestQuoteWeekendBreakdown(t *testing.T) {
	e := testEngine(t)
	quote, err := e.Quote(rng(t, "2024-05-24", "2024-05-26"))
	require.NoError(t, err)

	require.Len(t, quote.Days, 3)
	want := []struct {
		date    string
		weekday int
		name    string
		rate    int64
		kind    DayKind
	}{
		{"2024-05-24", 5, "viernes", 150000, KindWeekday},
		{"2024-05-25", 6, "sábado", 180000, KindWeekend},
		{"2024-05-26", 0, "domingo", 180000, KindWeekend},
	}
	for i, w := range want {
		got := quote.Days[i]
		assert.Equal(t, w.date, got.Date.String())
		assert.Equal(t, w.weekday, got.Weekday)
		assert.Equal(t, w.name, got.WeekdayName)
		assert.Equal(t, w.rate, got.Rate)
		assert.Equal(t, w.kind, got.Kind)
	}
	assert.Equal(t, int64(510000), quote.Total)
}

func TestHolidayWinsOverWeekday(t *testing.T) {
	e := testEngine(t)
	may1 := civil.MustParse("2024-05-01")
	assert.True(t, e.IsHoliday(may1))
	assert.Equal(t, int64(200000), e.DayRate(may1))

	quote, err := e.Quote(rng(t, "2024-04-30", "2024-05-02"))
	require.NoError(t, err)
	assert.Equal(t, KindHoliday, quote.Days[1].Kind)
	assert.Equal(t, "Día del Trabajador", quote.Days[1].HolidayName)
	assert.Equal(t, int64(150000+200000+150000), quote.Total)
}

func TestHolidayWinsOverWeekend(t *testing.T) {
	e := testEngine(t)
	saturday := civil.MustParse("2024-10-12")
	assert.Equal(t, KindHoliday, e.Classify(saturday))
	assert.Equal(t, int64(200000), e.DayRate(saturday))
	assert.Equal(t, int64(180000), e.DayRate(civil.MustParse("2024-10-13")))
}

func TestQuoteIsDeterministicAndSumsDays(t *testing.T) {
	e := testEngine(t)
	start := civil.MustParse("2024-04-20")
	for offset := 0; offset < 60; offset += 3 {
		for length := 1; length <= 10; length++ {
			in := start.AddDays(offset)
			dr, err := daterange.New(in, in.AddDays(length))
			require.NoError(t, err)

			first, err := e.Quote(dr)
			require.NoError(t, err)
			second, err := e.Quote(dr)
			require.NoError(t, err)
			assert.Equal(t, first, second)

			var sum int64
			for _, d := range first.Days {
				sum += d.Rate
			}
			assert.Equal(t, first.Total, sum)
			assert.Len(t, first.Days, length+1)
		}
	}
}

func TestQuoteRejectsInvalidRange(t *testing.T) {
	e := testEngine(t)
	_, err := e.Quote(daterange.DateRange{CheckIn: civil.MustParse("2024-06-02"), CheckOut: civil.MustParse("2024-06-02")})
	assert.ErrorIs(t, err, daterange.ErrInvalidRange)
}

func TestNewEngineValidation(t *testing.T) {
	_, err := NewEngine(nil, DefaultTariffs())
	assert.ErrorIs(t, err, ErrCalendarMissing)

	_, err = NewEngine(NewHolidayCalendar(nil), Tariffs{Weekday: -1})
	assert.ErrorIs(t, err, ErrNegativeTariff)
}

func TestCustomTariffs(t *testing.T) {
	e, err := NewEngine(NewHolidayCalendar(nil), Tariffs{Weekday: 10, Weekend: 20, Holiday: 30})
	require.NoError(t, err)
	quote, err := e.Quote(rng(t, "2024-05-24", "2024-05-26"))
	require.NoError(t, err)
	assert.Equal(t, int64(50), quote.Total)
}

func TestCalendarCoverage(t *testing.T) {
	e := testEngine(t)
	assert.Equal(t, []int{2024}, e.Calendar().Years())
	assert.Equal(t, []int{2025}, e.UncoveredYears(rng(t, "2024-12-30", "2025-01-02")))
	assert.Empty(t, e.UncoveredYears(rng(t, "2024-12-01", "2024-12-02")))

	holidays := e.Calendar().InYear(2024)
	require.Len(t, holidays, 3)
	assert.Equal(t, "2024-05-01", holidays[0].Date.String())
	assert.Equal(t, "2024-12-25", holidays[2].Date.String())
}
