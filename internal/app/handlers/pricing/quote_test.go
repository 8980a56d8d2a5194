package pricing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinrent/internal/app/apperr"
	domainpricing "cabinrent/internal/domain/pricing"
	"cabinrent/internal/domain/shared/civil"
	"cabinrent/internal/domain/shared/daterange"
	"cabinrent/internal/infra/holidays"
)

func engine(t *testing.T) *domainpricing.Engine {
	t.Helper()
	e, err := domainpricing.NewEngine(holidays.Default(), domainpricing.DefaultTariffs())
	require.NoError(t, err)
	return e
}

func TestQuoteHandler(t *testing.T) {
	h := &QuoteHandler{Engine: engine(t)}
	ctx := context.Background()

	// Thursday 28 and Friday 29 are holidays, then a weekend and a Monday.
	quote, err := h.Handle(ctx, QuoteQuery{From: "2024-03-28", To: "2024-04-01"})
	require.NoError(t, err)
	require.Len(t, quote.Days, 5)
	assert.EqualValues(t, 200000+200000+180000+180000+200000, quote.Total)
	assert.Equal(t, "viernes", quote.Days[1].WeekdayName)

	_, err = h.Handle(ctx, QuoteQuery{From: "2024-04-01", To: "2024-03-28"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = (&QuoteHandler{}).Handle(ctx, QuoteQuery{From: "2024-03-28", To: "2024-04-01"})
	assert.ErrorIs(t, err, ErrEngineMissing)
}

func TestQuoteHandlerCapsRange(t *testing.T) {
	h := &QuoteHandler{Engine: engine(t)}
	ctx := context.Background()

	quote, err := h.Handle(ctx, QuoteQuery{From: "2024-01-01", To: "2025-01-01"})
	require.NoError(t, err)
	assert.Len(t, quote.Days, 367)

	_, err = h.Handle(ctx, QuoteQuery{From: "0001-01-01", To: "9999-12-31"})
	assert.ErrorIs(t, err, daterange.ErrTooLong)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	h.MaxNights = 14
	_, err = h.Handle(ctx, QuoteQuery{From: "2024-03-01", To: "2024-03-16"})
	assert.ErrorIs(t, err, daterange.ErrTooLong)
}

func TestDayInfoHandler(t *testing.T) {
	h := &DayInfoHandler{Engine: engine(t)}
	ctx := context.Background()

	tests := []struct {
		date    string
		kind    string
		rate    int64
		holiday bool
	}{
		{date: "2024-05-01", kind: "holiday", rate: 200000, holiday: true},
		{date: "2024-05-04", kind: "weekend", rate: 180000},
		{date: "2024-05-06", kind: "weekday", rate: 150000},
		{date: "2024-05-25", kind: "weekend", rate: 180000},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			info, err := h.Handle(ctx, DayInfoQuery{Date: tt.date})
			require.NoError(t, err)
			assert.Equal(t, tt.kind, info.Kind)
			assert.Equal(t, tt.rate, info.Rate)
			assert.Equal(t, tt.holiday, info.IsHoliday)
		})
	}

	_, err := h.Handle(ctx, DayInfoQuery{Date: "2024-02-30"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListHolidaysDefaultsToCurrentYear(t *testing.T) {
	h := &ListHolidaysHandler{Engine: engine(t), Today: func() civil.Date { return civil.MustParse("2024-06-01") }}
	ctx := context.Background()

	current, err := h.Handle(ctx, ListHolidaysQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2024, current.Year)
	require.NotEmpty(t, current.Items)
	assert.True(t, current.Items[0].Date.Before(current.Items[len(current.Items)-1].Date))

	other, err := h.Handle(ctx, ListHolidaysQuery{Year: "2031"})
	require.NoError(t, err)
	assert.Equal(t, 2031, other.Year)
	assert.Empty(t, other.Items)
}
