package daterange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinrent/internal/domain/shared/civil"
)

func mustRange(t *testing.T, from, to string) DateRange {
	t.Helper()
	dr, err := Parse(from, to)
	require.NoError(t, err)
	return dr
}

func TestNewRejectsEmptyAndInverted(t *testing.T) {
	_, err := New(civil.MustParse("2024-06-05"), civil.MustParse("2024-06-05"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(civil.MustParse("2024-06-05"), civil.MustParse("2024-06-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = New(civil.Date{}, civil.MustParse("2024-06-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestParseReportsMalformedSide(t *testing.T) {
	_, err := Parse("2024-06-01", "june 5th")
	require.Error(t, err)
	assert.ErrorIs(t, err, civil.ErrInvalidDate)
	assert.Contains(t, err.Error(), "to:")
}

func TestOverlaps(t *testing.T) {
	booked := mustRange(t, "2024-06-01", "2024-06-05")
	tests := []struct {
		name  string
		query DateRange
		want  bool
	}{
		{name: "checkout equals next checkin", query: mustRange(t, "2024-06-05", "2024-06-08"), want: false},
		{name: "checkin equals previous checkout", query: mustRange(t, "2024-05-28", "2024-06-01"), want: false},
		{name: "straddles checkout", query: mustRange(t, "2024-06-04", "2024-06-06"), want: true},
		{name: "inside", query: mustRange(t, "2024-06-02", "2024-06-03"), want: true},
		{name: "covers", query: mustRange(t, "2024-05-01", "2024-07-01"), want: true},
		{name: "before", query: mustRange(t, "2024-05-01", "2024-05-10"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, booked.Overlaps(tt.query))
			assert.Equal(t, tt.want, tt.query.Overlaps(booked))
		})
	}
}

func TestInclusiveDays(t *testing.T) {
	dr := mustRange(t, "2024-05-24", "2024-05-26")
	days := dr.InclusiveDays()
	require.Len(t, days, 3)
	assert.Equal(t, "2024-05-24", days[0].String())
	assert.Equal(t, "2024-05-26", days[2].String())
	assert.Equal(t, 2, dr.Nights())

	assert.Nil(t, DateRange{}.InclusiveDays())
}

func TestMergeAndClip(t *testing.T) {
	a := mustRange(t, "2024-06-01", "2024-06-05")
	b := mustRange(t, "2024-06-05", "2024-06-08")

	merged, ok := a.Merge(b)
	require.True(t, ok)
	assert.Equal(t, mustRange(t, "2024-06-01", "2024-06-08"), merged)

	_, ok = a.Merge(mustRange(t, "2024-06-10", "2024-06-12"))
	assert.False(t, ok)

	clipped, ok := merged.Clip(mustRange(t, "2024-06-03", "2024-06-30"))
	require.True(t, ok)
	assert.Equal(t, mustRange(t, "2024-06-03", "2024-06-08"), clipped)

	assert.True(t, merged.ContainsDate(civil.MustParse("2024-06-07")))
	assert.False(t, merged.ContainsDate(civil.MustParse("2024-06-08")))
	assert.True(t, a.Adjacent(b))
}

func TestCheckNights(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		max      int
		wantErr  bool
	}{
		{name: "at the limit", from: "2024-06-01", to: "2024-06-08", max: 7},
		{name: "one over", from: "2024-06-01", to: "2024-06-09", max: 7, wantErr: true},
		{name: "leap year window", from: "2024-01-01", to: "2025-01-01", max: 0},
		{name: "whole calendar", from: "0001-01-01", to: "9999-12-31", max: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mustRange(t, tt.from, tt.to).CheckNights(tt.max)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrTooLong)
		})
	}

	assert.Equal(t, 3652058, mustRange(t, "0001-01-01", "9999-12-31").Nights())
}

func TestCheckStartsFrom(t *testing.T) {
	today := civil.MustParse("2024-02-10")
	assert.NoError(t, mustRange(t, "2024-02-10", "2024-02-12").CheckStartsFrom(today))
	err := mustRange(t, "2020-01-01", "2020-01-03").CheckStartsFrom(today)
	assert.ErrorIs(t, err, ErrPastCheckIn)
	assert.EqualError(t, err, "daterange: checkin is in the past: 2020-01-01 is before 2024-02-10")
}
