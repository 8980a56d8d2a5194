package civil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "plain date", input: "2024-05-24", want: Date{2024, time.May, 24}},
		{name: "surrounding spaces", input: " 2024-06-01 ", want: Date{2024, time.June, 1}},
		{name: "utc timestamp shifts back a day", input: "2024-05-25T01:00:00Z", want: Date{2024, time.May, 24}},
		{name: "timestamp already in zone", input: "2024-05-25T00:00:00-03:00", want: Date{2024, time.May, 25}},
		{name: "empty", input: "", wantErr: true},
		{name: "garbage", input: "25/05/2024", wantErr: true},
		{name: "impossible day", input: "2024-02-30", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOfIgnoresCallerZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 2024-05-25 08:00 in Tokyo is 2024-05-24 20:00 in UTC-3
	instant := time.Date(2024, time.May, 25, 8, 0, 0, 0, tokyo)
	assert.Equal(t, New(2024, time.May, 24), Of(instant))
}

func TestArithmetic(t *testing.T) {
	d := MustParse("2024-02-28")
	assert.Equal(t, "2024-02-29", d.AddDays(1).String())
	assert.Equal(t, "2024-03-01", d.AddDays(2).String())
	assert.Equal(t, "2023-12-31", MustParse("2024-01-01").AddDays(-1).String())
	assert.Equal(t, 3, MustParse("2024-06-01").DaysUntil(MustParse("2024-06-04")))
	assert.Equal(t, -1, MustParse("2024-06-01").DaysUntil(MustParse("2024-05-31")))

	assert.True(t, MustParse("2024-06-01").Before(MustParse("2024-06-02")))
	assert.True(t, MustParse("2024-07-01").After(MustParse("2024-06-30")))
	assert.True(t, MustParse("2024-07-01").Equal(New(2024, time.June, 31)))
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, time.Friday, MustParse("2024-05-24").Weekday())
	assert.Equal(t, time.Saturday, MustParse("2024-05-25").Weekday())
	assert.Equal(t, time.Sunday, MustParse("2024-05-26").Weekday())
}

func TestJSON(t *testing.T) {
	type payload struct {
		Date Date `json:"date"`
	}
	raw, err := json.Marshal(payload{Date: MustParse("2024-05-01")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-05-01"}`, string(raw))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-12-25"}`), &decoded))
	assert.Equal(t, New(2024, time.December, 25), decoded.Date)

	assert.Error(t, json.Unmarshal([]byte(`{"date":"tomorrow"}`), &decoded))
}
