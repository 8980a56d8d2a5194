package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	domaincabins "cabinrent/internal/domain/cabins"
	domainreservations "cabinrent/internal/domain/reservations"
	"cabinrent/internal/domain/shared/civil"
	"cabinrent/internal/domain/shared/daterange"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "nil", err: nil, want: ""},
		{name: "explicit", err: Forbidden("nope"), want: KindForbidden},
		{name: "wrapped explicit", err: fmt.Errorf("ctx: %w", Unauthorized("login")), want: KindUnauthorized},
		{name: "bad date", err: fmt.Errorf("from: %w", civil.ErrInvalidDate), want: KindValidation},
		{name: "bad range", err: daterange.ErrInvalidRange, want: KindValidation},
		{name: "double booking", err: domainreservations.ErrConflict, want: KindConflict},
		{name: "missing cabin", err: domaincabins.ErrNotFound, want: KindNotFound},
		{name: "driver failure", err: errors.New("connection reset"), want: KindInfrastructure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestMessageHidesInfrastructure(t *testing.T) {
	assert.Equal(t, "internal error", Message(errors.New("dial tcp 10.0.0.1:27017")))
	assert.Equal(t, daterange.ErrInvalidRange.Error(), Message(daterange.ErrInvalidRange))
	assert.Equal(t, "", Message(nil))
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(KindConflict, domainreservations.ErrConflict)
	assert.ErrorIs(t, err, domainreservations.ErrConflict)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Nil(t, Wrap(KindConflict, nil))
}
