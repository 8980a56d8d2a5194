package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type renameCmd struct{ Name string }

func (renameCmd) Key() string { return "cabins.rename" }

type otherCmd struct{}

func (otherCmd) Key() string { return "cabins.rename" }

func TestDispatchRoutesByKey(t *testing.T) {
	bus := NewInMemoryBus()
	Register(bus, HandlerFunc[renameCmd, string](func(_ context.Context, cmd renameCmd) (string, error) {
		return "renamed " + cmd.Name, nil
	}))

	got, err := Dispatch[renameCmd, string](context.Background(), bus, renameCmd{Name: "lago"})
	require.NoError(t, err)
	assert.Equal(t, "renamed lago", got)
	assert.Equal(t, []string{"cabins.rename"}, bus.Keys())
}

func TestDispatchErrors(t *testing.T) {
	bus := NewInMemoryBus()
	ctx := context.Background()

	_, err := bus.Dispatch(ctx, renameCmd{})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	Register(bus, HandlerFunc[renameCmd, string](func(context.Context, renameCmd) (string, error) { return "ok", nil }))

	_, err = bus.Dispatch(ctx, otherCmd{})
	assert.ErrorIs(t, err, ErrInvalidCommand)

	_, err = Dispatch[renameCmd, int](ctx, bus, renameCmd{})
	assert.ErrorIs(t, err, ErrResultType)

	_, err = Dispatch[renameCmd, string](ctx, nil, renameCmd{})
	assert.ErrorIs(t, err, ErrNilBus)
}

func TestRegisterPanicsOnDuplicate(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[renameCmd, string](func(context.Context, renameCmd) (string, error) { return "", nil })
	Register(bus, h)
	assert.Panics(t, func() { Register(bus, h) })
	assert.Panics(t, func() { bus.RegisterRaw("", nil) })
}
