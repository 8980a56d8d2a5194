package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cabinrent/internal/app/apperr"
	"cabinrent/internal/app/commands"
	"cabinrent/internal/app/outbox"
	"cabinrent/internal/app/queries"
	"cabinrent/internal/app/uow"
	domaincabins "cabinrent/internal/domain/cabins"
	domainreservations "cabinrent/internal/domain/reservations"
)

type bookCmd struct {
	Name string `validate:"required,max=5"`
	Qty  int    `validate:"min=1"`
	Idem string
}

func (bookCmd) Key() string              { return "test.book" }
func (c bookCmd) IdempotencyKey() string { return c.Idem }
func (bookCmd) ResultPrototype() any     { return &bookResult{} }

type bookResult struct {
	ID string `json:"id"`
}

type lookupQuery struct {
	ID string `validate:"required"`
}

func (lookupQuery) Key() string { return "test.lookup" }

type recordingStore struct {
	mu      sync.Mutex
	records map[string]IdempotencyRecord
}

func newRecordingStore() *recordingStore {
	return &recordingStore{records: map[string]IdempotencyRecord{}}
}

func (s *recordingStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *recordingStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Key] = rec
	return nil
}

type fakeUnit struct {
	committed  bool
	rolledBack bool
}

func (u *fakeUnit) Cabins() domaincabins.Repository             { return nil }
func (u *fakeUnit) Reservations() domainreservations.Repository { return nil }
func (u *fakeUnit) Commit(context.Context) error                { u.committed = true; return nil }
func (u *fakeUnit) Rollback(context.Context) error              { u.rolledBack = true; return nil }

type fakeFactory struct {
	units []*fakeUnit
}

func (f *fakeFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	u := &fakeUnit{}
	f.units = append(f.units, u)
	return u, nil
}

type countingOutbox struct {
	flushes int
}

func (o *countingOutbox) Add(context.Context, outbox.EventRecord) error { return nil }
func (o *countingOutbox) Flush(context.Context) error                   { o.flushes++; return nil }

type denyAll struct{}

func (denyAll) Authorize(_ context.Context, key, _ string) error {
	return apperr.Forbidden("denied " + key)
}

func newBookBus(calls *int, fail error) *commands.InMemoryBus {
	bus := commands.NewInMemoryBus()
	commands.Register(bus, commands.HandlerFunc[bookCmd, *bookResult](func(ctx context.Context, cmd bookCmd) (*bookResult, error) {
		*calls++
		if fail != nil {
			return nil, fail
		}
		return &bookResult{ID: cmd.Name}, nil
	}))
	return bus
}

func TestChainCommandsRunsFirstMiddlewareOutermost(t *testing.T) {
	var order []string
	trace := func(name string) CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				order = append(order, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}
	calls := 0
	bus := ChainCommands(newBookBus(&calls, nil), trace("a"), nil, trace("b"))

	_, err := bus.Dispatch(context.Background(), bookCmd{Name: "x", Qty: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, calls)
}

func TestIdempotencyReplaysResult(t *testing.T) {
	calls := 0
	store := newRecordingStore()
	bus := ChainCommands(newBookBus(&calls, nil), Idempotency(store, nil))
	ctx := context.Background()

	first, err := commands.Dispatch[bookCmd, *bookResult](ctx, bus, bookCmd{Name: "one", Idem: "k1"})
	require.NoError(t, err)
	second, err := commands.Dispatch[bookCmd, *bookResult](ctx, bus, bookCmd{Name: "two", Idem: "k1"})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first.ID, second.ID)
	assert.Contains(t, store.records, "test.book:k1")

	_, err = commands.Dispatch[bookCmd, *bookResult](ctx, bus, bookCmd{Name: "three"})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "commands without a key are not recorded")
}

func TestIdempotencyRecordsDomainErrorsOnly(t *testing.T) {
	tests := []struct {
		name      string
		fail      error
		wantCalls int
		wantKind  apperr.Kind
	}{
		{name: "conflict replayed", fail: domainreservations.ErrConflict, wantCalls: 1, wantKind: apperr.KindConflict},
		{name: "infrastructure retried", fail: errors.New("connection reset"), wantCalls: 2, wantKind: apperr.KindInfrastructure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			bus := ChainCommands(newBookBus(&calls, tt.fail), Idempotency(newRecordingStore(), JSONResultCodec{}))
			ctx := context.Background()

			_, err := bus.Dispatch(ctx, bookCmd{Name: "x", Idem: "same"})
			require.Error(t, err)
			_, err = bus.Dispatch(ctx, bookCmd{Name: "x", Idem: "same"})
			require.Error(t, err)

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
		})
	}
}

func TestTransactionCommitsOnSuccessAndRollsBackOnError(t *testing.T) {
	tests := []struct {
		name         string
		fail         error
		wantCommit   bool
		wantRollback bool
		wantFlushes  int
	}{
		{name: "success", wantCommit: true, wantFlushes: 1},
		{name: "failure", fail: domainreservations.ErrConflict, wantRollback: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			factory := &fakeFactory{}
			box := &countingOutbox{}
			bus := ChainCommands(newBookBus(&calls, tt.fail), Transaction(factory, nil), OutboxFlush(box))

			_, err := bus.Dispatch(context.Background(), bookCmd{Name: "x", Qty: 1})
			if tt.fail != nil {
				require.ErrorIs(t, err, tt.fail)
			} else {
				require.NoError(t, err)
			}
			require.Len(t, factory.units, 1)
			assert.Equal(t, tt.wantCommit, factory.units[0].committed)
			assert.Equal(t, tt.wantRollback, factory.units[0].rolledBack)
			assert.Equal(t, tt.wantFlushes, box.flushes)
		})
	}
}

func TestTransactionBindsUnitToContext(t *testing.T) {
	factory := &fakeFactory{}
	bus := commands.NewInMemoryBus()
	var seen uow.UnitOfWork
	commands.Register(bus, commands.HandlerFunc[bookCmd, *bookResult](func(ctx context.Context, _ bookCmd) (*bookResult, error) {
		seen, _ = uow.FromContext(ctx)
		return &bookResult{}, nil
	}))

	_, err := ChainCommands(bus, Transaction(factory, nil)).Dispatch(context.Background(), bookCmd{})
	require.NoError(t, err)
	require.Len(t, factory.units, 1)
	assert.Same(t, factory.units[0], seen)
}

func TestStructValidatorDescribesFields(t *testing.T) {
	v := NewStructValidator()
	ctx := context.Background()

	require.NoError(t, v.Validate(ctx, bookCmd{Name: "ok", Qty: 1}))

	err := v.Validate(ctx, bookCmd{Name: "toolong", Qty: 0})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, "name must be at most 5; qty must be at least 1", err.Error())

	err = v.Validate(ctx, lookupQuery{})
	assert.EqualError(t, err, "id is required")
}

func TestValidationStopsBeforeHandler(t *testing.T) {
	calls := 0
	bus := ChainCommands(newBookBus(&calls, nil), Validation(NewStructValidator()))

	_, err := bus.Dispatch(context.Background(), bookCmd{})
	require.Error(t, err)
	assert.Zero(t, calls)
}

func TestAuthorizationRejectsCommandsAndQueries(t *testing.T) {
	calls := 0
	cmdBus := ChainCommands(newBookBus(&calls, nil), Authorization(denyAll{}))
	_, err := cmdBus.Dispatch(context.Background(), bookCmd{Name: "x", Qty: 1})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Zero(t, calls)

	qBus := queries.NewInMemoryBus()
	queries.Register[lookupQuery, string](qBus, queries.HandlerFunc[lookupQuery, string](func(context.Context, lookupQuery) (string, error) {
		calls++
		return "found", nil
	}))
	_, err = ChainQueries(qBus, QueryAuthorization(denyAll{})).Ask(context.Background(), lookupQuery{ID: "1"})
	assert.EqualError(t, err, "denied test.lookup")
	assert.Zero(t, calls)

	got, err := queries.Ask[lookupQuery, string](context.Background(), ChainQueries(qBus, QueryValidation(NewStructValidator())), lookupQuery{ID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "found", got)
}
