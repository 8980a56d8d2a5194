package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cabinrent/internal/app/uow"
	domaincabins "cabinrent/internal/domain/cabins"
	domainreservations "cabinrent/internal/domain/reservations"
)

var ErrUnitOfWorkNotConfigured = errors.New("postgres: unit of work factory missing pool")

type Factory struct {
	Pool *pgxpool.Pool

	CabinsRepo       domaincabins.Repository
	ReservationsRepo domainreservations.Repository
}

func NewFactory(pool *pgxpool.Pool) Factory {
	return Factory{
		Pool:             pool,
		CabinsRepo:       NewCabinRepository(pool),
		ReservationsRepo: NewReservationRepository(pool),
	}
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Pool == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}
	if opts.ReadOnly {
		txOpts = pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	}
	tx, err := f.Pool.BeginTx(ctx, txOpts)
	if err != nil {
		return nil, err
	}
	return &Unit{tx: tx, cabins: f.CabinsRepo, reservations: f.ReservationsRepo}, nil
}

type Unit struct {
	tx pgx.Tx

	cabins       domaincabins.Repository
	reservations domainreservations.Repository
}

func (u *Unit) Cabins() domaincabins.Repository { return u.cabins }

func (u *Unit) Reservations() domainreservations.Repository { return u.reservations }

func (u *Unit) Commit(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		if pgCode(err) == codeExclusionViolation {
			return domainreservations.ErrConflict
		}
		return err
	}
	return nil
}

// Rollback after Commit is a no-op in pgx.
func (u *Unit) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return withTx(ctx, u.tx)
}
