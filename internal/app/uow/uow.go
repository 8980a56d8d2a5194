package uow

import (
	"context"

	domaincabins "cabinrent/internal/domain/cabins"
	domainreservations "cabinrent/internal/domain/reservations"
)

// UnitOfWork groups repositories behind one transaction boundary.
type UnitOfWork interface {
	Cabins() domaincabins.Repository
	Reservations() domainreservations.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

// ContextInjector is implemented by units that carry driver state (a mongo
// session, a pgx transaction) in the context.
type ContextInjector interface {
	InjectContext(ctx context.Context) context.Context
}
