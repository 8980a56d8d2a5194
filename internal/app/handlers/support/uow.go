// Package support holds helpers shared by query and command handlers.
package support

import (
	"context"

	"cabinrent/internal/app/uow"
)

// BeginReadOnlyUnit reuses the unit already bound to ctx or opens a read-only
// one. The returned cleanup is nil when nothing was opened.
func BeginReadOnlyUnit(ctx context.Context, factory uow.UoWFactory) (uow.UnitOfWork, context.Context, func(), error) {
	if unit, ok := uow.FromContext(ctx); ok {
		return unit, ctx, nil, nil
	}
	if factory == nil {
		return nil, ctx, nil, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, ctx, nil, err
	}
	execCtx := uow.Bind(ctx, unit)
	return unit, execCtx, func() { _ = unit.Rollback(execCtx) }, nil
}

// WithUnit runs fn inside the unit bound to ctx. When none is bound, a unit is
// opened from factory, committed on success and rolled back otherwise.
func WithUnit[R any](ctx context.Context, factory uow.UoWFactory, fn func(ctx context.Context, unit uow.UnitOfWork) (R, error)) (R, error) {
	var zero R
	if unit, ok := uow.FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	if factory == nil {
		return zero, uow.ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return zero, err
	}
	execCtx := uow.Bind(ctx, unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}()
	res, err := fn(execCtx, unit)
	if err != nil {
		return zero, err
	}
	if err := unit.Commit(execCtx); err != nil {
		return zero, err
	}
	committed = true
	return res, nil
}

// Release runs cleanup when it is set.
func Release(cleanup func()) {
	if cleanup != nil {
		cleanup()
	}
}
