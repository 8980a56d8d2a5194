package middleware

import (
	"context"

	"cabinrent/internal/app/commands"
	"cabinrent/internal/app/outbox"
)

// OutboxFlush hands recorded events to the outbox once the handler succeeds.
// Placed inside Transaction, a flush error rolls the unit back.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := nextFn(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
