package middleware

import (
	"context"

	"cabinrent/internal/app/commands"
	"cabinrent/internal/app/queries"
)

// Actions passed to Authorizer for the two kinds of bus messages.
const (
	ActionDispatch = "dispatch"
	ActionAsk      = "ask"
)

// Authorizer decides whether the principal carried by ctx may send the
// message identified by key.
type Authorizer interface {
	Authorize(ctx context.Context, key, action string) error
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd.Key(), ActionDispatch); err != nil {
				return nil, err
			}
			return nextFn(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		nextFn := wrapQuery(next)
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q.Key(), ActionAsk); err != nil {
				return nil, err
			}
			return nextFn(ctx, q)
		})
	}
}
