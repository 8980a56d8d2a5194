package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "cabinrent/internal/app/outbox"
	"cabinrent/internal/app/uow"
	infraoutbox "cabinrent/internal/infra/outbox"
)

// Outbox buffers records added inside a unit of work until Flush, then keeps
// them queued for the delivery worker. Records added outside a unit are
// queued at once.
type Outbox struct {
	mu      sync.Mutex
	now     func() time.Time
	pending map[uow.UnitOfWork][]*infraoutbox.Message
	queue   []*infraoutbox.Message
}

func NewOutbox() *Outbox {
	return &Outbox{now: time.Now, pending: make(map[uow.UnitOfWork][]*infraoutbox.Message)}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	msg := &infraoutbox.Message{
		ID:          record.ID,
		Name:        record.Name,
		Payload:     append([]byte(nil), record.Payload...),
		OccurredAt:  record.OccurredAt,
		Aggregate:   record.Aggregate,
		Headers:     record.Headers,
		State:       infraoutbox.StateNew,
		NextAttempt: o.now().UTC(),
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if unit, ok := uow.FromContext(ctx); ok {
		o.pending[unit] = append(o.pending[unit], msg)
		return nil
	}
	o.queue = append(o.queue, msg)
	return nil
}

func (o *Outbox) Flush(ctx context.Context) error {
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil
	}
	o.promote(unit)
	return nil
}

// promote queues everything unit buffered.
func (o *Outbox) promote(unit uow.UnitOfWork) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.queue = append(o.queue, o.pending[unit]...)
	delete(o.pending, unit)
}

func (o *Outbox) discard(unit uow.UnitOfWork) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.pending, unit)
}

func (o *Outbox) Claim(_ context.Context, _ string) (*infraoutbox.Message, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now()
	for _, msg := range o.queue {
		due := msg.State == infraoutbox.StateNew || msg.State == infraoutbox.StateFailed
		if due && !msg.NextAttempt.After(now) {
			msg.State = infraoutbox.StateClaimed
			cp := *msg
			return &cp, nil
		}
	}
	return nil, nil
}

func (o *Outbox) MarkSent(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	kept := o.queue[:0]
	for _, msg := range o.queue {
		if msg.ID != id {
			kept = append(kept, msg)
		}
	}
	o.queue = kept
	return nil
}

func (o *Outbox) MarkFailed(_ context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, msg := range o.queue {
		if msg.ID == id {
			msg.State = infraoutbox.StateFailed
			msg.NextAttempt = next
			msg.LastError = errMsg
			msg.Attempts++
		}
	}
	return nil
}

// Len reports how many messages await delivery.
func (o *Outbox) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.queue)
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)
