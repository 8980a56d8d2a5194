// Package audit consumes published reservation events and archives them.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/IBM/sarama"

	"cabinrent/internal/infra/storage/scylla"
)

type Archive interface {
	Append(ctx context.Context, ev scylla.Event) error
}

// envelope is the CloudEvents record produced by the outbox worker.
type envelope struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Subject string          `json:"subject"`
	Time    time.Time       `json:"time"`
	Data    json.RawMessage `json:"data"`
}

type reservationData struct {
	ReservationID string `json:"reservation_id"`
	CabinID       string `json:"cabin_id"`
}

var ErrMalformedEvent = errors.New("audit: malformed event")

// Handler archives reservation.* events and skips everything else.
type Handler struct {
	Archive Archive
	Logger  *slog.Logger
	Now     func() time.Time
}

func (h *Handler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	ev, ok, err := Decode(msg.Value)
	if err != nil {
		h.logger().Warn("audit: dropping malformed event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	ev.ArchivedAt = h.now()
	if err := h.Archive.Append(ctx, ev); err != nil {
		return fmt.Errorf("audit: archive %s: %w", ev.EventID, err)
	}
	h.logger().Debug("audit: archived", "event", ev.Name, "reservation_id", ev.ReservationID)
	return nil
}

// Decode unpacks an envelope. ok is false for events that are not about
// reservations.
func Decode(raw []byte) (scylla.Event, bool, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return scylla.Event{}, false, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	name := strings.TrimSuffix(env.Type, ".v1")
	if !strings.HasPrefix(name, "reservation.") {
		return scylla.Event{}, false, nil
	}
	var data reservationData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return scylla.Event{}, false, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	id := data.ReservationID
	if id == "" {
		id = env.Subject
	}
	if id == "" || env.ID == "" {
		return scylla.Event{}, false, ErrMalformedEvent
	}
	return scylla.Event{
		ReservationID: id,
		EventID:       env.ID,
		Name:          name,
		CabinID:       data.CabinID,
		Payload:       env.Data,
		OccurredAt:    env.Time,
	}, true, nil
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
