// Package scylla archives reservation lifecycle events in Cassandra/Scylla.
package scylla

import (
	"context"
	"errors"
	"time"

	"github.com/gocql/gocql"
)

// Rows are keyed by event id within a reservation partition, so redelivered
// events overwrite themselves.
const reservationEventsTable = `
CREATE TABLE IF NOT EXISTS reservation_events (
	reservation_id text,
	occurred_at    timestamp,
	event_id       text,
	name           text,
	cabin_id       text,
	payload        text,
	archived_at    timestamp,
	PRIMARY KEY (reservation_id, occurred_at, event_id)
) WITH CLUSTERING ORDER BY (occurred_at DESC, event_id ASC)`

var ErrSessionMissing = errors.New("scylla: session not initialized")

type Event struct {
	ReservationID string
	EventID       string
	Name          string
	CabinID       string
	Payload       []byte
	OccurredAt    time.Time
	ArchivedAt    time.Time
}

type AuditStore struct {
	session *gocql.Session
}

func NewAuditStore(session *gocql.Session) *AuditStore {
	return &AuditStore{session: session}
}

func (s *AuditStore) Append(ctx context.Context, ev Event) error {
	if s.session == nil {
		return ErrSessionMissing
	}
	archived := ev.ArchivedAt
	if archived.IsZero() {
		archived = time.Now()
	}
	return s.session.
		Query(`INSERT INTO reservation_events (reservation_id, occurred_at, event_id, name, cabin_id, payload, archived_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			ev.ReservationID, ev.OccurredAt.UTC(), ev.EventID, ev.Name, ev.CabinID, string(ev.Payload), archived.UTC()).
		WithContext(ctx).
		Exec()
}

// History returns the newest events of a reservation first.
func (s *AuditStore) History(ctx context.Context, reservationID string, limit int) ([]Event, error) {
	if s.session == nil {
		return nil, ErrSessionMissing
	}
	if limit <= 0 {
		limit = 100
	}
	iter := s.session.
		Query(`SELECT reservation_id, occurred_at, event_id, name, cabin_id, payload, archived_at FROM reservation_events WHERE reservation_id = ? LIMIT ?`, reservationID, limit).
		WithContext(ctx).
		Consistency(gocql.One).
		Iter()
	var (
		out     []Event
		ev      Event
		payload string
	)
	for iter.Scan(&ev.ReservationID, &ev.OccurredAt, &ev.EventID, &ev.Name, &ev.CabinID, &payload, &ev.ArchivedAt) {
		ev.Payload = []byte(payload)
		out = append(out, ev)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}
