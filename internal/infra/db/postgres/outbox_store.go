package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	appoutbox "cabinrent/internal/app/outbox"
	infraoutbox "cabinrent/internal/infra/outbox"
)

// OutboxStore shares the unit's transaction on Add; workers claim rows with
// SKIP LOCKED so several of them can drain the table.
type OutboxStore struct {
	pool *pgxpool.Pool
}

func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	return &OutboxStore{pool: pool}
}

func (s *OutboxStore) Add(ctx context.Context, record appoutbox.EventRecord) error {
	headers, err := json.Marshal(record.Headers)
	if err != nil {
		return err
	}
	payload := record.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err = conn(ctx, s.pool).Exec(ctx, `INSERT INTO app_outbox
		(id, name, payload, occurred_at, aggregate, headers, state, next_attempt_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())`,
		record.ID, record.Name, payload, record.OccurredAt, record.Aggregate, headers, infraoutbox.StateNew)
	if err != nil {
		return fmt.Errorf("postgres: outbox add: %w", err)
	}
	return nil
}

func (s *OutboxStore) Flush(context.Context) error { return nil }

func (s *OutboxStore) Claim(ctx context.Context, workerID string) (*infraoutbox.Message, error) {
	row := s.pool.QueryRow(ctx, `UPDATE app_outbox SET state = $1, claimed_by = $2
		WHERE id = (
			SELECT id FROM app_outbox
			WHERE state IN ($3, $4) AND next_attempt_at <= now()
			ORDER BY next_attempt_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING id, name, payload, occurred_at, aggregate, headers, state, attempts, next_attempt_at, last_error`,
		infraoutbox.StateClaimed, workerID, infraoutbox.StateNew, infraoutbox.StateFailed)
	var (
		msg     infraoutbox.Message
		headers []byte
	)
	err := row.Scan(&msg.ID, &msg.Name, &msg.Payload, &msg.OccurredAt, &msg.Aggregate, &headers, &msg.State, &msg.Attempts, &msg.NextAttempt, &msg.LastError)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: outbox claim: %w", err)
	}
	if len(headers) > 0 {
		if err := json.Unmarshal(headers, &msg.Headers); err != nil {
			return nil, err
		}
	}
	return &msg, nil
}

func (s *OutboxStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE app_outbox SET state = $2, sent_at = now() WHERE id = $1`, id, infraoutbox.StateSent)
	return err
}

func (s *OutboxStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	_, err := s.pool.Exec(ctx, `UPDATE app_outbox SET state = $2, next_attempt_at = $3, last_error = $4, attempts = attempts + 1 WHERE id = $1`,
		id, infraoutbox.StateFailed, next, errMsg)
	return err
}

var (
	_ appoutbox.Outbox  = (*OutboxStore)(nil)
	_ infraoutbox.Store = (*OutboxStore)(nil)
)
