package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domaincabins "cabinrent/internal/domain/cabins"
	domainreservations "cabinrent/internal/domain/reservations"
	"cabinrent/internal/domain/shared/civil"
	"cabinrent/internal/domain/shared/daterange"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

// Dates travel as text so no time zone conversion can shift them.
const reservationColumns = `id, cabin_id, check_in::text, check_out::text, status, total_price,
	guest_name, guest_email, guest_phone, notes, guests, cancel_reason, created_at, updated_at, version`

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservations.ReservationID) (*domainreservations.Reservation, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, string(id))
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainreservations.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get reservation: %w", err)
	}
	return res, nil
}

func (r *ReservationRepository) Add(ctx context.Context, res *domainreservations.Reservation) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `INSERT INTO reservations
		(id, cabin_id, check_in, check_out, status, total_price, guest_name, guest_email, guest_phone, notes, guests, cancel_reason, created_at, updated_at, version)
		VALUES ($1, $2, $3::date, $4::date, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, 1)`,
		string(res.ID), string(res.CabinID), res.Range.CheckIn.String(), res.Range.CheckOut.String(),
		string(res.Status), res.TotalPrice, res.Guest.Name, res.Guest.Email, res.Guest.Phone, res.Guest.Notes,
		res.Guests, res.CancelReason, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return translateWrite(err, "insert reservation")
	}
	res.Version = 1
	return nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *domainreservations.Reservation) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `UPDATE reservations SET
		check_in = $2::date, check_out = $3::date, status = $4, total_price = $5, guest_name = $6, guest_email = $7,
		guest_phone = $8, notes = $9, guests = $10, cancel_reason = $11, updated_at = $12, version = version + 1
		WHERE id = $1 AND version = $13`,
		string(res.ID), res.Range.CheckIn.String(), res.Range.CheckOut.String(), string(res.Status), res.TotalPrice,
		res.Guest.Name, res.Guest.Email, res.Guest.Phone, res.Guest.Notes, res.Guests, res.CancelReason, res.UpdatedAt, res.Version)
	if err != nil {
		return translateWrite(err, "update reservation")
	}
	if tag.RowsAffected() == 0 {
		if _, lookupErr := r.ByID(ctx, res.ID); lookupErr != nil {
			return lookupErr
		}
		return domainreservations.ErrConcurrentUpdate
	}
	res.Version++
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id domainreservations.ReservationID) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM reservations WHERE id = $1`, string(id))
	if err != nil {
		return fmt.Errorf("postgres: delete reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainreservations.ErrNotFound
	}
	return nil
}

func (r *ReservationRepository) ListByCabin(ctx context.Context, cabinID domaincabins.CabinID) ([]*domainreservations.Reservation, error) {
	return r.List(ctx, domainreservations.ListFilter{CabinID: cabinID})
}

func (r *ReservationRepository) ListOverlapping(ctx context.Context, dr daterange.DateRange) ([]*domainreservations.Reservation, error) {
	return r.query(ctx, `status <> 'cancelled' AND stay && daterange($1::date, $2::date, '[)')`,
		dr.CheckIn.String(), dr.CheckOut.String())
}

func (r *ReservationRepository) List(ctx context.Context, filter domainreservations.ListFilter) ([]*domainreservations.Reservation, error) {
	var (
		conds []string
		args  []any
	)
	if filter.CabinID != "" {
		args = append(args, string(filter.CabinID))
		conds = append(conds, fmt.Sprintf("cabin_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := "TRUE"
	if len(conds) > 0 {
		where = strings.Join(conds, " AND ")
	}
	return r.query(ctx, where, args...)
}

func (r *ReservationRepository) query(ctx context.Context, where string, args ...any) ([]*domainreservations.Reservation, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE `+where+` ORDER BY check_in, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: query reservations: %w", err)
	}
	defer rows.Close()
	out := make([]*domainreservations.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan reservation: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func scanReservation(row pgx.Row) (*domainreservations.Reservation, error) {
	var (
		res               domainreservations.Reservation
		id, cabinID       string
		checkIn, checkOut string
		status            string
		created, updated  time.Time
	)
	err := row.Scan(&id, &cabinID, &checkIn, &checkOut, &status, &res.TotalPrice,
		&res.Guest.Name, &res.Guest.Email, &res.Guest.Phone, &res.Guest.Notes,
		&res.Guests, &res.CancelReason, &created, &updated, &res.Version)
	if err != nil {
		return nil, err
	}
	in, err := civil.Parse(checkIn)
	if err != nil {
		return nil, err
	}
	out, err := civil.Parse(checkOut)
	if err != nil {
		return nil, err
	}
	res.ID = domainreservations.ReservationID(id)
	res.CabinID = domaincabins.CabinID(cabinID)
	res.Range = daterange.DateRange{CheckIn: in, CheckOut: out}
	res.Status = domainreservations.Status(status)
	res.CreatedAt = created.UTC()
	res.UpdatedAt = updated.UTC()
	return &res, nil
}

// translateWrite maps constraint violations onto domain errors.
func translateWrite(err error, op string) error {
	switch pgCode(err) {
	case codeExclusionViolation:
		return domainreservations.ErrConflict
	case codeUniqueViolation, codeSerialization:
		return domainreservations.ErrConcurrentUpdate
	}
	return fmt.Errorf("postgres: %s: %w", op, err)
}

var _ domainreservations.Repository = (*ReservationRepository)(nil)
