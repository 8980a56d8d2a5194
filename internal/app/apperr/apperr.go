// Package apperr classifies failures crossing the application boundary so
// transports can map them without knowing every domain sentinel.
package apperr

import (
	"errors"

	domaincabins "cabinrent/internal/domain/cabins"
	domainpricing "cabinrent/internal/domain/pricing"
	domainreservations "cabinrent/internal/domain/reservations"
	"cabinrent/internal/domain/shared/civil"
	"cabinrent/internal/domain/shared/daterange"
	domainuser "cabinrent/internal/domain/user"
)

type Kind string

const (
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindNotFound       Kind = "not_found"
	KindUnauthorized   Kind = "unauthorized"
	KindForbidden      Kind = "forbidden"
	KindInfrastructure Kind = "infrastructure"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

func Validation(message string) *Error   { return New(KindValidation, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }

var sentinels = []struct {
	err  error
	kind Kind
}{
	{civil.ErrInvalidDate, KindValidation},
	{daterange.ErrInvalidRange, KindValidation},
	{daterange.ErrTooLong, KindValidation},
	{daterange.ErrPastCheckIn, KindValidation},
	{domainpricing.ErrNegativeTariff, KindValidation},
	{domaincabins.ErrIDRequired, KindValidation},
	{domaincabins.ErrNameRequired, KindValidation},
	{domaincabins.ErrCapacity, KindValidation},
	{domaincabins.ErrBedrooms, KindValidation},
	{domaincabins.ErrImageRequired, KindValidation},
	{domaincabins.ErrDuplicateImg, KindConflict},
	{domaincabins.ErrConcurrentUpdate, KindConflict},
	{domaincabins.ErrNotFound, KindNotFound},
	{domaincabins.ErrImageNotFound, KindNotFound},
	{domainreservations.ErrIDRequired, KindValidation},
	{domainreservations.ErrCabinRequired, KindValidation},
	{domainreservations.ErrNegativeTotal, KindValidation},
	{domainreservations.ErrGuestName, KindValidation},
	{domainreservations.ErrGuestContact, KindValidation},
	{domainreservations.ErrGuestsCount, KindValidation},
	{domainreservations.ErrInvalidStatus, KindValidation},
	{domainreservations.ErrInvalidTransition, KindConflict},
	{domainreservations.ErrConflict, KindConflict},
	{domainreservations.ErrConcurrentUpdate, KindConflict},
	{domainreservations.ErrNotFound, KindNotFound},
	{domainuser.ErrNotFound, KindNotFound},
	{domainuser.ErrEmailAlreadyUsed, KindConflict},
}

// KindOf resolves the kind of err. Explicit *Error values win; known domain
// sentinels are mapped next; everything else is an infrastructure failure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindInfrastructure
}

// Message returns the client-facing text for err. Infrastructure details are
// not exposed.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if KindOf(err) == KindInfrastructure {
		return "internal error"
	}
	return err.Error()
}
