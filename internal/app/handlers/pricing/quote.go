package pricing

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"cabinrent/internal/app/apperr"
	"cabinrent/internal/app/dto"
	"cabinrent/internal/app/queries"
	domainpricing "cabinrent/internal/domain/pricing"
	"cabinrent/internal/domain/shared/civil"
	"cabinrent/internal/domain/shared/daterange"
)

const (
	quoteKey    = "pricing.quote"
	dayInfoKey  = "pricing.day"
	holidaysKey = "pricing.holidays"
)

var ErrEngineMissing = errors.New("pricing: engine not configured")

type QuoteQuery struct {
	From string `validate:"required"`
	To   string `validate:"required"`
}

func (q QuoteQuery) Key() string { return quoteKey }

type QuoteHandler struct {
	Engine *domainpricing.Engine
	Logger *slog.Logger
	// MaxNights caps the quoted range; zero means daterange.MaxWindowNights.
	MaxNights int
}

func (h *QuoteHandler) Handle(ctx context.Context, q QuoteQuery) (dto.PriceQuote, error) {
	if h.Engine == nil {
		return dto.PriceQuote{}, ErrEngineMissing
	}
	dr, err := daterange.Parse(q.From, q.To)
	if err != nil {
		return dto.PriceQuote{}, err
	}
	if err := dr.CheckNights(h.MaxNights); err != nil {
		return dto.PriceQuote{}, err
	}
	warnUncovered(ctx, h.Logger, h.Engine, dr)
	quote, err := h.Engine.Quote(dr)
	if err != nil {
		return dto.PriceQuote{}, err
	}
	return dto.MapPriceQuote(quote), nil
}

type DayInfoQuery struct {
	Date string `validate:"required"`
}

func (q DayInfoQuery) Key() string { return dayInfoKey }

type DayInfoHandler struct {
	Engine *domainpricing.Engine
}

func (h *DayInfoHandler) Handle(_ context.Context, q DayInfoQuery) (dto.DayInfo, error) {
	if h.Engine == nil {
		return dto.DayInfo{}, ErrEngineMissing
	}
	d, err := civil.Parse(q.Date)
	if err != nil {
		return dto.DayInfo{}, err
	}
	return dto.MapDayInfo(h.Engine.Day(d)), nil
}

// ListHolidaysQuery lists one year; an empty Year means the current civil year.
type ListHolidaysQuery struct {
	Year string `validate:"omitempty,numeric,len=4"`
}

func (q ListHolidaysQuery) Key() string { return holidaysKey }

type ListHolidaysHandler struct {
	Engine *domainpricing.Engine
	Today  func() civil.Date
}

func (h *ListHolidaysHandler) Handle(_ context.Context, q ListHolidaysQuery) (dto.HolidayCollection, error) {
	if h.Engine == nil {
		return dto.HolidayCollection{}, ErrEngineMissing
	}
	year := h.today().Year
	if q.Year != "" {
		parsed, err := strconv.Atoi(q.Year)
		if err != nil {
			return dto.HolidayCollection{}, apperr.Validation("year must be a number")
		}
		year = parsed
	}
	return dto.MapHolidays(year, h.Engine.Calendar().InYear(year)), nil
}

func (h *ListHolidaysHandler) today() civil.Date {
	if h.Today != nil {
		return h.Today()
	}
	return civil.Today()
}

// warnUncovered logs quotes that touch years without holiday data; such days
// are priced as weekday or weekend only.
func warnUncovered(ctx context.Context, logger *slog.Logger, engine *domainpricing.Engine, dr daterange.DateRange) {
	if logger == nil {
		return
	}
	if years := engine.UncoveredYears(dr); len(years) > 0 {
		logger.WarnContext(ctx, "holiday calendar does not cover quoted years", "years", years, "range", dr.String())
	}
}

var (
	_ queries.Handler[QuoteQuery, dto.PriceQuote]               = (*QuoteHandler)(nil)
	_ queries.Handler[DayInfoQuery, dto.DayInfo]                = (*DayInfoHandler)(nil)
	_ queries.Handler[ListHolidaysQuery, dto.HolidayCollection] = (*ListHolidaysHandler)(nil)
)
