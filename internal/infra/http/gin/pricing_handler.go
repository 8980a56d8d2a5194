package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"cabinrent/internal/app/dto"
	pricingapp "cabinrent/internal/app/handlers/pricing"
	"cabinrent/internal/app/queries"
)

type PricingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h PricingHandler) Quote(c *gin.Context) {
	q := pricingapp.QuoteQuery{From: c.Query("from"), To: c.Query("to")}
	result, err := queries.Ask[pricingapp.QuoteQuery, dto.PriceQuote](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PricingHandler) Day(c *gin.Context) {
	q := pricingapp.DayInfoQuery{Date: c.Param("date")}
	result, err := queries.Ask[pricingapp.DayInfoQuery, dto.DayInfo](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PricingHandler) Holidays(c *gin.Context) {
	q := pricingapp.ListHolidaysQuery{Year: c.Query("year")}
	result, err := queries.Ask[pricingapp.ListHolidaysQuery, dto.HolidayCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PricingHTTP = PricingHandler{}
