package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"cabinrent/internal/app/dto"
	availabilityapp "cabinrent/internal/app/handlers/availability"
	"cabinrent/internal/app/queries"
)

type AvailabilityHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h AvailabilityHandler) Available(c *gin.Context) {
	q := availabilityapp.FindAvailableCabinsQuery{From: c.Query("from"), To: c.Query("to")}
	result, err := queries.Ask[availabilityapp.FindAvailableCabinsQuery, dto.CabinCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	q := availabilityapp.GetCabinCalendarQuery{
		CabinID: c.Param("id"),
		From:    c.Query("from"),
		To:      c.Query("to"),
	}
	result, err := queries.Ask[availabilityapp.GetCabinCalendarQuery, dto.CabinCalendar](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
