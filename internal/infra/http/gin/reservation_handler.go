package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"cabinrent/internal/app/commands"
	"cabinrent/internal/app/dto"
	reservationsapp "cabinrent/internal/app/handlers/reservations"
	"cabinrent/internal/app/queries"
)

const idempotencyHeader = "Idempotency-Key"

type ReservationHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type createReservationRequest struct {
	CabinID string `json:"cabin_id"`
	From    string `json:"from"`
	To      string `json:"to"`
	Guests  int    `json:"guests"`
	Guest   struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Phone string `json:"phone"`
		Notes string `json:"notes"`
	} `json:"guest"`
}

type cancelReservationRequest struct {
	Reason string `json:"reason"`
}

type rescheduleRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (h ReservationHandler) Create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	guests := req.Guests
	if guests == 0 {
		guests = 1
	}
	cmd := reservationsapp.CreateReservationCommand{
		CabinID:         req.CabinID,
		From:            req.From,
		To:              req.To,
		GuestName:       strings.TrimSpace(req.Guest.Name),
		GuestEmail:      strings.TrimSpace(req.Guest.Email),
		GuestPhone:      strings.TrimSpace(req.Guest.Phone),
		Notes:           req.Guest.Notes,
		Guests:          guests,
		IdempotencyKeyV: strings.TrimSpace(c.GetHeader(idempotencyHeader)),
	}
	result, err := commands.Dispatch[reservationsapp.CreateReservationCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h ReservationHandler) List(c *gin.Context) {
	q := reservationsapp.ListReservationsQuery{
		CabinID: c.Query("cabin_id"),
		Status:  strings.ToLower(c.Query("status")),
	}
	result, err := queries.Ask[reservationsapp.ListReservationsQuery, dto.ReservationCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Get(c *gin.Context) {
	q := reservationsapp.GetReservationQuery{ReservationID: c.Param("id")}
	result, err := queries.Ask[reservationsapp.GetReservationQuery, dto.Reservation](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Confirm(c *gin.Context) {
	cmd := reservationsapp.ConfirmReservationCommand{ReservationID: c.Param("id")}
	result, err := commands.Dispatch[reservationsapp.ConfirmReservationCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Cancel(c *gin.Context) {
	var req cancelReservationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request body")
			return
		}
	}
	cmd := reservationsapp.CancelReservationCommand{ReservationID: c.Param("id"), Reason: strings.TrimSpace(req.Reason)}
	result, err := commands.Dispatch[reservationsapp.CancelReservationCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Reschedule(c *gin.Context) {
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := reservationsapp.RescheduleReservationCommand{ReservationID: c.Param("id"), From: req.From, To: req.To}
	result, err := commands.Dispatch[reservationsapp.RescheduleReservationCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ReservationHandler) Delete(c *gin.Context) {
	cmd := reservationsapp.DeleteReservationCommand{ReservationID: c.Param("id")}
	if _, err := commands.Dispatch[reservationsapp.DeleteReservationCommand, *dto.Reservation](c.Request.Context(), h.Commands, cmd); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

var _ ReservationHTTP = ReservationHandler{}
