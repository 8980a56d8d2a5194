package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"cabinrent/internal/app/apperr"
	"cabinrent/internal/app/dto"
	authsvc "cabinrent/internal/app/services/auth"
)

type AuthHTTP interface {
	Login(c *gin.Context)
	Me(c *gin.Context)
}

type AuthHandler struct {
	Service *authsvc.Service
	Logger  *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Login(c *gin.Context) {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errorBody{Kind: "unavailable", Message: "auth service unavailable"}})
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	result, err := h.Service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.AuthResponse{
		User:      dto.MapUserProfile(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

func (h AuthHandler) Me(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok {
		respondError(c, h.Logger, apperr.Unauthorized("auth required"))
		return
	}
	if h.Service == nil {
		c.JSON(http.StatusOK, dto.UserProfile{ID: p.ID, Email: p.Email, Roles: p.Roles})
		return
	}
	user, err := h.Service.Me(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapUserProfile(user))
}

var _ AuthHTTP = AuthHandler{}
