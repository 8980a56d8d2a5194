package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"cabinrent/internal/app/commands"
	"cabinrent/internal/app/dto"
	cabinsapp "cabinrent/internal/app/handlers/cabins"
	"cabinrent/internal/app/queries"
)

type CabinHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

type cabinRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Capacity    int      `json:"capacity"`
	Bedrooms    int      `json:"bedrooms"`
	Amenities   []string `json:"amenities"`
}

func (h CabinHandler) List(c *gin.Context) {
	result, err := queries.Ask[cabinsapp.ListCabinsQuery, dto.CabinCollection](c.Request.Context(), h.Queries, cabinsapp.ListCabinsQuery{})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CabinHandler) Get(c *gin.Context) {
	q := cabinsapp.GetCabinQuery{CabinID: c.Param("id")}
	result, err := queries.Ask[cabinsapp.GetCabinQuery, dto.Cabin](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h CabinHandler) Create(c *gin.Context) {
	var req cabinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := cabinsapp.CreateCabinCommand{
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Bedrooms:    req.Bedrooms,
		Amenities:   req.Amenities,
	}
	result, err := commands.Dispatch[cabinsapp.CreateCabinCommand, *dto.Cabin](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h CabinHandler) Update(c *gin.Context) {
	var req cabinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	cmd := cabinsapp.UpdateCabinCommand{
		CabinID:     c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Capacity:    req.Capacity,
		Bedrooms:    req.Bedrooms,
		Amenities:   req.Amenities,
	}
	result, err := commands.Dispatch[cabinsapp.UpdateCabinCommand, *dto.Cabin](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadImage accepts a multipart form with the file under "image".
func (h CabinHandler) UploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "image file is required")
		return
	}
	file, err := header.Open()
	if err != nil {
		badRequest(c, "image file is unreadable")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	cmd := cabinsapp.UploadCabinImageCommand{
		CabinID:     c.Param("id"),
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}
	result, err := commands.Dispatch[cabinsapp.UploadCabinImageCommand, *dto.Cabin](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h CabinHandler) RemoveImage(c *gin.Context) {
	cmd := cabinsapp.RemoveCabinImageCommand{CabinID: c.Param("id"), ImageID: c.Param("imageID")}
	result, err := commands.Dispatch[cabinsapp.RemoveCabinImageCommand, *dto.Cabin](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ CabinHTTP = CabinHandler{}
