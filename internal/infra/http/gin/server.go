package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"cabinrent/internal/infra/config"
	"cabinrent/internal/infra/obs"
)

type AvailabilityHTTP interface {
	Available(c *gin.Context)
	Calendar(c *gin.Context)
}

type PricingHTTP interface {
	Quote(c *gin.Context)
	Day(c *gin.Context)
	Holidays(c *gin.Context)
}

type CabinHTTP interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	UploadImage(c *gin.Context)
	RemoveImage(c *gin.Context)
}

type ReservationHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
	Reschedule(c *gin.Context)
	Delete(c *gin.Context)
}

type Handlers struct {
	Availability   AvailabilityHTTP
	Pricing        PricingHTTP
	Cabins         CabinHTTP
	Reservations   ReservationHTTP
	Auth           AuthHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// NewRouter builds the engine without touching the global gin mode.
func NewRouter(obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}
	router.MaxMultipartMemory = 10 << 20

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/login", h.Auth.Login)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Availability != nil {
		api.GET("/availability", h.Availability.Available)
		api.GET("/cabins/:id/calendar", h.Availability.Calendar)
	}
	if h.Pricing != nil {
		api.GET("/pricing/quote", h.Pricing.Quote)
		api.GET("/pricing/days/:date", h.Pricing.Day)
		api.GET("/pricing/holidays", h.Pricing.Holidays)
	}
	if h.Cabins != nil {
		cabins := api.Group("/cabins")
		cabins.GET("", h.Cabins.List)
		cabins.POST("", h.Cabins.Create)
		cabins.GET("/:id", h.Cabins.Get)
		cabins.PUT("/:id", h.Cabins.Update)
		cabins.POST("/:id/images", h.Cabins.UploadImage)
		cabins.DELETE("/:id/images/:imageID", h.Cabins.RemoveImage)
	}
	if h.Reservations != nil {
		reservations := api.Group("/reservations")
		reservations.POST("", h.Reservations.Create)
		reservations.GET("", h.Reservations.List)
		reservations.GET("/:id", h.Reservations.Get)
		reservations.POST("/:id/confirm", h.Reservations.Confirm)
		reservations.POST("/:id/cancel", h.Reservations.Cancel)
		reservations.PUT("/:id/dates", h.Reservations.Reschedule)
		reservations.DELETE("/:id", h.Reservations.Delete)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug", "dev", "local":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
