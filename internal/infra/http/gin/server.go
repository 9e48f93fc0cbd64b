package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"stayhub/internal/infra/config"
	"stayhub/internal/infra/obs"
)

type ReservationHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	Approve(c *gin.Context)
	Decline(c *gin.Context)
	Payment(c *gin.Context)
	Cancel(c *gin.Context)
	Arrival(c *gin.Context)
	Complete(c *gin.Context)
	CancellationQuote(c *gin.Context)
	ListByGuest(c *gin.Context)
	ListByHost(c *gin.Context)
}

type CatalogHTTP interface {
	Calendar(c *gin.Context)
	PricingQuote(c *gin.Context)
}

type Handlers struct {
	Reservation ReservationHTTP
	Catalog     CatalogHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Actor-ID"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Reservation != nil {
		api.POST("/reservations", h.Reservation.Create)
		api.GET("/reservations/:id", h.Reservation.Get)
		api.POST("/reservations/:id/approve", h.Reservation.Approve)
		api.POST("/reservations/:id/decline", h.Reservation.Decline)
		api.POST("/reservations/:id/payments", h.Reservation.Payment)
		api.POST("/reservations/:id/cancel", h.Reservation.Cancel)
		api.POST("/reservations/:id/arrival", h.Reservation.Arrival)
		api.POST("/reservations/:id/complete", h.Reservation.Complete)
		api.GET("/reservations/:id/cancellation-quote", h.Reservation.CancellationQuote)
		api.GET("/guests/:id/reservations", h.Reservation.ListByGuest)
		api.GET("/hosts/:id/reservations", h.Reservation.ListByHost)
	}
	if h.Catalog != nil {
		api.GET("/listings/:id/calendar", h.Catalog.Calendar)
		api.GET("/pricing/quote", h.Catalog.PricingQuote)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
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
