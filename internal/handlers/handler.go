package handlers

import (
	"time"

	"ecoroute/internal/hub"
	"ecoroute/internal/logger"
	"ecoroute/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Notifications is the live change feed pushed to WebSocket viewers.
type Notifications interface {
	Subscribe() (<-chan hub.Notification, func())
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services      *service.Service
	notifications Notifications
	log           *logger.Logger
	interval      time.Duration
}

// NewHandler constructs a new HTTP handler with dependencies. notifications
// may be nil, in which case viewers only get periodic dashboards.
func NewHandler(services *service.Service, notifications Notifications, log *logger.Logger) *Handler {
	return &Handler{
		services:      services,
		notifications: notifications,
		log:           log,
		interval:      defaultInterval,
	}
}

// WithInterval sets the default WebSocket dashboard period.
func (h *Handler) WithInterval(d time.Duration) *Handler {
	if d > 0 && d <= maxInterval {
		h.interval = d
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.accessLog)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAPIRoutes(router)

	// Live dashboard stream, same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		api.GET("/dashboard", h.getDashboard)
		api.POST("/telemetry", h.postTelemetry)
		h.registerBinRoutes(api)
		h.registerRouteRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerBinRoutes(api *gin.RouterGroup) {
	bins := api.Group("/bins")
	{
		bins.GET("", h.listBins)
		bins.GET("/:id", h.getBin)
		bins.GET("/:id/events", h.getBinEvents)
		// Body example: {"name":"Market Gate","lat":-1.1145,"lng":36.662}
		bins.POST("", h.addBin)
	}
}

func (h *Handler) registerRouteRoutes(api *gin.RouterGroup) {
	route := api.Group("/route")
	{
		route.POST("", h.planRoute)
		route.GET("", h.getRoute)
		route.DELETE("", h.clearRoute)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("", h.getLogs)
	}
}
