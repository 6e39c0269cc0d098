package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/tarsit/tarsit-api/internal/handler"
	internalmiddleware "github.com/tarsit/tarsit-api/internal/middleware"
	"github.com/tarsit/tarsit-api/internal/service"
	"github.com/tarsit/tarsit-api/pkg/logger"
	corsmiddleware "github.com/tarsit/tarsit-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tarsit/tarsit-api/pkg/middleware/requestid"
)

// Options configures the HTTP surface.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	EnableMetrics  bool
}

// Handlers bundles everything the router mounts.
type Handlers struct {
	Appointments  *handler.AppointmentHandler
	BusinessHours *handler.BusinessHoursHandler
	System        *handler.MetricsHandler
}

// NewRouter builds the gin engine with the shared middleware chain and every route.
func NewRouter(opts Options, h Handlers, auth internalmiddleware.TokenValidator, metrics *service.MetricsService, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api/v1"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())
	r.Use(internalmiddleware.AuditContext())

	r.GET("/health", h.System.Health)
	r.GET("/ready", h.System.Ready)
	if opts.EnableMetrics {
		r.GET("/metrics", h.System.Prometheus)
	}
	if opts.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(opts.APIPrefix)

	// slot lookup is public so booking widgets can render availability
	api.GET("/appointments/business/:businessId/slots", h.Appointments.AvailableSlots)
	api.GET("/businesses/:businessId/hours", h.BusinessHours.List)
	api.GET("/businesses/:businessId/appointment-settings", h.BusinessHours.GetSettings)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(auth))

	appointments := secured.Group("/appointments")
	appointments.POST("", h.Appointments.Create)
	appointments.GET("", h.Appointments.List)
	appointments.GET("/my", h.Appointments.ListMine)
	appointments.GET("/business/:businessId/calendar", h.Appointments.Calendar)
	appointments.GET("/business/:businessId/calendar/export", h.Appointments.ExportCalendar)
	appointments.GET("/:id", h.Appointments.Get)
	appointments.PATCH("/:id", h.Appointments.Update)
	appointments.DELETE("/:id", h.Appointments.Remove)
	appointments.POST("/:id/confirm", h.Appointments.Confirm)
	appointments.POST("/:id/cancel", h.Appointments.Cancel)
	appointments.POST("/:id/complete", h.Appointments.Complete)
	appointments.POST("/:id/no-show", h.Appointments.MarkNoShow)

	businesses := secured.Group("/businesses/:businessId")
	businesses.POST("/hours", h.BusinessHours.Set)
	businesses.POST("/hours/initialize", h.BusinessHours.Initialize)
	businesses.PUT("/hours/:dayOfWeek", h.BusinessHours.UpdateDay)
	businesses.PUT("/appointment-settings", h.BusinessHours.UpdateSettings)

	return r
}
