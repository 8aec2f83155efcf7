// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"

	appctx "supplyfin/internal/core/context"
	"supplyfin/internal/domain/calendar"
	"supplyfin/internal/domain/registry"
	"supplyfin/internal/domain/supply"
	"supplyfin/internal/domain/tariff"
	"supplyfin/internal/infrastructure/http/v1/handlers"
	"supplyfin/internal/infrastructure/http/v1/middleware"
	"supplyfin/pkg/logger"
)

// RouterConfig holds the dependencies of the API.
type RouterConfig struct {
	Logger *logger.Logger

	// Tokens validates bearer tokens into sessions.
	Tokens middleware.TokenValidator

	Supplies   *supply.Service
	Registries *registry.Service
	Tariffs    *tariff.Service
	Calendar   *calendar.Service

	// HealthChecks are probed by /health/ready.
	HealthChecks map[string]handlers.Pinger
	Version      string

	// Compression gzips responses.
	Compression bool
	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Version, cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.Tokens))

	base := handlers.NewBaseHandler()
	registerSupplyRoutes(api, handlers.NewSupplyHandler(base, cfg.Supplies))
	registerRegistryRoutes(api, handlers.NewRegistryHandler(base, cfg.Registries))
	cal := handlers.NewCalendarHandler(base, cfg.Calendar)
	registerCompanyRoutes(api, handlers.NewTariffHandler(base, cfg.Tariffs), cal)
	registerCalendarRoutes(api, cal)

	return router
}

// NewHandler builds the router and wraps it with response compression when enabled.
func NewHandler(cfg RouterConfig) http.Handler {
	router := NewRouter(cfg)
	if !cfg.Compression {
		return router
	}
	return gzhttp.GzipHandler(router)
}

func registerSupplyRoutes(rg *gin.RouterGroup, h *handlers.SupplyHandler) {
	g := rg.Group("/supplies")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.POST("/verify/seller", h.VerifyBySeller)
	g.POST("/verify/buyer", h.VerifyByBuyer)
	g.POST("/verify/auto", h.VerifyAutomatically)
}

func registerRegistryRoutes(rg *gin.RouterGroup, h *handlers.RegistryHandler) {
	g := rg.Group("/registries")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Remove)
	g.PUT("/:id/supplies", h.SetSupplies)
	g.POST("/:id/decline", h.Decline)
	g.PUT("/:id/discount", h.UpdateDiscount)
}

func registerCompanyRoutes(rg *gin.RouterGroup, tariffs *handlers.TariffHandler, cal *handlers.CalendarHandler) {
	g := rg.Group("/companies/:id")
	g.GET("/tariffs", tariffs.List)
	g.PUT("/tariffs", tariffs.Replace)
	g.GET("/discount-settings", cal.GetSettings)
	g.PUT("/discount-settings", cal.SaveSettings)
}

func registerCalendarRoutes(rg *gin.RouterGroup, h *handlers.CalendarHandler) {
	g := rg.Group("/calendar/free-days")
	g.GET("", h.ListFreeDays)
	g.POST("", middleware.RequireRole(appctx.RoleSuperAdmin), h.AddFreeDay)
	g.DELETE("/:id", middleware.RequireRole(appctx.RoleSuperAdmin), h.DeactivateFreeDay)
}
