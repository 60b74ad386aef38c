package handlers

import (
	"cleaning_robot/internal/logger"
	"cleaning_robot/internal/service"
	"cleaning_robot/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires the HTTP layer to services, the realtime hub and logging.
type Handler struct {
	services     *service.Service
	hub          *ws.Hub
	log          *logger.Logger
	authRequired bool
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, hub *ws.Hub, log *logger.Logger, authRequired bool) *Handler {
	return &Handler{services: services, hub: hub, log: log, authRequired: authRequired}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Panel + agent API
	h.registerAPIRoutes(router)

	return router
}

// corsMiddleware allows any origin: the panel SPA is served separately
// from this API and its host is not known in advance.
func corsMiddleware() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	return cors.New(cfg)
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		// Agent-facing and read-only endpoints stay open: the firmware
		// polls these without credentials.
		api.GET("/robot/status", h.robotStatus)
		api.POST("/robot/status", h.submitTelemetry)
		api.GET("/ws", h.wsConnect)

		// Panel endpoints; token enforcement is config-gated.
		panel := api.Group("")
		if h.authRequired {
			panel.Use(h.userIDMiddleware)
		}
		panel.POST("/robot/command", h.robotCommand)
		panel.GET("/cleaning-logs", h.getCleaningLogs)
	}
}
