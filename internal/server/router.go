package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/raizapp/fleetops-backend/internal/handlers"
	"github.com/raizapp/fleetops-backend/internal/middleware"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log              *logger.Logger
	AllowedOrigins   []string
	AuthMiddleware   *middleware.AuthMiddleware
	NotifyHandler    *handlers.NotifyHandler
	LocationHandler  *handlers.LocationHandler
	AssistantHandler *handlers.AssistantHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(cfg.Log))

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", "X-Scope-Id", middleware.RequestIDHeader},
		AllowCredentials: true,
	}
	if len(origins) == 1 && strings.TrimSpace(origins[0]) == "*" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = origins
	}
	router.Use(cors.New(corsConfig))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Notifications
	api.POST("/notify/driver", cfg.NotifyHandler.NotifyDriver)
	api.POST("/notify/scope", cfg.NotifyHandler.NotifyScope)
	api.GET("/driver/token", cfg.NotifyHandler.DriverToken)
	// Location round-trip
	api.POST("/location/request", cfg.LocationHandler.Request)
	api.POST("/location/receive", cfg.LocationHandler.Receive)
	// Assistant
	api.POST("/assistant/chat", cfg.AssistantHandler.Chat)

	return router
}
