package app

import (
	"github.com/gin-gonic/gin"

	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
	"github.com/raizapp/fleetops-backend/internal/server"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		Log:              log,
		AllowedOrigins:   cfg.AllowedOrigins,
		AuthMiddleware:   middleware.Auth,
		NotifyHandler:    handlers.Notify,
		LocationHandler:  handlers.Location,
		AssistantHandler: handlers.Assistant,
	})
}
