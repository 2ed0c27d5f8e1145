package app

import (
	"github.com/raizapp/fleetops-backend/internal/handlers"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

type Handlers struct {
	Notify    *handlers.NotifyHandler
	Location  *handlers.LocationHandler
	Assistant *handlers.AssistantHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Notify:    handlers.NewNotifyHandler(services.Notify),
		Location:  handlers.NewLocationHandler(services.Location),
		Assistant: handlers.NewAssistantHandler(services.Assistant),
	}
}
