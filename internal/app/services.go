package app

import (
	"github.com/raizapp/fleetops-backend/internal/assistant"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
	"github.com/raizapp/fleetops-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Notify    services.NotifyService
	Location  services.LocationService
	Assistant assistant.Service
}

func wireServices(log *logger.Logger, cfg Config, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	builder, err := assistant.NewSnapshotBuilder(log, clients.Store)
	if err != nil {
		return Services{}, err
	}
	cache, err := assistant.NewSnapshotCache(log, builder, cfg.CacheTTL)
	if err != nil {
		return Services{}, err
	}
	assistantService, err := assistant.NewService(log, cache, clients.Model)
	if err != nil {
		return Services{}, err
	}

	authService, err := services.NewAuthService(log, clients.Verifier, clients.Store)
	if err != nil {
		return Services{}, err
	}
	notifyService, err := services.NewNotifyService(log, clients.Store, clients.Push)
	if err != nil {
		return Services{}, err
	}
	locationService, err := services.NewLocationService(log, clients.Store, clients.Push, clients.Routes, assistantService)
	if err != nil {
		return Services{}, err
	}

	return Services{
		Auth:      authService,
		Notify:    notifyService,
		Location:  locationService,
		Assistant: assistantService,
	}, nil
}
