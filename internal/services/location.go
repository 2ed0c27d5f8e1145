package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/raizapp/fleetops-backend/internal/clients/directory"
	"github.com/raizapp/fleetops-backend/internal/clients/ors"
	"github.com/raizapp/fleetops-backend/internal/clients/push"
	"github.com/raizapp/fleetops-backend/internal/domain"
	"github.com/raizapp/fleetops-backend/internal/pkg/ctxutil"
	"github.com/raizapp/fleetops-backend/internal/pkg/errors"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

// SnapshotInvalidator evicts a scope's cached assistant context after a
// data mutation.
type SnapshotInvalidator interface {
	InvalidateSnapshot(scope string)
}

// LocationService drives the location round-trip: a silent push asks the
// driver's device for coordinates, the device posts them back, and the
// resulting road ETA to the warehouse is stored for the snapshot builder.
type LocationService interface {
	// Request marks the driver's location record pending and pings the
	// device with a data-only push.
	Request(ctx context.Context, scope, driverID, requestedBy string) error
	// Receive resolves posted coordinates into a distance/ETA record. ORS
	// failures are recorded as status=error rather than returned raw.
	Receive(ctx context.Context, scope, driverID string, lat, lng float64) error
}

type locationService struct {
	log         *logger.Logger
	store       directory.Store
	gateway     push.Gateway
	router      ors.Client
	invalidator SnapshotInvalidator
	now         func() time.Time
}

func NewLocationService(log *logger.Logger, store directory.Store, gateway push.Gateway, router ors.Client, invalidator SnapshotInvalidator) (LocationService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil {
		return nil, fmt.Errorf("directory store required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("push gateway required")
	}
	if router == nil {
		return nil, fmt.Errorf("route client required")
	}
	return &locationService{
		log:         log.With("service", "LocationService"),
		store:       store,
		gateway:     gateway,
		router:      router,
		invalidator: invalidator,
		now:         time.Now,
	}, nil
}

func (s *locationService) Request(ctx context.Context, scope, driverID, requestedBy string) error {
	ctx = ctxutil.Default(ctx)
	doc, ok, err := s.store.Get(ctx, scope, directory.CollectionDrivers, driverID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("driver %s: %w", driverID, errors.ErrNotFound)
	}
	var driver domain.Driver
	if err := doc.DataTo(&driver); err != nil {
		return fmt.Errorf("decode driver %s: %w", driverID, err)
	}
	if strings.TrimSpace(driver.FCMToken) == "" {
		return fmt.Errorf("driver %s has no registered token: %w", driverID, errors.ErrNotFound)
	}

	record := map[string]any{
		"status":      domain.EtaStatusPending,
		"driverId":    driverID,
		"driverName":  driver.Name,
		"requestedBy": requestedBy,
		"requestedAt": s.now().UTC().Format(time.RFC3339),
	}
	if err := s.store.Set(ctx, scope, directory.CollectionLocationResponses, driverID, record, true); err != nil {
		return fmt.Errorf("write pending record: %w", err)
	}

	data := map[string]string{
		"type":     "location_request",
		"scopeId":  scope,
		"driverId": driverID,
	}
	if err := s.gateway.SendSilent(ctx, driver.FCMToken, data); err != nil {
		return fmt.Errorf("silent push to %s: %w", driverID, err)
	}
	s.log.Info("Location requested", "scope", scope, "driver", driverID)
	return nil
}

func (s *locationService) Receive(ctx context.Context, scope, driverID string, lat, lng float64) error {
	ctx = ctxutil.Default(ctx)

	warehouseLat, warehouseLng, err := s.warehouse(ctx, scope)
	if err != nil {
		return err
	}

	doc, ok, err := s.store.Get(ctx, scope, directory.CollectionDrivers, driverID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("driver %s: %w", driverID, errors.ErrNotFound)
	}
	var driver domain.Driver
	if err := doc.DataTo(&driver); err != nil {
		return fmt.Errorf("decode driver %s: %w", driverID, err)
	}

	route, routeErr := s.router.DrivingRoute(ctx, lat, lng, warehouseLat, warehouseLng)
	var record map[string]any
	if routeErr != nil {
		s.log.Warn("ETA resolution failed", "scope", scope, "driver", driverID, "error", routeErr)
		record = map[string]any{
			"status":     domain.EtaStatusError,
			"driverId":   driverID,
			"driverName": driver.Name,
			"error":      routeErr.Error(),
			"updatedAt":  s.now().UTC().Format(time.RFC3339),
		}
	} else {
		record = map[string]any{
			"status":     domain.EtaStatusReady,
			"driverId":   driverID,
			"driverName": driver.Name,
			"distanceKm": route.DistanceKm,
			"etaMinutes": route.EtaMinutes,
			"lat":        lat,
			"lng":        lng,
			"updatedAt":  s.now().UTC().Format(time.RFC3339),
		}
	}
	if err := s.store.Set(ctx, scope, directory.CollectionLocationResponses, driverID, record, true); err != nil {
		return fmt.Errorf("write location record: %w", err)
	}

	// The next assistant chat must see the fresh ETA.
	if s.invalidator != nil {
		s.invalidator.InvalidateSnapshot(scope)
	}
	if routeErr != nil {
		return fmt.Errorf("resolve route: %w", routeErr)
	}
	s.log.Info("Location resolved", "scope", scope, "driver", driverID, "distance_km", route.DistanceKm, "eta_minutes", route.EtaMinutes)
	return nil
}

// warehouse reads the scope's warehouse coordinates from config/main.
func (s *locationService) warehouse(ctx context.Context, scope string) (float64, float64, error) {
	doc, ok, err := s.store.Get(ctx, scope, directory.CollectionConfig, "main")
	if err != nil {
		return 0, 0, err
	}
	if !ok {
		return 0, 0, fmt.Errorf("scope %s has no config/main document: %w", scope, errors.ErrNotConfigured)
	}
	warehouse, _ := doc.Data["warehouse"].(map[string]any)
	lat, latOK := toFloat(warehouse["lat"])
	lng, lngOK := toFloat(warehouse["lng"])
	if !latOK || !lngOK {
		return 0, 0, fmt.Errorf("scope %s warehouse coordinates missing: %w", scope, errors.ErrNotConfigured)
	}
	return lat, lng, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
