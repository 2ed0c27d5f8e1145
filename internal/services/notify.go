package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raizapp/fleetops-backend/internal/clients/directory"
	"github.com/raizapp/fleetops-backend/internal/clients/push"
	"github.com/raizapp/fleetops-backend/internal/domain"
	"github.com/raizapp/fleetops-backend/internal/pkg/ctxutil"
	"github.com/raizapp/fleetops-backend/internal/pkg/errors"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

// NotifyService delivers push notifications to drivers and records every
// delivery in the scope's notification log.
type NotifyService interface {
	// NotifyDriver sends a visible notification to one driver.
	NotifyDriver(ctx context.Context, scope, driverID, title, body string, data map[string]string) error
	// NotifyScope fans the notification out to every active driver with a
	// registered token; per-driver failures are counted, not fatal. Returns
	// the number of successful deliveries.
	NotifyScope(ctx context.Context, scope, title, body string, data map[string]string) (int, error)
	// HasToken reports whether the driver has a registered push token.
	HasToken(ctx context.Context, scope, driverID string) (bool, error)
}

type notifyService struct {
	log     *logger.Logger
	store   directory.Store
	gateway push.Gateway
	now     func() time.Time
}

func NewNotifyService(log *logger.Logger, store directory.Store, gateway push.Gateway) (NotifyService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil {
		return nil, fmt.Errorf("directory store required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("push gateway required")
	}
	return &notifyService{
		log:     log.With("service", "NotifyService"),
		store:   store,
		gateway: gateway,
		now:     time.Now,
	}, nil
}

func (s *notifyService) NotifyDriver(ctx context.Context, scope, driverID, title, body string, data map[string]string) error {
	ctx = ctxutil.Default(ctx)
	driver, err := s.driver(ctx, scope, driverID)
	if err != nil {
		return err
	}
	if driver.FCMToken == "" {
		return fmt.Errorf("driver %s has no registered token: %w", driverID, errors.ErrNotFound)
	}
	if err := s.gateway.Send(ctx, driver.FCMToken, title, body, data); err != nil {
		return fmt.Errorf("send to %s: %w", driverID, err)
	}
	s.logDelivery(ctx, scope, driver.Name, body)
	return nil
}

func (s *notifyService) NotifyScope(ctx context.Context, scope, title, body string, data map[string]string) (int, error) {
	ctx = ctxutil.Default(ctx)
	docs, err := s.store.List(ctx, scope, directory.CollectionDrivers)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, doc := range docs {
		var d domain.Driver
		if err := doc.DataTo(&d); err != nil {
			continue
		}
		if !d.Active || strings.TrimSpace(d.FCMToken) == "" {
			continue
		}
		if err := s.gateway.Send(ctx, d.FCMToken, title, body, data); err != nil {
			s.log.Warn("Scope fan-out delivery failed", "scope", scope, "driver", doc.ID, "error", err)
			continue
		}
		sent++
	}
	if sent > 0 {
		s.logDelivery(ctx, scope, "all drivers", body)
	}
	return sent, nil
}

func (s *notifyService) HasToken(ctx context.Context, scope, driverID string) (bool, error) {
	driver, err := s.driver(ctxutil.Default(ctx), scope, driverID)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(driver.FCMToken) != "", nil
}

func (s *notifyService) driver(ctx context.Context, scope, driverID string) (domain.Driver, error) {
	doc, ok, err := s.store.Get(ctx, scope, directory.CollectionDrivers, driverID)
	if err != nil {
		return domain.Driver{}, err
	}
	if !ok {
		return domain.Driver{}, fmt.Errorf("driver %s: %w", driverID, errors.ErrNotFound)
	}
	var d domain.Driver
	if err := doc.DataTo(&d); err != nil {
		return domain.Driver{}, fmt.Errorf("decode driver %s: %w", driverID, err)
	}
	d.ID = doc.ID
	return d, nil
}

// logDelivery appends an audit row. A failed audit write never fails the
// notification itself.
func (s *notifyService) logDelivery(ctx context.Context, scope, recipient, body string) {
	entry := map[string]any{
		"sender":    "backend",
		"recipient": recipient,
		"body":      body,
		"sentAt":    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.store.Set(ctx, scope, directory.CollectionNotificationsLog, uuid.NewString(), entry, false); err != nil {
		s.log.Warn("Notification audit write failed", "scope", scope, "error", err)
	}
}
