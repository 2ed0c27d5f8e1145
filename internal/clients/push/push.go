package push

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"

	"github.com/raizapp/fleetops-backend/internal/pkg/ctxutil"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

// Gateway is the send-by-token push primitive.
type Gateway interface {
	// Send delivers a visible notification with optional data payload.
	Send(ctx context.Context, token, title, body string, data map[string]string) error
	// SendSilent delivers a data-only message with no visible notification.
	SendSilent(ctx context.Context, token string, data map[string]string) error
}

const androidChannelID = "fleetops_channel"

type fcmGateway struct {
	log *logger.Logger
	msg *messaging.Client
}

func NewFCMGateway(log *logger.Logger, msg *messaging.Client) (Gateway, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if msg == nil {
		return nil, fmt.Errorf("messaging client required")
	}
	return &fcmGateway{log: log.With("service", "FCMGateway"), msg: msg}, nil
}

func (g *fcmGateway) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := buildNotificationMessage(token, title, body, data)
	id, err := g.msg.Send(ctxutil.Default(ctx), msg)
	if err != nil {
		return err
	}
	g.log.Debug("Push sent", "message_id", id)
	return nil
}

func (g *fcmGateway) SendSilent(ctx context.Context, token string, data map[string]string) error {
	msg := buildSilentMessage(token, data)
	id, err := g.msg.Send(ctxutil.Default(ctx), msg)
	if err != nil {
		return err
	}
	g.log.Debug("Silent push sent", "message_id", id)
	return nil
}

func buildNotificationMessage(token, title, body string, data map[string]string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID:  androidChannelID,
				Sound:      "default",
				Visibility: messaging.VisibilityPublic,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound:            "default",
					Badge:            intPtr(1),
					ContentAvailable: true,
				},
			},
		},
	}
}

func buildSilentMessage(token string, data map[string]string) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Data:  data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{ContentAvailable: true},
			},
		},
	}
}

func intPtr(v int) *int { return &v }
