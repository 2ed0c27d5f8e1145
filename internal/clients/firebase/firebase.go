package firebase

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/firestore"
	fb "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/raizapp/fleetops-backend/internal/pkg/errors"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

// NewApp initializes the Firebase Admin app. Credential resolution order:
// FIREBASE_SERVICE_ACCOUNT_JSON (inline), FIREBASE_SERVICE_ACCOUNT_PATH
// (file), then Application Default Credentials.
func NewApp(ctx context.Context, log *logger.Logger) (*fb.App, error) {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON"))))
		log.Info("Firebase Admin using inline service account")
	case strings.TrimSpace(os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")) != "":
		path := strings.TrimSpace(os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH"))
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("service account file: %w: %w", err, errors.ErrNotConfigured)
		}
		opts = append(opts, option.WithCredentialsFile(path))
		log.Info("Firebase Admin using service account file", "path", path)
	default:
		log.Info("Firebase Admin using application default credentials")
	}

	app, err := fb.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	return app, nil
}

func NewFirestore(ctx context.Context, app *fb.App) (*firestore.Client, error) {
	return app.Firestore(ctx)
}

func NewMessaging(ctx context.Context, app *fb.App) (*messaging.Client, error) {
	return app.Messaging(ctx)
}

func NewAuth(ctx context.Context, app *fb.App) (*fbauth.Client, error) {
	return app.Auth(ctx)
}
