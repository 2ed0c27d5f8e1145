package app

import (
	"context"
	"fmt"

	"github.com/raizapp/fleetops-backend/internal/clients/directory"
	"github.com/raizapp/fleetops-backend/internal/clients/firebase"
	"github.com/raizapp/fleetops-backend/internal/clients/hf"
	"github.com/raizapp/fleetops-backend/internal/clients/ors"
	"github.com/raizapp/fleetops-backend/internal/clients/push"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
	"github.com/raizapp/fleetops-backend/internal/services"
)

type Clients struct {
	Store    directory.Store
	Push     push.Gateway
	Verifier services.TokenVerifier
	Model    hf.Client
	Routes   ors.Client
}

func wireClients(ctx context.Context, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")

	fbApp, err := firebase.NewApp(ctx, log)
	if err != nil {
		return Clients{}, fmt.Errorf("init firebase: %w", err)
	}

	fs, err := firebase.NewFirestore(ctx, fbApp)
	if err != nil {
		return Clients{}, fmt.Errorf("init firestore: %w", err)
	}
	store, err := directory.NewFirestoreStore(log, fs)
	if err != nil {
		return Clients{}, err
	}

	msg, err := firebase.NewMessaging(ctx, fbApp)
	if err != nil {
		return Clients{}, fmt.Errorf("init messaging: %w", err)
	}
	gateway, err := push.NewFCMGateway(log, msg)
	if err != nil {
		return Clients{}, err
	}

	verifier, err := firebase.NewAuth(ctx, fbApp)
	if err != nil {
		return Clients{}, fmt.Errorf("init auth: %w", err)
	}

	model, err := hf.NewClient(log)
	if err != nil {
		return Clients{}, err
	}

	routes, err := ors.NewClient(log)
	if err != nil {
		return Clients{}, err
	}

	return Clients{
		Store:    store,
		Push:     gateway,
		Verifier: verifier,
		Model:    model,
		Routes:   routes,
	}, nil
}
