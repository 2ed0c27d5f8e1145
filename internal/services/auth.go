package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/raizapp/fleetops-backend/internal/clients/directory"
	"github.com/raizapp/fleetops-backend/internal/domain"
	"github.com/raizapp/fleetops-backend/internal/pkg/ctxutil"
	"github.com/raizapp/fleetops-backend/internal/pkg/errors"
	"github.com/raizapp/fleetops-backend/internal/pkg/logger"
)

// TokenVerifier checks a Firebase ID token. *fbauth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Identity is the resolved caller of an authenticated request.
type Identity struct {
	UID  string
	Role string
}

// AuthService verifies ID tokens and resolves the caller's role. Role
// resolution order: users then drivers doc in the request scope, the same
// pair in any other scope, the SUPERADMIN_UIDS env allow-list, then the
// system/config superadminUids array.
type AuthService interface {
	Authenticate(ctx context.Context, idToken, scope string) (Identity, error)
}

type authService struct {
	log      *logger.Logger
	verifier TokenVerifier
	store    directory.Store
}

func NewAuthService(log *logger.Logger, verifier TokenVerifier, store directory.Store) (AuthService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("token verifier required")
	}
	if store == nil {
		return nil, fmt.Errorf("directory store required")
	}
	return &authService{
		log:      log.With("service", "AuthService"),
		verifier: verifier,
		store:    store,
	}, nil
}

func (s *authService) Authenticate(ctx context.Context, idToken, scope string) (Identity, error) {
	ctx = ctxutil.Default(ctx)
	idToken = strings.TrimSpace(idToken)
	if idToken == "" {
		return Identity{}, fmt.Errorf("missing bearer token: %w", errors.ErrUnauthorized)
	}
	token, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		s.log.Debug("Token verification failed", "error", err)
		return Identity{}, fmt.Errorf("invalid or expired token: %w", errors.ErrUnauthorized)
	}
	uid := token.UID

	role := s.roleInScope(ctx, scope, uid)
	if role == "" {
		role = s.roleInAnyScope(ctx, scope, uid)
	}
	if role == "" && s.envSuperadmin(uid) {
		role = domain.RoleSuperadmin
	}
	if role == "" && s.configSuperadmin(ctx, uid) {
		role = domain.RoleSuperadmin
	}

	return Identity{UID: uid, Role: role}, nil
}

func (s *authService) roleInScope(ctx context.Context, scope, uid string) string {
	if scope == "" {
		return ""
	}
	for _, col := range []string{directory.CollectionUsers, directory.CollectionDrivers} {
		doc, ok, err := s.store.Get(ctx, scope, col, uid)
		if err != nil {
			s.log.Warn("Role lookup failed", "scope", scope, "collection", col, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if role, _ := doc.Data["role"].(string); role != "" {
			return role
		}
	}
	return ""
}

// roleInAnyScope covers callers registered against a different scope than
// the one they are hitting, like a superadmin browsing a site they do not
// belong to.
func (s *authService) roleInAnyScope(ctx context.Context, requestScope, uid string) string {
	scopes, err := s.store.Scopes(ctx)
	if err != nil {
		s.log.Warn("Scope listing failed", "error", err)
		return ""
	}
	for _, scope := range scopes {
		if scope == requestScope {
			continue
		}
		if role := s.roleInScope(ctx, scope, uid); role != "" {
			return role
		}
	}
	return ""
}

func (s *authService) envSuperadmin(uid string) bool {
	raw := strings.TrimSpace(os.Getenv("SUPERADMIN_UIDS"))
	if raw == "" {
		return false
	}
	for _, candidate := range strings.Split(raw, ",") {
		if strings.TrimSpace(candidate) == uid {
			return true
		}
	}
	return false
}

func (s *authService) configSuperadmin(ctx context.Context, uid string) bool {
	doc, ok, err := s.store.GetGlobal(ctx, directory.GlobalCollectionSystem, directory.GlobalDocConfig)
	if err != nil {
		s.log.Warn("System config lookup failed", "error", err)
		return false
	}
	if !ok {
		return false
	}
	uids, _ := doc.Data["superadminUids"].([]any)
	for _, candidate := range uids {
		if str, _ := candidate.(string); strings.TrimSpace(str) == uid {
			return true
		}
	}
	return false
}

// CanManageLocation reports whether the role may request another driver's
// location or submit coordinates on a driver's behalf.
func CanManageLocation(role string) bool {
	switch role {
	case domain.RoleAdmin, domain.RoleSuperadmin, domain.RoleAssistant:
		return true
	default:
		return false
	}
}
