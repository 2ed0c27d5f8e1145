package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/raizapp/fleetops-backend/internal/domain"
	"github.com/raizapp/fleetops-backend/internal/pkg/ctxutil"
)

type fakeLocation struct {
	requested []string
	received  []string
}

func (f *fakeLocation) Request(_ context.Context, scope, driverID, _ string) error {
	f.requested = append(f.requested, scope+"/"+driverID)
	return nil
}

func (f *fakeLocation) Receive(_ context.Context, scope, driverID string, _, _ float64) error {
	f.received = append(f.received, scope+"/"+driverID)
	return nil
}

func locationRouter(svc *fakeLocation, rd *ctxutil.RequestData) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if rd != nil {
			c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		}
		c.Next()
	})
	handler := NewLocationHandler(svc)
	router.POST("/api/location/request", handler.Request)
	router.POST("/api/location/receive", handler.Receive)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestLocationRequestRoleGate(t *testing.T) {
	cases := []struct {
		name       string
		rd         *ctxutil.RequestData
		wantStatus int
	}{
		{"admin_allowed", &ctxutil.RequestData{UID: "u1", Role: domain.RoleAdmin}, http.StatusOK},
		{"superadmin_allowed", &ctxutil.RequestData{UID: "u1", Role: domain.RoleSuperadmin}, http.StatusOK},
		{"assistant_allowed", &ctxutil.RequestData{UID: "u1", Role: domain.RoleAssistant}, http.StatusOK},
		{"driver_forbidden", &ctxutil.RequestData{UID: "u1", Role: domain.RoleDriver}, http.StatusForbidden},
		{"unknown_forbidden", &ctxutil.RequestData{UID: "u1"}, http.StatusForbidden},
		{"no_identity_forbidden", nil, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeLocation{}
			rec := postJSON(t, locationRouter(svc, tc.rd), "/api/location/request", `{"scopeId":"matriz","driverId":"d1"}`)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status: want %d got %d (%s)", tc.wantStatus, rec.Code, rec.Body.String())
			}
			if tc.wantStatus == http.StatusOK && len(svc.requested) != 1 {
				t.Fatalf("service not invoked: %v", svc.requested)
			}
			if tc.wantStatus != http.StatusOK && len(svc.requested) != 0 {
				t.Fatalf("forbidden caller must not reach the service: %v", svc.requested)
			}
		})
	}
}

func TestLocationReceiveOwnershipGate(t *testing.T) {
	body := `{"scopeId":"matriz","driverId":"d1","lat":-23.6,"lng":-46.7}`

	// A driver posting their own position.
	svc := &fakeLocation{}
	rec := postJSON(t, locationRouter(svc, &ctxutil.RequestData{UID: "d1", Role: domain.RoleDriver}), "/api/location/receive", body)
	if rec.Code != http.StatusOK || len(svc.received) != 1 {
		t.Fatalf("own position: want 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	// A driver posting someone else's position.
	svc = &fakeLocation{}
	rec = postJSON(t, locationRouter(svc, &ctxutil.RequestData{UID: "d2", Role: domain.RoleDriver}), "/api/location/receive", body)
	if rec.Code != http.StatusForbidden || len(svc.received) != 0 {
		t.Fatalf("other driver: want 403, got %d", rec.Code)
	}

	// An admin posting on a driver's behalf.
	svc = &fakeLocation{}
	rec = postJSON(t, locationRouter(svc, &ctxutil.RequestData{UID: "admin", Role: domain.RoleAdmin}), "/api/location/receive", body)
	if rec.Code != http.StatusOK || len(svc.received) != 1 {
		t.Fatalf("admin on behalf: want 200, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestLocationReceiveRequiresCoordinates(t *testing.T) {
	svc := &fakeLocation{}
	rec := postJSON(t, locationRouter(svc, &ctxutil.RequestData{UID: "d1", Role: domain.RoleDriver}), "/api/location/receive", `{"scopeId":"matriz","driverId":"d1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing coordinates: want 400 got %d", rec.Code)
	}
}
