package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raizapp/fleetops-backend/internal/pkg/ctxutil"
	pkgerrors "github.com/raizapp/fleetops-backend/internal/pkg/errors"
	"github.com/raizapp/fleetops-backend/internal/services"
)

type LocationHandler struct {
	locationService services.LocationService
}

func NewLocationHandler(locationService services.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

type locationRequestBody struct {
	ScopeID  string `json:"scopeId" binding:"required"`
	DriverID string `json:"driverId" binding:"required"`
}

// Request asks a driver's device for its location. Only managing roles may
// call it.
func (lh *LocationHandler) Request(c *gin.Context) {
	var req locationRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || !services.CanManageLocation(rd.Role) {
		RespondError(c, http.StatusForbidden, "forbidden", errors.New("only managing roles may request a driver location"))
		return
	}
	if err := lh.locationService.Request(c.Request.Context(), req.ScopeID, req.DriverID, rd.UID); err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		RespondError(c, http.StatusBadGateway, "request_failed", err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}

type locationReceiveBody struct {
	ScopeID  string   `json:"scopeId" binding:"required"`
	DriverID string   `json:"driverId" binding:"required"`
	Lat      *float64 `json:"lat" binding:"required"`
	Lng      *float64 `json:"lng" binding:"required"`
}

// Receive accepts coordinates posted back by a driver's device. Drivers may
// only submit their own position; managing roles may submit on a driver's
// behalf.
func (lh *LocationHandler) Receive(c *gin.Context) {
	var req locationReceiveBody
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing caller identity"))
		return
	}
	if rd.UID != req.DriverID && !services.CanManageLocation(rd.Role) {
		RespondError(c, http.StatusForbidden, "forbidden", errors.New("drivers may only submit their own location"))
		return
	}
	if err := lh.locationService.Receive(c.Request.Context(), req.ScopeID, req.DriverID, *req.Lat, *req.Lng); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrNotFound):
			RespondError(c, http.StatusNotFound, "not_found", err)
		case errors.Is(err, pkgerrors.ErrNotConfigured):
			RespondError(c, http.StatusInternalServerError, "not_configured", err)
		default:
			RespondError(c, http.StatusBadGateway, "eta_failed", err)
		}
		return
	}
	RespondOK(c, gin.H{"ok": true})
}
