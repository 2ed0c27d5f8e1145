package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "github.com/raizapp/fleetops-backend/internal/pkg/errors"
	"github.com/raizapp/fleetops-backend/internal/services"
)

type NotifyHandler struct {
	notifyService services.NotifyService
}

func NewNotifyHandler(notifyService services.NotifyService) *NotifyHandler {
	return &NotifyHandler{notifyService: notifyService}
}

type notifyDriverRequest struct {
	ScopeID  string            `json:"scopeId" binding:"required"`
	DriverID string            `json:"driverId" binding:"required"`
	Title    string            `json:"title" binding:"required"`
	Body     string            `json:"body" binding:"required"`
	Data     map[string]string `json:"data"`
}

func (nh *NotifyHandler) NotifyDriver(c *gin.Context) {
	var req notifyDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	err := nh.notifyService.NotifyDriver(c.Request.Context(), req.ScopeID, req.DriverID, req.Title, req.Body, req.Data)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		RespondError(c, http.StatusBadGateway, "delivery_failed", err)
		return
	}
	RespondOK(c, gin.H{"ok": true})
}

type notifyScopeRequest struct {
	ScopeID string            `json:"scopeId" binding:"required"`
	Title   string            `json:"title" binding:"required"`
	Body    string            `json:"body" binding:"required"`
	Data    map[string]string `json:"data"`
}

func (nh *NotifyHandler) NotifyScope(c *gin.Context) {
	var req notifyScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	sent, err := nh.notifyService.NotifyScope(c.Request.Context(), req.ScopeID, req.Title, req.Body, req.Data)
	if err != nil {
		RespondError(c, http.StatusBadGateway, "delivery_failed", err)
		return
	}
	RespondOK(c, gin.H{"ok": true, "sent": sent})
}

func (nh *NotifyHandler) DriverToken(c *gin.Context) {
	scopeID := c.Query("scopeId")
	driverID := c.Query("driverId")
	if scopeID == "" || driverID == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("scopeId and driverId are required"))
		return
	}
	has, err := nh.notifyService.HasToken(c.Request.Context(), scopeID, driverID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			RespondError(c, http.StatusNotFound, "not_found", err)
			return
		}
		RespondError(c, http.StatusInternalServerError, "internal", err)
		return
	}
	RespondOK(c, gin.H{"ok": true, "hasToken": has})
}
