package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/raizapp/fleetops-backend/internal/assistant"
	pkgerrors "github.com/raizapp/fleetops-backend/internal/pkg/errors"
)

type AssistantHandler struct {
	assistantService assistant.Service
}

func NewAssistantHandler(assistantService assistant.Service) *AssistantHandler {
	return &AssistantHandler{assistantService: assistantService}
}

type chatRequest struct {
	ScopeID     string           `json:"scopeId" binding:"required"`
	Text        string           `json:"text"`
	ImageBase64 string           `json:"imageBase64"`
	History     []assistant.Turn `json:"history"`
}

type chatAction struct {
	Type       string `json:"type"`
	DriverName string `json:"driverName,omitempty"`
	WaveIndex  *int   `json:"waveIndex,omitempty"`
	Slot       string `json:"slot,omitempty"`
	Route      string `json:"route,omitempty"`
	UnitCount  *int   `json:"unitCount,omitempty"`
	Body       string `json:"body,omitempty"`
}

func (ah *AssistantHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := ah.assistantService.Chat(c.Request.Context(), assistant.ChatInput{
		Scope:       req.ScopeID,
		Text:        req.Text,
		ImageBase64: req.ImageBase64,
		History:     req.History,
	})
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrInvalidArgument):
			RespondError(c, http.StatusBadRequest, "bad_request", err)
		case errors.Is(err, pkgerrors.ErrPayloadTooLarge):
			RespondError(c, http.StatusRequestEntityTooLarge, "payload_too_large", err)
		case errors.Is(err, pkgerrors.ErrNotConfigured):
			RespondError(c, http.StatusInternalServerError, "not_configured", err)
		case errors.Is(err, pkgerrors.ErrAssistantUnavailable):
			RespondError(c, http.StatusServiceUnavailable, "assistant_unavailable", err)
		default:
			RespondError(c, http.StatusInternalServerError, "internal", err)
		}
		return
	}

	actions := make([]chatAction, 0, len(res.Commands))
	for _, cmd := range res.Commands {
		actions = append(actions, chatAction{
			Type:       string(cmd.Kind),
			DriverName: cmd.DriverName,
			WaveIndex:  cmd.WaveIndex,
			Slot:       cmd.Slot,
			Route:      cmd.Route,
			UnitCount:  cmd.UnitCount,
			Body:       cmd.Body,
		})
	}
	RespondOK(c, gin.H{"ok": true, "text": res.Text, "actions": actions})
}
