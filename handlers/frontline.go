package handlers

import (
	"errors"
	"net/http"

	"frontline/models"
	"frontline/services/conversation"
	ai "frontline/services/intelligence"
	"frontline/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FrontlineHandler exposes the conversational intake endpoint.
type FrontlineHandler struct {
	Conversation *conversation.Service
}

// NewFrontlineHandler returns a handler wired to the dialogue service.
func NewFrontlineHandler(svc *conversation.Service) *FrontlineHandler {
	return &FrontlineHandler{Conversation: svc}
}

// HandleMessage processes one citizen message and returns the agent reply.
func (h *FrontlineHandler) HandleMessage(c *gin.Context) {
	logger := getLogger(c)

	var req models.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Message == "" {
		utils.JSONError(c, http.StatusBadRequest, "message is required", "")
		return
	}
	if req.SessionID == "" {
		utils.JSONError(c, http.StatusBadRequest, "session_id is required", "")
		return
	}

	reply, err := h.Conversation.ProcessMessage(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ai.ErrUpstream) {
			logger.Error("Upstream model call failed",
				zap.String("sessionId", req.SessionID), zap.Error(err))
			utils.JSONError(c, http.StatusBadGateway, "assistant is temporarily unavailable", "")
			return
		}
		logger.Error("Failed to process message",
			zap.String("sessionId", req.SessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to process message", "")
		return
	}

	c.JSON(http.StatusOK, models.IntakeResponse{AgentResponse: reply})
}
