package handlers

import (
	"net/http"
	"strconv"

	chatRepo "frontline/database/repository/chat"
	"frontline/services/matching"
	"frontline/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FacilityHandler exposes the nearest-facility probe and chat history reads.
type FacilityHandler struct {
	Matching matching.MatchingService
	ChatRepo chatRepo.ChatRepository
}

func NewFacilityHandler(matchingSvc matching.MatchingService, chats chatRepo.ChatRepository) *FacilityHandler {
	return &FacilityHandler{Matching: matchingSvc, ChatRepo: chats}
}

// NearestFacilities returns the facilities closest to the supplied
// coordinates for a department query. Missing coordinates or an empty
// department yield an empty list.
func (h *FacilityHandler) NearestFacilities(c *gin.Context) {
	logger := getLogger(c)

	department := c.Query("department")

	var point *matching.Point
	latStr, lngStr := c.Query("latitude"), c.Query("longitude")
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid coordinates", "latitude and longitude must be numbers")
			return
		}
		point = &matching.Point{X: lng, Y: lat}
	}

	limit := matching.DefaultLimit
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	facilities, err := h.Matching.FindNearest(c.Request.Context(), point, department, limit)
	if err != nil {
		logger.Error("Facility matching failed", zap.String("department", department), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to find facilities", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"closest_facilities": facilities})
}

// SessionHistory returns the most recent chat turns for a session in
// chronological order.
func (h *FacilityHandler) SessionHistory(c *gin.Context) {
	logger := getLogger(c)
	sessionID := c.Param("sessionID")

	limit := 20
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	turns, err := h.ChatRepo.GetRecent(c.Request.Context(), sessionID, limit)
	if err != nil {
		logger.Error("Failed to load chat history", zap.String("sessionId", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to load history", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"turns": turns})
}
