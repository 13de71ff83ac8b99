package handlers

import (
	"net/http"

	appointmentRepo "frontline/database/repository/appointment"
	"frontline/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler exposes operator-facing appointment reads.
type AdminHandler struct {
	AppointmentRepo appointmentRepo.AppointmentRepository
}

func NewAdminHandler(appointments appointmentRepo.AppointmentRepository) *AdminHandler {
	return &AdminHandler{AppointmentRepo: appointments}
}

// ListAppointments returns all booked appointments ordered by time.
func (h *AdminHandler) ListAppointments(c *gin.Context) {
	logger := getLogger(c)

	appointments, err := h.AppointmentRepo.GetAll(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list appointments", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to list appointments", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}

// SessionAppointments returns the appointments booked from one session.
func (h *AdminHandler) SessionAppointments(c *gin.Context) {
	logger := getLogger(c)
	sessionID := c.Param("sessionID")

	appointments, err := h.AppointmentRepo.GetBySessionID(c.Request.Context(), sessionID)
	if err != nil {
		logger.Error("Failed to load session appointments",
			zap.String("sessionId", sessionID), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "failed to load appointments", "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"appointments": appointments})
}
