package routes

import (
	"net/http"
	"time"

	"frontline/handlers"
	"frontline/middleware"
	"frontline/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the handlers the router needs.
type HandlerBundle struct {
	Frontline *handlers.FrontlineHandler
	Facility  *handlers.FacilityHandler
	Admin     *handlers.AdminHandler
}

// RegisterFrontlineRoutes registers the conversational intake endpoints.
func RegisterFrontlineRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/frontline")
	{
		api.POST("/message", hb.Frontline.HandleMessage)
		api.GET("/history/:sessionID", hb.Facility.SessionHistory)
	}
}

// RegisterFacilityRoutes registers the facility probe endpoints.
func RegisterFacilityRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/facilities")
	{
		api.GET("/nearest", hb.Facility.NearestFacilities)
	}
}

// RegisterAdminRoutes registers operator endpoints behind the admin key.
func RegisterAdminRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.AdminAuthMiddleware())
		api.GET("/appointments", hb.Admin.ListAppointments)
		api.GET("/appointments/:sessionID", hb.Admin.SessionAppointments)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "services": utils.GetHealthStatus()})
	})
}

// RegisterRoutes sets up all endpoints using the provided handler bundle.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterFrontlineRoutes(r, hb)
	RegisterFacilityRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
