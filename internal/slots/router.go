package slots

import (
	"courtly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSlotRoutes configures slot browsing and management routes
func SetupSlotRoutes(rg *gin.RouterGroup, controller *Controller) {
	clubs := rg.Group("/clubs")
	{
		// Public calendar; no auth so prospective customers can browse.
		clubs.GET("/:club_id/availability", controller.MonthAvailability)

		authed := clubs.Group("")
		authed.Use(middleware.JWTAuth())
		{
			authed.GET("/:club_id/slots", controller.MonthView)
		}
	}

	slotsGroup := rg.Group("/slots")
	slotsGroup.Use(middleware.JWTAuth())
	{
		slotsGroup.POST("/list", controller.ListByIDs) // POST /api/v1/slots/list
	}

	manage := rg.Group("/manage/slots")
	manage.Use(middleware.JWTAuth(), middleware.RequireManager())
	{
		manage.POST("/generate", controller.Generate)
		manage.PATCH("/status", controller.BulkTransition)          // PATCH /api/v1/manage/slots/status
		manage.PATCH("/maintenance", controller.MaintenanceToggle)  // PATCH /api/v1/manage/slots/maintenance
		manage.PATCH("/:id/status", controller.Transition)          // PATCH /api/v1/manage/slots/:id/status
	}
}
