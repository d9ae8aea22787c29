package catalog

import (
	"github.com/gin-gonic/gin"
)

// SetupCatalogRoutes configures public club browsing routes
func SetupCatalogRoutes(rg *gin.RouterGroup, controller *Controller) {
	clubs := rg.Group("/clubs")
	{
		clubs.GET("", controller.ListClubs)                 // GET /api/v1/clubs
		clubs.GET("/:club_id/courts", controller.ListCourts)
		clubs.GET("/:club_id/hours", controller.ListHours)
	}
}
