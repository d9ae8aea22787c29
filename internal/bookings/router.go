package bookings

import (
	"courtly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth())
	{
		bookings.POST("", controller.CreateBooking)   // POST /api/v1/bookings
		bookings.GET("", controller.MyBookings)       // GET /api/v1/bookings
		bookings.GET("/:booking_no", controller.GetBooking)
		bookings.POST("/:booking_no/cancel", controller.Cancel)
	}

	manage := rg.Group("/manage/bookings")
	manage.Use(middleware.JWTAuth(), middleware.RequireManager())
	{
		manage.GET("", controller.ListForClubDate)       // GET /api/v1/manage/bookings?club_id=&date=
		manage.GET("/upcoming", controller.ListUpcoming) // GET /api/v1/manage/bookings/upcoming?club_id=
		manage.POST("/walkin", controller.CreateWalkIn)
		manage.POST("/:booking_no/checkin", controller.CheckIn)
	}
}
