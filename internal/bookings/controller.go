package bookings

import (
	"errors"
	"net/http"
	"time"

	"courtly/internal/catalog"
	"courtly/internal/shared/middleware"
	"courtly/internal/shared/utils/response"
	"courtly/internal/users"
	"courtly/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBooking handles POST /api/v1/bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	resp, err := c.service.CreateBooking(ctx.Request.Context(), actor, &req)
	if err != nil {
		c.respondBookingError(ctx, err, "Failed to create booking")
		return
	}
	response.Success(ctx, http.StatusCreated, "Booking created successfully", resp)
}

// CreateWalkIn handles POST /api/v1/manage/bookings/walkin
func (c *Controller) CreateWalkIn(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req WalkInRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	resp, err := c.service.CreateWalkIn(ctx.Request.Context(), actor, &req)
	if err != nil {
		c.respondBookingError(ctx, err, "Failed to create walk-in booking")
		return
	}
	response.Success(ctx, http.StatusCreated, "Walk-in booking created successfully", resp)
}

// GetBooking handles GET /api/v1/bookings/:booking_no
func (c *Controller) GetBooking(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	resp, err := c.service.GetByBookingNo(ctx.Request.Context(), actor, ctx.Param("booking_no"))
	if err != nil {
		c.respondBookingError(ctx, err, "Failed to fetch booking")
		return
	}
	response.Success(ctx, http.StatusOK, "Booking retrieved successfully", resp)
}

// MyBookings handles GET /api/v1/bookings
func (c *Controller) MyBookings(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	resp, err := c.service.MyBookings(ctx.Request.Context(), actor)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to fetch bookings", err.Error())
		return
	}
	response.Success(ctx, http.StatusOK, "Bookings retrieved successfully", resp)
}

// ListForClubDate handles GET /api/v1/manage/bookings?club_id=...&date=YYYY-MM-DD
func (c *Controller) ListForClubDate(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	clubID, err := uuid.Parse(ctx.Query("club_id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid club ID", err.Error())
		return
	}
	date, err := time.Parse("2006-01-02", ctx.Query("date"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD", err.Error())
		return
	}

	resp, err := c.service.ListForClubDate(ctx.Request.Context(), actor, clubID, date)
	if err != nil {
		c.respondBookingError(ctx, err, "Failed to fetch bookings")
		return
	}
	response.Success(ctx, http.StatusOK, "Bookings retrieved successfully", resp)
}

// ListUpcoming handles GET /api/v1/manage/bookings/upcoming?club_id=...
func (c *Controller) ListUpcoming(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	clubID, err := uuid.Parse(ctx.Query("club_id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid club ID", err.Error())
		return
	}

	resp, err := c.service.ListUpcoming(ctx.Request.Context(), actor, clubID)
	if err != nil {
		c.respondBookingError(ctx, err, "Failed to fetch upcoming bookings")
		return
	}
	response.Success(ctx, http.StatusOK, "Upcoming bookings retrieved successfully", resp)
}

// CheckIn handles POST /api/v1/manage/bookings/:booking_no/checkin
func (c *Controller) CheckIn(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	resp, err := c.service.CheckIn(ctx.Request.Context(), actor, ctx.Param("booking_no"))
	if err != nil {
		c.respondBookingError(ctx, err, "Failed to check in booking")
		return
	}
	response.Success(ctx, http.StatusOK, "Booking checked in successfully", resp)
}

// Cancel handles POST /api/v1/bookings/:booking_no/cancel
func (c *Controller) Cancel(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	resp, err := c.service.Cancel(ctx.Request.Context(), actor, ctx.Param("booking_no"))
	if err != nil {
		c.respondBookingError(ctx, err, "Failed to cancel booking")
		return
	}
	response.Success(ctx, http.StatusOK, "Booking cancelled successfully", resp)
}

func (c *Controller) respondBookingError(ctx *gin.Context, err error, fallback string) {
	var unavailable *SlotUnavailableError
	switch {
	case errors.As(err, &unavailable):
		response.Error(ctx, http.StatusConflict, "Some slots are unavailable", unavailable.Error())
	case errors.Is(err, wallet.ErrInsufficientBalance):
		response.Error(ctx, http.StatusPaymentRequired, "Insufficient coin balance", nil)
	case errors.Is(err, ErrNotFound):
		response.Error(ctx, http.StatusNotFound, "Booking not found", nil)
	case errors.Is(err, catalog.ErrNotFound):
		response.Error(ctx, http.StatusNotFound, "Club not found", nil)
	case errors.Is(err, users.ErrForbidden):
		response.Error(ctx, http.StatusForbidden, "Access denied", nil)
	case errors.Is(err, ErrAlreadyCancelled):
		response.Error(ctx, http.StatusConflict, "Booking already cancelled", nil)
	case errors.Is(err, ErrCancellationWindowClosed):
		response.Error(ctx, http.StatusUnprocessableEntity, "Cancellation window has closed", nil)
	case errors.Is(err, ErrInvalidState):
		response.Error(ctx, http.StatusConflict, "Booking state does not allow this operation", err.Error())
	case errors.Is(err, ErrNoSlots):
		response.Error(ctx, http.StatusBadRequest, "At least one slot is required", nil)
	default:
		response.Error(ctx, http.StatusBadRequest, fallback, err.Error())
	}
}
