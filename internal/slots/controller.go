package slots

import (
	"errors"
	"net/http"
	"time"

	"courtly/internal/catalog"
	"courtly/internal/shared/middleware"
	"courtly/internal/shared/utils/response"
	"courtly/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// MonthAvailability handles GET /api/v1/clubs/:club_id/availability?month=YYYY-MM
// Public endpoint.
func (c *Controller) MonthAvailability(ctx *gin.Context) {
	clubID, err := uuid.Parse(ctx.Param("club_id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid club ID", err.Error())
		return
	}
	year, month, ok := parseMonth(ctx.Query("month"))
	if !ok {
		response.Error(ctx, http.StatusBadRequest, "Invalid month, expected YYYY-MM", nil)
		return
	}

	resp, err := c.service.MonthAvailability(ctx.Request.Context(), clubID, year, month)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to load availability", err.Error())
		return
	}
	response.Success(ctx, http.StatusOK, "Availability retrieved successfully", resp)
}

// MonthView handles GET /api/v1/clubs/:club_id/slots?month=YYYY-MM
func (c *Controller) MonthView(ctx *gin.Context) {
	clubID, err := uuid.Parse(ctx.Param("club_id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid club ID", err.Error())
		return
	}
	year, month, ok := parseMonth(ctx.Query("month"))
	if !ok {
		response.Error(ctx, http.StatusBadRequest, "Invalid month, expected YYYY-MM", nil)
		return
	}

	resp, err := c.service.MonthView(ctx.Request.Context(), clubID, year, month)
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Failed to load slots", err.Error())
		return
	}
	response.Success(ctx, http.StatusOK, "Slots retrieved successfully", resp)
}

// Generate handles POST /api/v1/manage/slots/generate
func (c *Controller) Generate(ctx *gin.Context) {
	var req GenerateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	clubID, err := uuid.Parse(req.ClubID)
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid club ID", err.Error())
		return
	}
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid from date, expected YYYY-MM-DD", err.Error())
		return
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid to date, expected YYYY-MM-DD", err.Error())
		return
	}

	created, err := c.service.GenerateSlots(ctx.Request.Context(), clubID, from, to)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			response.Error(ctx, http.StatusNotFound, "Club not found", nil)
			return
		}
		response.Error(ctx, http.StatusUnprocessableEntity, "Failed to generate slots", err.Error())
		return
	}
	response.Success(ctx, http.StatusCreated, "Slots generated successfully", gin.H{"created": created})
}

// Transition handles PATCH /api/v1/manage/slots/:id/status
func (c *Controller) Transition(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	slotID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid slot ID", err.Error())
		return
	}

	var req TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	target, ok := Normalize(req.Status)
	if !ok {
		response.Error(ctx, http.StatusUnprocessableEntity, "Unknown slot status", req.Status)
		return
	}

	result, err := c.service.Transition(ctx.Request.Context(), actor, slotID, target)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrForbidden):
			response.Error(ctx, http.StatusForbidden, "Access denied", nil)
		case errors.Is(err, ErrNotFound):
			response.Error(ctx, http.StatusNotFound, "Slot not found", nil)
		case errors.Is(err, ErrInvalidTransition):
			response.Error(ctx, http.StatusConflict, "Invalid slot status transition", err.Error())
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to update slot status", err.Error())
		}
		return
	}
	response.Success(ctx, http.StatusOK, "Slot status updated successfully", result)
}

// BulkTransition handles PATCH /api/v1/manage/slots/status
func (c *Controller) BulkTransition(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req BulkTransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	items := make([]TransitionItem, 0, len(req.Items))
	errs := make([]TransitionError, 0)
	for _, item := range req.Items {
		slotID, err := uuid.Parse(item.SlotID)
		if err != nil {
			response.Error(ctx, http.StatusBadRequest, "Invalid slot ID", item.SlotID)
			return
		}
		target, ok := Normalize(item.Status)
		if !ok {
			errs = append(errs, TransitionError{SlotID: slotID, Detail: "unknown slot status: " + item.Status})
			continue
		}
		items = append(items, TransitionItem{SlotID: slotID, To: target})
	}

	updated, itemErrs := c.service.BulkTransition(ctx.Request.Context(), actor, items)
	errs = append(errs, itemErrs...)

	// Partial success is reported item by item, never all-or-nothing.
	response.Success(ctx, http.StatusOK, "Slot statuses processed", gin.H{
		"updated": updated,
		"errors":  errs,
	})
}

// ListByIDs handles POST /api/v1/slots/list
func (c *Controller) ListByIDs(ctx *gin.Context) {
	var req SlotListRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	ids := make([]uuid.UUID, 0, len(req.SlotIDs))
	for _, raw := range req.SlotIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.Error(ctx, http.StatusBadRequest, "Invalid slot ID", raw)
			return
		}
		ids = append(ids, id)
	}

	found, err := c.service.GetByIDs(ctx.Request.Context(), ids)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to load slots", err.Error())
		return
	}

	views := make([]SlotView, 0, len(found))
	for i := range found {
		views = append(views, newSlotView(&found[i]))
	}
	response.Success(ctx, http.StatusOK, "Slots retrieved successfully", views)
}

// MaintenanceToggle handles PATCH /api/v1/manage/slots/maintenance
func (c *Controller) MaintenanceToggle(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req MaintenanceToggleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	target := StatusAvailable
	if *req.Enable {
		target = StatusMaintenance
	}

	items := make([]TransitionItem, 0, len(req.SlotIDs))
	for _, raw := range req.SlotIDs {
		slotID, err := uuid.Parse(raw)
		if err != nil {
			response.Error(ctx, http.StatusBadRequest, "Invalid slot ID", raw)
			return
		}
		items = append(items, TransitionItem{SlotID: slotID, To: target})
	}

	updated, errs := c.service.BulkTransition(ctx.Request.Context(), actor, items)
	response.Success(ctx, http.StatusOK, "Maintenance state processed", gin.H{
		"updated": updated,
		"errors":  errs,
	})
}

func parseMonth(raw string) (int, time.Month, bool) {
	t, err := time.Parse("2006-01", raw)
	if err != nil {
		return 0, 0, false
	}
	return t.Year(), t.Month(), true
}
