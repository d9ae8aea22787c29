package wallet

import (
	"errors"
	"net/http"
	"strconv"

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

// GetBalance handles GET /api/v1/wallet/balance
func (c *Controller) GetBalance(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	balance, err := c.service.GetBalance(ctx.Request.Context(), actor.UserID)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to fetch balance", err.Error())
		return
	}
	response.Success(ctx, http.StatusOK, "Balance retrieved successfully", BalanceResponse{Balance: balance})
}

// GetLedger handles GET /api/v1/wallet/ledger?limit=50
func (c *Controller) GetLedger(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	limit := 50
	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	entries, err := c.service.GetLedger(ctx.Request.Context(), actor.UserID, limit)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to fetch ledger", err.Error())
		return
	}
	response.Success(ctx, http.StatusOK, "Ledger retrieved successfully", entries)
}

// RequestTopup handles POST /api/v1/wallet/topups
func (c *Controller) RequestTopup(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	var req TopupCreateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	created, err := c.service.RequestTopup(ctx.Request.Context(), actor, &req)
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrInvalidSlip) {
			response.Error(ctx, http.StatusUnprocessableEntity, "Invalid topup request", err.Error())
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to create topup request", err.Error())
		return
	}
	response.Success(ctx, http.StatusCreated, "Topup requested successfully", created)
}

// MyTopups handles GET /api/v1/wallet/topups
func (c *Controller) MyTopups(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	reqs, err := c.service.MyTopups(ctx.Request.Context(), actor)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to fetch topup requests", err.Error())
		return
	}
	response.Success(ctx, http.StatusOK, "Topup requests retrieved successfully", reqs)
}

// ManagerLedger handles GET /api/v1/manage/wallet/ledger?user_id=&limit=100
func (c *Controller) ManagerLedger(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	userID := uuid.Nil
	if raw := ctx.Query("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			response.Error(ctx, http.StatusBadRequest, "Invalid user ID", err.Error())
			return
		}
		userID = parsed
	}

	limit := 100
	if raw := ctx.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	entries, err := c.service.LedgerForUser(ctx.Request.Context(), actor, userID, limit)
	if err != nil {
		if errors.Is(err, users.ErrForbidden) {
			response.Error(ctx, http.StatusForbidden, "Access denied", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to fetch ledger", err.Error())
		return
	}
	response.Success(ctx, http.StatusOK, "Ledger retrieved successfully", entries)
}

// ListTopups handles GET /api/v1/manage/topups?status=pending
func (c *Controller) ListTopups(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	reqs, err := c.service.ListTopups(ctx.Request.Context(), actor, TopupStatus(ctx.Query("status")))
	if err != nil {
		if errors.Is(err, users.ErrForbidden) {
			response.Error(ctx, http.StatusForbidden, "Access denied", nil)
			return
		}
		response.Error(ctx, http.StatusInternalServerError, "Failed to fetch topup requests", err.Error())
		return
	}
	response.Success(ctx, http.StatusOK, "Topup requests retrieved successfully", reqs)
}

// ReviewTopup handles POST /api/v1/manage/topups/:id/review
func (c *Controller) ReviewTopup(ctx *gin.Context) {
	actor, ok := middleware.CurrentActor(ctx)
	if !ok {
		response.Error(ctx, http.StatusUnauthorized, "User not authenticated", nil)
		return
	}

	topupID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid topup ID", err.Error())
		return
	}

	var req TopupReviewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	reviewed, err := c.service.ReviewTopup(ctx.Request.Context(), actor, topupID, req.Approve)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrForbidden):
			response.Error(ctx, http.StatusForbidden, "Access denied", nil)
		case errors.Is(err, ErrTopupNotFound):
			response.Error(ctx, http.StatusNotFound, "Topup request not found", nil)
		case errors.Is(err, ErrTopupAlreadyClosed):
			response.Error(ctx, http.StatusConflict, "Topup request already reviewed", nil)
		default:
			response.Error(ctx, http.StatusInternalServerError, "Failed to review topup request", err.Error())
		}
		return
	}
	response.Success(ctx, http.StatusOK, "Topup reviewed successfully", reviewed)
}
