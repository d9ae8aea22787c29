package catalog

import (
	"net/http"

	"courtly/internal/shared/constants"
	"courtly/internal/shared/utils/response"
	"courtly/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	repo  Repository
	cache cache.Service
}

func NewController(repo Repository, cacheSvc cache.Service) *Controller {
	return &Controller{repo: repo, cache: cacheSvc}
}

// ListClubs handles GET /api/v1/clubs. Public, served cache-aside.
func (c *Controller) ListClubs(ctx *gin.Context) {
	var clubs []Club
	err := c.cache.GetOrSet(ctx.Request.Context(), constants.CACHE_KEY_CLUB_LIST, constants.TTL_CLUB_CATALOG, func() (interface{}, error) {
		found, err := c.repo.Clubs(ctx.Request.Context())
		if err != nil {
			return nil, err
		}
		return found, nil
	}, &clubs)
	if err != nil {
		clubs, err = c.repo.Clubs(ctx.Request.Context())
		if err != nil {
			response.Error(ctx, http.StatusInternalServerError, "Failed to fetch clubs", err.Error())
			return
		}
	}
	response.Success(ctx, http.StatusOK, "Clubs retrieved successfully", clubs)
}

// ListCourts handles GET /api/v1/clubs/:club_id/courts
func (c *Controller) ListCourts(ctx *gin.Context) {
	clubID, err := uuid.Parse(ctx.Param("club_id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid club ID", err.Error())
		return
	}

	courts, err := c.repo.CourtsByClub(ctx.Request.Context(), clubID)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to fetch courts", err.Error())
		return
	}
	response.Success(ctx, http.StatusOK, "Courts retrieved successfully", courts)
}

// ListHours handles GET /api/v1/clubs/:club_id/hours
func (c *Controller) ListHours(ctx *gin.Context) {
	clubID, err := uuid.Parse(ctx.Param("club_id"))
	if err != nil {
		response.Error(ctx, http.StatusBadRequest, "Invalid club ID", err.Error())
		return
	}

	hours, err := c.repo.HoursForClub(ctx.Request.Context(), clubID)
	if err != nil {
		response.Error(ctx, http.StatusInternalServerError, "Failed to fetch business hours", err.Error())
		return
	}
	response.Success(ctx, http.StatusOK, "Business hours retrieved successfully", hours)
}
