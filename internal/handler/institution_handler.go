package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unimatch/unimatch-backend/internal/response"
	"github.com/unimatch/unimatch-backend/internal/service"
)

type InstitutionHandler struct {
	institutionService    *service.InstitutionService
	recommendationService *service.RecommendationService
}

func NewInstitutionHandler(
	institutionService *service.InstitutionService,
	recommendationService *service.RecommendationService,
) *InstitutionHandler {
	return &InstitutionHandler{
		institutionService:    institutionService,
		recommendationService: recommendationService,
	}
}

// List godoc
// GET /api/v1/institutions?mode=&user_id=&offset=&limit=
func (h *InstitutionHandler) List(c *gin.Context) {
	mode := queryInt(c, "mode", service.ModeAll)
	userID := int64(queryInt(c, "user_id", 0))
	offset := queryInt(c, "offset", 0)
	limit := queryInt(c, "limit", 10)

	candidates, err := h.recommendationService.Recommend(c.Request.Context(), mode, userID, offset, limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidArgument)
			return
		}
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDataSourceUnavailable)
		return
	}

	total, err := h.recommendationService.CountCandidates(c.Request.Context(), mode, userID)
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDataSourceUnavailable)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, gin.H{"institutions": candidates}, &response.Pagination{
		Offset:     offset,
		Limit:      limit,
		TotalItems: total,
	})
}

// Get godoc
// GET /api/v1/institutions/:id?user_id=
func (h *InstitutionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	viewerID := int64(queryInt(c, "user_id", 0))

	profile, err := h.institutionService.GetProfile(c.Request.Context(), id, viewerID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDataSourceUnavailable)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"institution": profile})
}

// queryInt parses an optional integer query param, falling back on absence or
// garbage.
func queryInt(c *gin.Context, key string, fallback int) int {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
