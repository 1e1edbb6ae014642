package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unimatch/unimatch-backend/internal/model"
	"github.com/unimatch/unimatch-backend/internal/response"
	"github.com/unimatch/unimatch-backend/internal/service"
	"github.com/unimatch/unimatch-backend/internal/validator"
)

type PreferenceHandler struct {
	preferenceService *service.PreferenceService
}

func NewPreferenceHandler(preferenceService *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: preferenceService}
}

// Get godoc
// GET /api/v1/preferences/:user_id
func (h *PreferenceHandler) Get(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	pref, err := h.preferenceService.Get(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDataSourceUnavailable)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"preferences": pref})
}

// Upsert godoc
// PUT /api/v1/preferences/:user_id
func (h *PreferenceHandler) Upsert(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.UpsertPreferenceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	pref, err := h.preferenceService.Upsert(c.Request.Context(), userID, &req)
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDataSourceUnavailable)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"preferences": pref})
}
