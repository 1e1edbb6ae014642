package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unimatch/unimatch-backend/internal/response"
	"github.com/unimatch/unimatch-backend/internal/service"
)

type UserHandler struct {
	feedService *service.FeedService
}

func NewUserHandler(feedService *service.FeedService) *UserHandler {
	return &UserHandler{feedService: feedService}
}

// ListLikes godoc
// GET /api/v1/users/:user_id/likes
func (h *UserHandler) ListLikes(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	liked, err := h.feedService.LikedInstitutions(c.Request.Context(), userID)
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDataSourceUnavailable)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"institutions": liked})
}
