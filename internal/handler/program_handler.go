package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/unimatch/unimatch-backend/internal/response"
	"github.com/unimatch/unimatch-backend/internal/service"
)

type ProgramHandler struct {
	programService *service.ProgramService
}

func NewProgramHandler(programService *service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// ListPrograms godoc
// GET /api/v1/programs
func (h *ProgramHandler) ListPrograms(c *gin.Context) {
	programs, err := h.programService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDataSourceUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"programs": programs})
}

// ListDegreeTypes godoc
// GET /api/v1/degree-types
func (h *ProgramHandler) ListDegreeTypes(c *gin.Context) {
	types, err := h.programService.ListDegreeTypes(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDataSourceUnavailable)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"degree_types": types})
}
