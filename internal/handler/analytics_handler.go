package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unimatch/unimatch-backend/internal/response"
	"github.com/unimatch/unimatch-backend/internal/service"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
	defaultLimit     int
}

func NewAnalyticsHandler(analyticsService *service.AnalyticsService, defaultLimit int) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService, defaultLimit: defaultLimit}
}

// serveReport parses the :limit path param, runs the report, and writes the
// envelope. All nine endpoints share this shape.
func serveReport[T any](c *gin.Context, h *AnalyticsHandler, run func(ctx context.Context, limit int) ([]T, error)) {
	limit := h.defaultLimit
	if raw := c.Param("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidArgument)
			return
		}
		limit = n
	}

	rows, err := run(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidArgument)
			return
		}
		response.Fail(c, http.StatusServiceUnavailable, response.ErrDataSourceUnavailable)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rows": rows})
}

// TopAdmissionRates godoc
// GET /api/v1/analytics/top-admission-rates/:limit
func (h *AnalyticsHandler) TopAdmissionRates(c *gin.Context) {
	serveReport(c, h, h.analyticsService.HighestAdmissionRatePrograms)
}

// TopROIPerCost godoc
// GET /api/v1/analytics/top-roi-per-cost/:limit
func (h *AnalyticsHandler) TopROIPerCost(c *gin.Context) {
	serveReport(c, h, h.analyticsService.HighestROIPerCost)
}

// StateProgramROI godoc
// GET /api/v1/analytics/state-program-roi/:limit
func (h *AnalyticsHandler) StateProgramROI(c *gin.Context) {
	serveReport(c, h, h.analyticsService.AvgROIByStateProgram)
}

// TopEarningsGrowth godoc
// GET /api/v1/analytics/top-earnings-growth/:limit
func (h *AnalyticsHandler) TopEarningsGrowth(c *gin.Context) {
	serveReport(c, h, h.analyticsService.HighestEarningsGrowth)
}

// TopStartingSalaries godoc
// GET /api/v1/analytics/top-starting-salaries/:limit
func (h *AnalyticsHandler) TopStartingSalaries(c *gin.Context) {
	serveReport(c, h, h.analyticsService.HighestStartingSalaries)
}

// LowestROI godoc
// GET /api/v1/analytics/lowest-roi/:limit
func (h *AnalyticsHandler) LowestROI(c *gin.Context) {
	serveReport(c, h, h.analyticsService.LowestROIPrograms)
}

// LowestSalaries godoc
// GET /api/v1/analytics/lowest-salaries/:limit
func (h *AnalyticsHandler) LowestSalaries(c *gin.Context) {
	serveReport(c, h, h.analyticsService.LowestSalaryPrograms)
}

// TopPerState godoc
// GET /api/v1/analytics/top-per-state/:limit
func (h *AnalyticsHandler) TopPerState(c *gin.Context) {
	serveReport(c, h, h.analyticsService.TopInstitutionPerState)
}

// TopPerProgram godoc
// GET /api/v1/analytics/top-per-program/:limit
func (h *AnalyticsHandler) TopPerProgram(c *gin.Context) {
	serveReport(c, h, h.analyticsService.TopInstitutionPerProgram)
}
