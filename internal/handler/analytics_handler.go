package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tristudio/studio-scheduler-api/internal/service"
	"github.com/tristudio/studio-scheduler-api/pkg/response"
)

// AnalyticsHandler serves derived reporting endpoints.
type AnalyticsHandler struct {
	performance *service.PerformanceService
	history     *service.HistoryService
	schedules   *service.ScheduleService
	metrics     *service.MetricsService
}

func NewAnalyticsHandler(performance *service.PerformanceService, history *service.HistoryService, schedules *service.ScheduleService, metrics *service.MetricsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		performance: performance,
		history:     history,
		schedules:   schedules,
		metrics:     metrics,
	}
}

// Locations godoc
// @Summary Aggregate historic performance per location
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/locations [get]
func (h *AnalyticsHandler) Locations(c *gin.Context) {
	records, err := h.history.ListAllRecords(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.performance.LocationSummaries(records), nil)
}

// Utilization godoc
// @Summary Teacher workload for a saved schedule
// @Tags Analytics
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /analytics/schedules/{id}/utilization [get]
func (h *AnalyticsHandler) Utilization(c *gin.Context) {
	_, classes, _, err := h.schedules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.performance.TeacherUtilization(classes), nil)
}

// System godoc
// @Summary Runtime counters snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
