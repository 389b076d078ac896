package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tristudio/studio-scheduler-api/internal/dto"
	"github.com/tristudio/studio-scheduler-api/internal/service"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
	"github.com/tristudio/studio-scheduler-api/pkg/response"
)

// ScheduleHandler serves saved schedule CRUD and exports.
type ScheduleHandler struct {
	schedules *service.ScheduleService
	exports   *service.ExportService
}

func NewScheduleHandler(schedules *service.ScheduleService, exports *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, exports: exports}
}

// Save godoc
// @Summary Save an accepted schedule draft
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.SaveScheduleRequest true "Schedule snapshot"
// @Success 201 {object} response.Envelope
// @Router /schedules [post]
func (h *ScheduleHandler) Save(c *gin.Context) {
	var req dto.SaveScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	saved, err := h.schedules.Save(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, saved)
}

// List godoc
// @Summary List saved schedules
// @Tags Schedules
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedules [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	schedules, err := h.schedules.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedules, nil)
}

// Get godoc
// @Summary Load one saved schedule with validation
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	saved, classes, validation, err := h.schedules.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"schedule":   saved,
		"classes":    classes,
		"validation": validation,
	}, nil)
}

// UpdateClass godoc
// @Summary Edit one class of a saved schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param classId path string true "Class ID"
// @Param payload body dto.UpdateClassRequest true "Class fields"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/classes/{classId} [put]
func (h *ScheduleHandler) UpdateClass(c *gin.Context) {
	var req dto.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid class payload"))
		return
	}
	classes, validation, err := h.schedules.UpdateClass(c.Request.Context(), c.Param("id"), c.Param("classId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"classes": classes, "validation": validation}, nil)
}

// DeleteClass godoc
// @Summary Remove one class from a saved schedule
// @Tags Schedules
// @Produce json
// @Param id path string true "Schedule ID"
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /schedules/{id}/classes/{classId} [delete]
func (h *ScheduleHandler) DeleteClass(c *gin.Context) {
	classes, validation, err := h.schedules.DeleteClass(c.Request.Context(), c.Param("id"), c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"classes": classes, "validation": validation}, nil)
}

// Delete godoc
// @Summary Delete a saved schedule
// @Tags Schedules
// @Param id path string true "Schedule ID"
// @Success 204
// @Router /schedules/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	if err := h.schedules.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Queue a timetable export
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Schedule ID"
// @Param payload body dto.ExportRequest true "Export format"
// @Success 202 {object} response.Envelope
// @Router /schedules/{id}/exports [post]
func (h *ScheduleHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export payload"))
		return
	}
	job, err := h.exports.Enqueue(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// DownloadCSV godoc
// @Summary Download the timetable as CSV
// @Tags Schedules
// @Produce text/csv
// @Param id path string true "Schedule ID"
// @Success 200
// @Router /schedules/{id}/export.csv [get]
func (h *ScheduleHandler) DownloadCSV(c *gin.Context) {
	data, filename, err := h.exports.RenderCSV(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}
