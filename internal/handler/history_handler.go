package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tristudio/studio-scheduler-api/internal/models"
	"github.com/tristudio/studio-scheduler-api/internal/service"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
	"github.com/tristudio/studio-scheduler-api/pkg/response"
)

// HistoryHandler serves the attendance history surface.
type HistoryHandler struct {
	history *service.HistoryService
}

func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List godoc
// @Summary List imported class records
// @Tags History
// @Produce json
// @Param location query string false "Filter by location"
// @Param day query string false "Filter by weekday"
// @Param format query string false "Filter by class format"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /history [get]
func (h *HistoryHandler) List(c *gin.Context) {
	filter := models.HistoryFilter{
		Location: c.Query("location"),
		Day:      c.Query("day"),
		Format:   c.Query("format"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	records, total, err := h.history.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Import godoc
// @Summary Import a class history CSV
// @Tags History
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV upload"
// @Param replace query bool false "Clear existing history first"
// @Success 200 {object} response.Envelope
// @Router /history/import [post]
func (h *HistoryHandler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "missing CSV upload"))
		return
	}
	defer file.Close()

	replace, _ := strconv.ParseBool(c.Query("replace"))
	summary, err := h.history.ImportCSV(c.Request.Context(), file, replace)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
