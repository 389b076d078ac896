package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tristudio/studio-scheduler-api/internal/dto"
	"github.com/tristudio/studio-scheduler-api/internal/service"
	appErrors "github.com/tristudio/studio-scheduler-api/pkg/errors"
	"github.com/tristudio/studio-scheduler-api/pkg/response"
)

// OptimizerHandler wires the schedule constructor to HTTP routes.
type OptimizerHandler struct {
	optimizer   *service.OptimizerService
	validator   *service.ValidatorService
	performance *service.PerformanceService
	history     *service.HistoryService
}

func NewOptimizerHandler(optimizer *service.OptimizerService, validatorSvc *service.ValidatorService, performance *service.PerformanceService, history *service.HistoryService) *OptimizerHandler {
	return &OptimizerHandler{
		optimizer:   optimizer,
		validator:   validatorSvc,
		performance: performance,
		history:     history,
	}
}

// Run godoc
// @Summary Build a weekly schedule draft
// @Tags Optimizer
// @Accept json
// @Produce json
// @Param payload body dto.OptimizeRequest true "Optimization options"
// @Success 200 {object} response.Envelope
// @Router /optimizer/run [post]
func (h *OptimizerHandler) Run(c *gin.Context) {
	var req dto.OptimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid optimize payload"))
		return
	}
	result, err := h.optimizer.Optimize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Validate godoc
// @Summary Validate a schedule draft
// @Tags Optimizer
// @Accept json
// @Produce json
// @Param payload body dto.ValidateRequest true "Schedule to validate"
// @Success 200 {object} response.Envelope
// @Router /optimizer/validate [post]
func (h *OptimizerHandler) Validate(c *gin.Context) {
	var req dto.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid validate payload"))
		return
	}
	response.JSON(c, http.StatusOK, h.validator.Validate(req.Schedule), nil)
}

// TopClasses godoc
// @Summary List historic top performers
// @Tags Optimizer
// @Produce json
// @Param location query string false "Filter by location"
// @Param minAverage query number false "Minimum average attendance"
// @Param byTeacher query bool false "Disaggregate per teacher"
// @Param limit query int false "Result cap"
// @Success 200 {object} response.Envelope
// @Router /optimizer/top-classes [get]
func (h *OptimizerHandler) TopClasses(c *gin.Context) {
	query := dto.TopClassesQuery{Location: c.Query("location")}
	if v, err := strconv.ParseFloat(c.Query("minAverage"), 64); err == nil {
		query.MinAverage = v
	}
	if v, err := strconv.ParseBool(c.Query("byTeacher")); err == nil {
		query.ByTeacher = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		query.Limit = v
	}

	records, err := h.history.ListAllRecords(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, h.performance.TopClasses(c.Request.Context(), records, query), nil)
}
