package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timetableScheduler interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error)
	ValidateCourses(ctx context.Context, req dto.ValidateCoursesRequest) (*dto.ValidateCoursesResponse, error)
	GetResult(ctx context.Context, id string) (*dto.GenerateTimetableResponse, error)
	Sample() *dto.SampleResponse
}

// TimetableHandler exposes the scheduling endpoints.
type TimetableHandler struct {
	service timetableScheduler
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.ScheduleService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Generate godoc
// @Summary Generate a weekly timetable
// @Description Runs the configured engine over the posted course list and stores the result for later retrieval by id.
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Courses to schedule"
// @Success 200 {object} response.Envelope
// @Router /schedule/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid scheduling payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Validate godoc
// @Summary Validate a course list without scheduling
// @Description Reports blocking issues and advisory warnings for the posted course list.
// @Tags Scheduling
// @Accept json
// @Produce json
// @Param payload body dto.ValidateCoursesRequest true "Courses to validate"
// @Success 200 {object} response.Envelope
// @Router /schedule/validate [post]
func (h *TimetableHandler) Validate(c *gin.Context) {
	var req dto.ValidateCoursesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid validation payload"))
		return
	}
	result, err := h.service.ValidateCourses(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Result godoc
// @Summary Fetch a stored scheduling result
// @Tags Scheduling
// @Produce json
// @Param id path string true "Result ID"
// @Success 200 {object} response.Envelope
// @Router /results/{id} [get]
func (h *TimetableHandler) Result(c *gin.Context) {
	result, err := h.service.GetResult(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Sample godoc
// @Summary Get a documented example payload
// @Tags Scheduling
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sample [get]
func (h *TimetableHandler) Sample(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Sample(), nil)
}
