package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type runArchiveReader interface {
	Recent(ctx context.Context, limit int) ([]models.ScheduleArchive, error)
	Run(ctx context.Context, id string) (*service.ArchivedRun, error)
}

// ArchiveHandler serves persisted generation runs. The service answers
// with 503 when no database is configured.
type ArchiveHandler struct {
	service runArchiveReader
}

// NewArchiveHandler constructs the handler.
func NewArchiveHandler(svc *service.ArchiveService) *ArchiveHandler {
	return &ArchiveHandler{service: svc}
}

// List godoc
// @Summary List recent archived runs
// @Tags Archives
// @Produce json
// @Param limit query int false "Maximum rows, default 20"
// @Success 200 {object} response.Envelope
// @Router /archives [get]
func (h *ArchiveHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	archives, err := h.service.Recent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, archives, nil)
}

// Get godoc
// @Summary Fetch one archived run with its slots
// @Tags Archives
// @Produce json
// @Param id path string true "Archive id"
// @Success 200 {object} response.Envelope
// @Router /archives/{id} [get]
func (h *ArchiveHandler) Get(c *gin.Context) {
	run, err := h.service.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run, nil)
}
