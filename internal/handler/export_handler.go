package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timetableExporter interface {
	Export(ctx context.Context, id, format string) (*service.ExportFile, error)
}

// ExportHandler serves rendered downloads of stored results.
type ExportHandler struct {
	service timetableExporter
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Download godoc
// @Summary Download a stored result as CSV or PDF
// @Tags Scheduling
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Result ID"
// @Param format query string false "Export format: csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /results/{id}/export [get]
func (h *ExportHandler) Download(c *gin.Context) {
	format := c.DefaultQuery("format", service.FormatCSV)
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
