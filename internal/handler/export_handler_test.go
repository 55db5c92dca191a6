package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

type timetableExporterMock struct {
	id     string
	format string
	file   *service.ExportFile
	err    error
}

func (m *timetableExporterMock) Export(_ context.Context, id, format string) (*service.ExportFile, error) {
	m.id = id
	m.format = format
	return m.file, m.err
}

func TestExportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableExporterMock{file: &service.ExportFile{
		Filename:    "timetable_abc12345_20250310_090000.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.3 fake"),
	}}
	handler := &ExportHandler{service: mockSvc}

	router := gin.New()
	router.GET("/api/v1/results/:id/export", handler.Download)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/results/abc12345/export?format=pdf", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc12345", mockSvc.id)
	assert.Equal(t, "pdf", mockSvc.format)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timetable_abc12345")
	assert.Equal(t, "%PDF-1.3 fake", w.Body.String())
}

func TestExportHandlerDefaultsToCSV(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableExporterMock{file: &service.ExportFile{
		Filename:    "timetable_abc12345_20250310_090000.csv",
		ContentType: "text/csv",
		Data:        []byte("Time,Monday\n"),
	}}
	handler := &ExportHandler{service: mockSvc}

	router := gin.New()
	router.GET("/api/v1/results/:id/export", handler.Download)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/results/abc12345/export", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockSvc.format)
}

func TestExportHandlerNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &timetableExporterMock{err: appErrors.Clone(appErrors.ErrNotFound, `result "zzz" not found or expired`)}
	handler := &ExportHandler{service: mockSvc}

	router := gin.New()
	router.GET("/api/v1/results/:id/export", handler.Download)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/results/zzz/export?format=csv", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}
