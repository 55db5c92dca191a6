package service

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/storage"
)

func TestExportServiceCSV(t *testing.T) {
	dir := t.TempDir()
	service, stored := newExportServiceFixture(t, dir)

	file, err := service.Export(context.Background(), stored.ResultID, "csv")
	require.NoError(t, err)

	assert.Equal(t, "text/csv", file.ContentType)
	assert.Contains(t, file.Filename, stored.ResultID)
	assert.Contains(t, file.Filename, ".csv")

	text := string(file.Data)
	assert.Contains(t, text, "# Result abc12345 generated 2025-03-10T09:00:00Z by greedy")
	assert.Contains(t, text, "# Coverage 100.0% (3/3 hours)")
	assert.Contains(t, text, "# Quality EXCELLENT (penalty 3)")
	assert.Contains(t, text, "Time,Monday,Tuesday,Wednesday,Thursday,Friday")
	assert.Contains(t, text, "Mathematics [Dr. Rao, 101]")
	assert.Contains(t, text, "Physics (Lab) [Dr. Iyer, Lab-2]")
	assert.Contains(t, text, "17:00-18:00")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportServicePDF(t *testing.T) {
	service, stored := newExportServiceFixture(t, t.TempDir())

	file, err := service.Export(context.Background(), stored.ResultID, "pdf")
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", file.ContentType)
	assert.Contains(t, file.Filename, ".pdf")
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")), "pdf output should start with the pdf magic")
}

func TestExportServiceWithoutStorage(t *testing.T) {
	results := repository.NewMemoryResultRepository(time.Minute)
	stored := sampleStoredResult()
	require.NoError(t, results.Save(context.Background(), stored))
	service := NewExportService(results, nil, nil, zap.NewNop())

	file, err := service.Export(context.Background(), stored.ResultID, "csv")
	require.NoError(t, err)
	assert.NotEmpty(t, file.Data)
}

func TestExportServiceRejectsBadRequests(t *testing.T) {
	service, stored := newExportServiceFixture(t, t.TempDir())

	_, err := service.Export(context.Background(), "", "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = service.Export(context.Background(), stored.ResultID, "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = service.Export(context.Background(), "deadbeef", "csv")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

// --- Fixtures ---

func newExportServiceFixture(t *testing.T, dir string) (*ExportService, *dto.GenerateTimetableResponse) {
	t.Helper()
	results := repository.NewMemoryResultRepository(time.Minute)
	stored := sampleStoredResult()
	require.NoError(t, results.Save(context.Background(), stored))

	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	return NewExportService(results, store, nil, zap.NewNop()), stored
}

func sampleStoredResult() *dto.GenerateTimetableResponse {
	return &dto.GenerateTimetableResponse{
		ResultID:    "abc12345",
		Engine:      "greedy",
		GeneratedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
		Timetable: map[string]map[string][]dto.AssignmentResponse{
			"Monday": {
				"09:00-10:00": {{Course: "Mathematics", SessionType: "lecture", Day: "Monday", Slot: "09:00-10:00", Faculty: "Dr. Rao", Room: "101", DurationHours: 1}},
			},
			"Tuesday": {
				"10:00-11:00": {{Course: "Physics (Lab)", SessionType: "lab", Day: "Tuesday", Slot: "10:00-11:00", Faculty: "Dr. Iyer", Room: "Lab-2", DurationHours: 2}},
				"11:00-12:00": {{Course: "Physics (Lab)", SessionType: "lab", Day: "Tuesday", Slot: "11:00-12:00", Faculty: "Dr. Iyer", Room: "Lab-2", DurationHours: 2}},
			},
		},
		Outcomes: []dto.CourseOutcomeResponse{
			{Course: "Mathematics", SessionType: "lecture", WeeklyTarget: 1, ExpectedHours: 1, ScheduledHours: 1},
			{Course: "Physics (Lab)", SessionType: "lab", WeeklyTarget: 1, ExpectedHours: 2, ScheduledHours: 2},
		},
		Penalty:    dto.PenaltyResponse{Breakdown: map[string]int{}, TotalPenalty: 3, QualityRating: "EXCELLENT"},
		Statistics: dto.StatisticsResponse{TotalCourses: 2, FullySatisfied: 2, ExpectedHours: 3, ScheduledHours: 3, CoveragePercent: 100},
	}
}
