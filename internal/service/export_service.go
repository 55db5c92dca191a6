package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/engine"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/export"
)

type storedResultReader interface {
	Get(ctx context.Context, id string) (*dto.GenerateTimetableResponse, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders stored runs into downloadable documents. Downloads
// stream from memory; the storage copy exists for operators and is never
// on the response path.
type ExportService struct {
	results storedResultReader
	storage fileStorage
	csv     datasetRenderer
	pdf     datasetRenderer
	metrics *MetricsService
	logger  *zap.Logger
}

// NewExportService wires export dependencies. Storage may be nil to skip
// the on-disk copy; metrics may be nil in tests.
func NewExportService(results storedResultReader, storage fileStorage, metrics *MetricsService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		results: results,
		storage: storage,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		metrics: metrics,
		logger:  logger,
	}
}

// Export renders the stored run as a weekly grid in the requested format.
func (s *ExportService) Export(ctx context.Context, id, format string) (*ExportFile, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "result id is required")
	}
	format = strings.ToLower(strings.TrimSpace(format))

	var renderer datasetRenderer
	var contentType string
	switch format {
	case FormatCSV:
		renderer, contentType = s.csv, "text/csv"
	case FormatPDF:
		renderer, contentType = s.pdf, "application/pdf"
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	result, err := s.results.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrResultNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("result %q not found or expired", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "result lookup failed")
	}

	payload, err := renderer.Render(timetableDataset(result))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("render %s export", format))
	}

	filename := fmt.Sprintf("timetable_%s_%s.%s", id, time.Now().UTC().Format("20060102_150405"), format)
	if s.storage != nil {
		if _, err := s.storage.Save(filename, payload); err != nil {
			s.logger.Warn("export copy failed", zap.String("filename", filename), zap.Error(err))
		}
	}
	s.metrics.ObserveExport(format)

	s.logger.Info("timetable exported",
		zap.String("result_id", id),
		zap.String("format", format),
		zap.Int("bytes", len(payload)),
	)
	return &ExportFile{Filename: filename, ContentType: contentType, Data: payload}, nil
}

// timetableDataset lays the run out as one row per time band with a column
// per weekday, the shape the grid renders everywhere else.
func timetableDataset(result *dto.GenerateTimetableResponse) export.Dataset {
	meta := []string{
		fmt.Sprintf("Result %s generated %s by %s", result.ResultID, result.GeneratedAt.Format(time.RFC3339), result.Engine),
		fmt.Sprintf("Coverage %.1f%% (%d/%d hours)", result.Statistics.CoveragePercent, result.Statistics.ScheduledHours, result.Statistics.ExpectedHours),
		fmt.Sprintf("Quality %s (penalty %d)", result.Penalty.QualityRating, result.Penalty.TotalPenalty),
	}
	if len(result.FailureReasons) > 0 {
		meta = append(meta, fmt.Sprintf("Courses with unmet targets: %d", len(result.FailureReasons)))
	}

	headers := make([]string, 0, len(engine.Days)+1)
	headers = append(headers, "Time")
	for _, d := range engine.Days {
		headers = append(headers, d.String())
	}

	rows := make([]map[string]string, 0, engine.SlotsPerDay)
	for t := engine.TimeSlot(0); t < engine.SlotsPerDay; t++ {
		row := map[string]string{"Time": t.String()}
		for _, d := range engine.Days {
			row[d.String()] = cellText(result.Timetable[d.String()][t.String()])
		}
		rows = append(rows, row)
	}

	return export.Dataset{
		Title:   "Weekly Timetable",
		Meta:    meta,
		Headers: headers,
		Rows:    rows,
	}
}

// cellText flattens a cell's assignments into one printable value.
func cellText(assignments []dto.AssignmentResponse) string {
	if len(assignments) == 0 {
		return ""
	}
	parts := make([]string, 0, len(assignments))
	for _, a := range assignments {
		parts = append(parts, fmt.Sprintf("%s [%s, %s]", a.Course, a.Faculty, a.Room))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}
