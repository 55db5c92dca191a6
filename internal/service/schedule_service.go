package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/engine"
	"github.com/noah-isme/timetable-api/internal/ingest"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

// EngineFactory builds a fresh engine for one run. Factories exist because
// seeded engines fix their randomness at construction time, so per-request
// seeds need per-request engines.
type EngineFactory func(seed int64) engine.Engine

type resultStore interface {
	Save(ctx context.Context, result *dto.GenerateTimetableResponse) error
	Get(ctx context.Context, id string) (*dto.GenerateTimetableResponse, error)
}

type runArchiver interface {
	Enqueue(archive *models.ScheduleArchive, slots []models.ScheduleArchiveSlot) error
}

// facultyLoadCeiling is five sessions a day across five days, the most one
// faculty member can hold without relaxation.
const facultyLoadCeiling = 25

// ScheduleService runs scheduling engines over ingested course lists and
// keeps each result retrievable by id until its TTL lapses.
type ScheduleService struct {
	engines       map[string]EngineFactory
	defaultEngine string
	defaultSeed   int64
	labBlockLen   int
	results       resultStore
	archiver      runArchiver
	metrics       *MetricsService
	checker       *engine.Validator
	evaluator     *engine.Evaluator
	validator     *validator.Validate
	logger        *zap.Logger
}

// ScheduleConfig carries run defaults resolved from the environment.
type ScheduleConfig struct {
	DefaultEngine  string
	DefaultSeed    int64
	LabBlockLength int
}

// NewScheduleService wires scheduling dependencies. The archiver may be nil
// when no database is configured; metrics may be nil in tests.
func NewScheduleService(
	engines map[string]EngineFactory,
	results resultStore,
	archiver runArchiver,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg ScheduleConfig,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultEngine == "" {
		cfg.DefaultEngine = "greedy"
	}
	if cfg.LabBlockLength <= 0 {
		cfg.LabBlockLength = engine.DefaultLabBlockLength
	}
	return &ScheduleService{
		engines:       engines,
		defaultEngine: cfg.DefaultEngine,
		defaultSeed:   cfg.DefaultSeed,
		labBlockLen:   cfg.LabBlockLength,
		results:       results,
		archiver:      archiver,
		metrics:       metrics,
		checker:       engine.NewValidator(nil),
		evaluator:     engine.NewEvaluator(nil),
		validator:     validate,
		logger:        logger,
	}
}

// AvailableEngines lists the registered engine names in sorted order.
func (s *ScheduleService) AvailableEngines() []string {
	names := make([]string, 0, len(s.engines))
	for name := range s.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultEngine reports the engine used when a request names none.
func (s *ScheduleService) DefaultEngine() string {
	return s.defaultEngine
}

// Generate ingests the course list, runs the requested engine, and stores
// the full response under a fresh result id.
func (s *ScheduleService) Generate(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.GenerateTimetableResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduling payload")
	}

	engineName := req.Engine
	if engineName == "" {
		engineName = s.defaultEngine
	}
	factory, ok := s.engines[engineName]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, fmt.Sprintf("scheduling engine %q is not available", engineName))
	}

	courses, warnings, err := ingest.Build(toRecords(req.Courses, s.labBlockLen))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "course list rejected")
	}

	seed := s.defaultSeed
	if req.Seed != nil {
		seed = *req.Seed
	}

	eng := factory(seed)
	started := time.Now()
	result, err := eng.Schedule(ctx, courses)
	if err != nil {
		s.metrics.ObserveScheduleRun(engineName, "error", time.Since(started), 0, 0)
		if errors.Is(err, engine.ErrOverfill) {
			return nil, appErrors.Wrap(err, appErrors.ErrOverfill.Code, appErrors.ErrOverfill.Status, appErrors.ErrOverfill.Message)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "scheduling run failed")
	}

	resp := s.buildResponse(result, warnings)

	deficits := 0
	for _, o := range result.Outcomes {
		if o.Deficit() > 0 {
			deficits++
		}
	}
	outcome := "full"
	if deficits > 0 {
		outcome = "deficit"
	}
	s.metrics.ObserveScheduleRun(engineName, outcome, time.Since(started), deficits, resp.Penalty.TotalPenalty)

	if err := s.results.Save(ctx, resp); err != nil {
		s.logger.Warn("result save failed", zap.String("result_id", resp.ResultID), zap.Error(err))
	}
	s.archive(resp, result)

	s.logger.Info("schedule generated",
		zap.String("result_id", resp.ResultID),
		zap.String("engine", engineName),
		zap.Int64("seed", seed),
		zap.Int("courses", len(courses)),
		zap.Int("deficit_courses", deficits),
		zap.Int("penalty", resp.Penalty.TotalPenalty),
	)
	return resp, nil
}

// ValidateCourses checks a course list for blocking problems and advisory
// warnings without running an engine. Blocking issues mirror the rules the
// ingestion pass enforces, so a list that validates clean also ingests.
func (s *ScheduleService) ValidateCourses(ctx context.Context, req dto.ValidateCoursesRequest) (*dto.ValidateCoursesResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid validation payload")
	}

	issues := make([]dto.CourseIssue, 0)
	warnings := make([]dto.WarningResponse, 0)
	seen := make(map[string]bool, len(req.Courses))
	facultyHours := make(map[string]int)
	facultyCourses := make(map[string]int)

	for i, c := range req.Courses {
		name := strings.TrimSpace(c.Name)
		label := name
		if label == "" {
			label = fmt.Sprintf("course %d", i+1)
		}

		switch {
		case name == "":
			issues = append(issues, dto.CourseIssue{Course: label, Field: "name", Message: "name is required"})
		case seen[name]:
			issues = append(issues, dto.CourseIssue{Course: label, Field: "name", Message: "duplicate course name"})
		default:
			seen[name] = true
		}

		if strings.TrimSpace(c.Faculty) == "" {
			issues = append(issues, dto.CourseIssue{Course: label, Field: "faculty", Message: "faculty is required"})
		}
		if strings.TrimSpace(c.Room) == "" {
			issues = append(issues, dto.CourseIssue{Course: label, Field: "room", Message: "room is required"})
		}
		if c.SessionType != "" && c.SessionType != "lecture" && c.SessionType != "lab" {
			issues = append(issues, dto.CourseIssue{Course: label, Field: "sessionType", Message: `sessionType must be "lecture" or "lab"`})
		}
		if c.WeeklyTarget < 0 || c.WeeklyTarget > 8 {
			issues = append(issues, dto.CourseIssue{Course: label, Field: "weeklyTarget", Message: "weeklyTarget must be between 1 and 8"})
		}
		if c.WeeklyCount < 0 || c.WeeklyCount > 8 {
			issues = append(issues, dto.CourseIssue{Course: label, Field: "weeklyCount", Message: "weeklyCount must be between 1 and 8"})
		}
		if c.Duration < 0 || c.Duration > 16 {
			issues = append(issues, dto.CourseIssue{Course: label, Field: "duration", Message: "duration must be between 1 and 16 weekly hours"})
		}

		slots, parseWarnings := engine.ResolveAvailability(c.Availability...)
		for _, w := range parseWarnings {
			warnings = append(warnings, dto.WarningResponse{Course: label, Token: w.Token, Reason: w.Reason})
		}
		if len(slots) == 0 {
			warnings = append(warnings, dto.WarningResponse{Course: label, Reason: "no recognizable availability; the course cannot be placed"})
		}

		if faculty := strings.TrimSpace(c.Faculty); faculty != "" {
			facultyHours[faculty] += requestedHours(c, s.labBlockLen)
			facultyCourses[faculty]++
		}
	}

	overloaded := make([]string, 0, len(facultyHours))
	for faculty, hours := range facultyHours {
		if hours > facultyLoadCeiling {
			overloaded = append(overloaded, faculty)
		}
	}
	sort.Strings(overloaded)
	for _, faculty := range overloaded {
		warnings = append(warnings, dto.WarningResponse{
			Token: faculty,
			Reason: fmt.Sprintf("faculty booked for %d weekly hours across %d courses; at most %d fit under the default day cap",
				facultyHours[faculty], facultyCourses[faculty], facultyLoadCeiling),
		})
	}

	return &dto.ValidateCoursesResponse{
		Valid:    len(issues) == 0,
		Issues:   issues,
		Warnings: warnings,
	}, nil
}

// GetResult fetches a stored run by id.
func (s *ScheduleService) GetResult(ctx context.Context, id string) (*dto.GenerateTimetableResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "result id is required")
	}
	resp, err := s.results.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrResultNotFound) {
			s.metrics.RecordResultLookup(false)
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("result %q not found or expired", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "result lookup failed")
	}
	s.metrics.RecordResultLookup(true)
	return resp, nil
}

// Sample returns a documented example payload along with the grid the
// scheduler places courses into.
func (s *ScheduleService) Sample() *dto.SampleResponse {
	days := make([]string, 0, len(engine.Days))
	for _, d := range engine.Days {
		days = append(days, d.String())
	}
	slots := make([]string, 0, engine.SlotsPerDay)
	for t := engine.TimeSlot(0); t < engine.SlotsPerDay; t++ {
		slots = append(slots, t.String())
	}

	return &dto.SampleResponse{
		Sample: dto.GenerateTimetableRequest{
			Engine: s.defaultEngine,
			Courses: []dto.CourseRequest{
				{Name: "Data Structures", Faculty: "Dr. Smith", Room: "Hall 102", Duration: 3, Availability: dto.StringList{"Mon2", "Wed2", "Fri3"}},
				{Name: "Database Systems", Faculty: "Dr. Johnson", Room: "Computer Lab 201", Duration: 2, Availability: dto.StringList{"Tue3", "Thu3", "Thu4"}},
				{Name: "Machine Learning", Faculty: "Dr. Wilson", Room: "AI Lab 301", Duration: 3, Availability: dto.StringList{"Mon1", "Wed1", "Fri1"}},
				{Name: "Machine Learning (Lab)", Faculty: "Dr. Wilson", Room: "AI Lab 301", SessionType: "lab", WeeklyTarget: 1, Availability: dto.StringList{"tuesday", "thursday"}},
			},
		},
		FieldDescriptions: map[string]string{
			"name":         `course display name; a "(Lab)" qualifier marks a lab component`,
			"faculty":      "faculty member teaching the course",
			"room":         "room the course is locked to",
			"sessionType":  `"lecture" or "lab"; inferred from the name when omitted`,
			"weeklyTarget": "sessions per week for lectures, blocks per week for labs",
			"duration":     "weekly hours; used when weeklyTarget is absent",
			"availability": `day names, "monday 10am" forms, or compact tokens such as Mon2`,
			"engine":       `"greedy" (default) or "exact"`,
			"seed":         "fixes tie-break randomness; equal seeds reproduce runs",
		},
		Days:  days,
		Slots: slots,
	}
}

// buildResponse assembles the API shape of a finished run: grid, outcomes,
// independent conflict check, penalty accounting, and statistics.
func (s *ScheduleService) buildResponse(result *engine.Result, warnings []ingest.Warning) *dto.GenerateTimetableResponse {
	engine.SortAssignments(result.Assignments)
	report := s.checker.Validate(result.Assignments)
	penalty := s.evaluator.Report(result.Assignments)
	stats := engine.BuildStatistics(result)

	resp := &dto.GenerateTimetableResponse{
		ResultID:    uuid.NewString()[:8],
		Engine:      result.Engine,
		GeneratedAt: time.Now().UTC(),
		Timetable:   timetableResponse(result.Assignments),
		Outcomes:    outcomeResponses(result.Outcomes),
		Conflicts: dto.ConflictReportResponse{
			FacultyConflicts: conflictResponses(report.FacultyConflicts),
			RoomConflicts:    conflictResponses(report.RoomConflicts),
			CohortConflicts:  conflictResponses(report.CohortConflicts),
			TotalCount:       report.TotalCount,
		},
		Penalty: dto.PenaltyResponse{
			Breakdown:     penalty.Breakdown,
			TotalPenalty:  penalty.TotalPenalty,
			QualityRating: penalty.QualityRating,
		},
		Statistics: dto.StatisticsResponse{
			TotalCourses:    stats.TotalCourses,
			FullySatisfied:  stats.FullySatisfied,
			ExpectedHours:   stats.ExpectedHours,
			ScheduledHours:  stats.ScheduledHours,
			CoveragePercent: stats.CoveragePercent,
			DaysUtilized:    stats.DaysUtilized,
			FacultyCount:    stats.FacultyCount,
			RoomCount:       stats.RoomCount,
		},
	}
	if len(result.FailureReasons) > 0 {
		resp.FailureReasons = result.FailureReasons
	}
	if len(warnings) > 0 {
		resp.Warnings = make([]dto.WarningResponse, 0, len(warnings))
		for _, w := range warnings {
			resp.Warnings = append(resp.Warnings, dto.WarningResponse{Course: w.Course, Token: w.Token, Reason: w.Reason})
		}
	}
	return resp
}

// archive hands the run to the background writer when one is configured.
func (s *ScheduleService) archive(resp *dto.GenerateTimetableResponse, result *engine.Result) {
	if s.archiver == nil {
		return
	}

	reasons := types.JSONText("{}")
	if len(result.FailureReasons) > 0 {
		encoded, err := json.Marshal(result.FailureReasons)
		if err != nil {
			s.logger.Warn("failure reasons encode failed", zap.String("result_id", resp.ResultID), zap.Error(err))
		} else {
			reasons = types.JSONText(encoded)
		}
	}

	archive := &models.ScheduleArchive{
		ID:             resp.ResultID,
		Engine:         resp.Engine,
		CourseCount:    resp.Statistics.TotalCourses,
		ExpectedHours:  resp.Statistics.ExpectedHours,
		ScheduledHours: resp.Statistics.ScheduledHours,
		TotalPenalty:   resp.Penalty.TotalPenalty,
		QualityRating:  resp.Penalty.QualityRating,
		FailureReasons: reasons,
		CreatedAt:      resp.GeneratedAt,
	}
	slots := make([]models.ScheduleArchiveSlot, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		slots = append(slots, models.ScheduleArchiveSlot{
			ID:            uuid.NewString(),
			ArchiveID:     resp.ResultID,
			Course:        a.Course,
			SessionType:   string(a.SessionType),
			DayOfWeek:     int(a.Day),
			TimeSlot:      int(a.Slot),
			Faculty:       a.Faculty,
			Room:          a.Room,
			DurationHours: a.DurationHours,
		})
	}

	if err := s.archiver.Enqueue(archive, slots); err != nil {
		s.logger.Warn("archive enqueue failed", zap.String("result_id", resp.ResultID), zap.Error(err))
	}
}

// toRecords converts API courses into raw ingestion records. Defaulting
// stays in the ingestion pass so file and API input share one rulebook;
// the configured lab block length only fills in for requests that leave
// the field unset.
func toRecords(courses []dto.CourseRequest, defaultBlockLen int) []ingest.Record {
	records := make([]ingest.Record, 0, len(courses))
	for _, c := range courses {
		blockLen := c.LabBlockLength
		if blockLen <= 0 {
			blockLen = defaultBlockLen
		}
		records = append(records, ingest.Record{
			Name:         c.Name,
			Faculty:      c.Faculty,
			Room:         c.Room,
			SessionType:  c.SessionType,
			WeeklyTarget: c.WeeklyTarget,
			WeeklyCount:  c.WeeklyCount,
			Duration:     c.Duration,
			BlockLength:  blockLen,
			Availability: c.Availability,
		})
	}
	return records
}

// requestedHours estimates the weekly grid hours one course will claim,
// mirroring how ingestion resolves targets.
func requestedHours(c dto.CourseRequest, defaultBlockLen int) int {
	isLab := c.SessionType == "lab" || strings.Contains(strings.ToLower(c.Name), "(lab")
	block := c.LabBlockLength
	if block <= 0 {
		block = defaultBlockLen
	}

	target := c.WeeklyTarget
	if target <= 0 {
		target = c.WeeklyCount
	}
	if target > 0 {
		if isLab {
			return target * block
		}
		return target
	}
	if c.Duration > 0 {
		return c.Duration
	}
	if isLab {
		return block
	}
	return 1
}

func timetableResponse(assignments []engine.Assignment) map[string]map[string][]dto.AssignmentResponse {
	grid := make(map[string]map[string][]dto.AssignmentResponse)
	for _, a := range assignments {
		day := a.Day.String()
		if grid[day] == nil {
			grid[day] = make(map[string][]dto.AssignmentResponse)
		}
		slot := a.Slot.String()
		grid[day][slot] = append(grid[day][slot], dto.AssignmentResponse{
			Course:        a.Course,
			SessionType:   string(a.SessionType),
			Day:           day,
			Slot:          slot,
			Faculty:       a.Faculty,
			Room:          a.Room,
			DurationHours: a.DurationHours,
		})
	}
	return grid
}

func outcomeResponses(outcomes []engine.CourseOutcome) []dto.CourseOutcomeResponse {
	out := make([]dto.CourseOutcomeResponse, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, dto.CourseOutcomeResponse{
			Course:         o.Course,
			SessionType:    string(o.SessionType),
			WeeklyTarget:   o.WeeklyTarget,
			ExpectedHours:  o.ExpectedHours,
			ScheduledHours: o.ScheduledHours,
			FailureReason:  o.FailureReason,
		})
	}
	return out
}

func conflictResponses(conflicts []engine.Conflict) []dto.ConflictResponse {
	if len(conflicts) == 0 {
		return nil
	}
	out := make([]dto.ConflictResponse, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, dto.ConflictResponse{
			Day:      c.Day,
			Slot:     c.Slot,
			Resource: c.Resource,
			Courses:  c.Courses,
		})
	}
	return out
}
