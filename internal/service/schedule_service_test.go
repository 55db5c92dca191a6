package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/engine"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

func TestScheduleServiceGenerateWithGreedy(t *testing.T) {
	service := newScheduleServiceFixture(scheduleFixtureConfig{})

	resp, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{
		Courses: []dto.CourseRequest{
			{Name: "Mathematics", Faculty: "Dr. Rao", Room: "101", WeeklyTarget: 3, Availability: dto.StringList{"monday", "tuesday", "wednesday"}},
			{Name: "Physics (Lab)", Faculty: "Dr. Iyer", Room: "Lab-2", SessionType: "lab", WeeklyTarget: 1, Availability: dto.StringList{"thursday"}},
		},
	})
	require.NoError(t, err)

	assert.Len(t, resp.ResultID, 8)
	assert.Equal(t, "greedy", resp.Engine)
	assert.Equal(t, 5, resp.Statistics.ExpectedHours)
	assert.Equal(t, 5, resp.Statistics.ScheduledHours)
	assert.InDelta(t, 100.0, resp.Statistics.CoveragePercent, 0.001)
	assert.Equal(t, 2, resp.Statistics.FullySatisfied)
	assert.Zero(t, resp.Conflicts.TotalCount)
	assert.Empty(t, resp.FailureReasons)
	assert.NotEmpty(t, resp.Penalty.QualityRating)

	placed := 0
	for _, day := range resp.Timetable {
		for _, cell := range day {
			placed += len(cell)
		}
	}
	assert.Equal(t, 5, placed)

	stored, err := service.GetResult(context.Background(), resp.ResultID)
	require.NoError(t, err)
	assert.Equal(t, resp.ResultID, stored.ResultID)
	assert.Equal(t, resp.Statistics, stored.Statistics)
}

func TestScheduleServiceGenerateIsDeterministicPerSeed(t *testing.T) {
	service := newScheduleServiceFixture(scheduleFixtureConfig{})
	req := dto.GenerateTimetableRequest{
		Seed: ptrInt64(13),
		Courses: []dto.CourseRequest{
			{Name: "Algorithms", Faculty: "Dr. Das", Room: "201", WeeklyTarget: 3, Availability: dto.StringList{"monday", "wednesday", "friday"}},
			{Name: "Networks", Faculty: "Dr. Sen", Room: "202", WeeklyTarget: 2, Availability: dto.StringList{"monday", "tuesday"}},
		},
	}

	first, err := service.Generate(context.Background(), req)
	require.NoError(t, err)
	second, err := service.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.ResultID, second.ResultID)
	assert.Equal(t, first.Timetable, second.Timetable)
	assert.Equal(t, first.Penalty, second.Penalty)
}

func TestScheduleServiceGenerateSeedSelection(t *testing.T) {
	var seeds []int64
	engines := map[string]EngineFactory{
		"greedy": func(seed int64) engine.Engine {
			seeds = append(seeds, seed)
			return engineStub{name: "greedy", result: &engine.Result{Engine: "greedy"}}
		},
	}
	service := newScheduleServiceFixture(scheduleFixtureConfig{
		engines: engines,
		cfg:     ScheduleConfig{DefaultSeed: 42},
	})
	req := dto.GenerateTimetableRequest{
		Courses: []dto.CourseRequest{
			{Name: "Statistics", Faculty: "Dr. Nair", Room: "301", Availability: dto.StringList{"monday"}},
		},
	}

	_, err := service.Generate(context.Background(), req)
	require.NoError(t, err)

	req.Seed = ptrInt64(7)
	_, err = service.Generate(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []int64{42, 7}, seeds)
}

func TestScheduleServiceGenerateUnknownEngine(t *testing.T) {
	service := newScheduleServiceFixture(scheduleFixtureConfig{})

	_, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{
		Engine: "exact",
		Courses: []dto.CourseRequest{
			{Name: "Geometry", Faculty: "Dr. Basu", Room: "102", Availability: dto.StringList{"monday"}},
		},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrUnavailable.Code, appErr.Code)
}

func TestScheduleServiceGenerateOverfill(t *testing.T) {
	engines := map[string]EngineFactory{
		"greedy": func(int64) engine.Engine {
			return engineStub{name: "greedy", err: fmt.Errorf("greedy: %w", engine.ErrOverfill)}
		},
	}
	service := newScheduleServiceFixture(scheduleFixtureConfig{engines: engines})

	_, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{
		Courses: []dto.CourseRequest{
			{Name: "Optics", Faculty: "Dr. Roy", Room: "103", Availability: dto.StringList{"monday"}},
		},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrOverfill.Code, appErr.Code)
}

func TestScheduleServiceGenerateRejectsBadPayload(t *testing.T) {
	service := newScheduleServiceFixture(scheduleFixtureConfig{})

	_, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = service.Generate(context.Background(), dto.GenerateTimetableRequest{
		Courses: []dto.CourseRequest{
			{Name: "History", Faculty: "Dr. Pillai", Room: "104", Availability: dto.StringList{"monday"}},
			{Name: "History", Faculty: "Dr. Pillai", Room: "104", Availability: dto.StringList{"tuesday"}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceGenerateArchivesRun(t *testing.T) {
	archiver := &archiverStub{}
	service := newScheduleServiceFixture(scheduleFixtureConfig{archiver: archiver})

	resp, err := service.Generate(context.Background(), dto.GenerateTimetableRequest{
		Courses: []dto.CourseRequest{
			{Name: "Mathematics", Faculty: "Dr. Rao", Room: "101", WeeklyTarget: 2, Availability: dto.StringList{"monday", "tuesday"}},
		},
	})
	require.NoError(t, err)

	require.Len(t, archiver.archives, 1)
	archive := archiver.archives[0]
	assert.Equal(t, resp.ResultID, archive.ID)
	assert.Equal(t, "greedy", archive.Engine)
	assert.Equal(t, 1, archive.CourseCount)
	assert.Equal(t, 2, archive.ScheduledHours)
	assert.Equal(t, resp.Penalty.QualityRating, archive.QualityRating)
	assert.JSONEq(t, "{}", string(archive.FailureReasons))

	require.Len(t, archiver.slots, 1)
	assert.Len(t, archiver.slots[0], 2)
	for _, slot := range archiver.slots[0] {
		assert.Equal(t, resp.ResultID, slot.ArchiveID)
		assert.Equal(t, "Mathematics", slot.Course)
	}
}

func TestScheduleServiceValidateCourses(t *testing.T) {
	service := newScheduleServiceFixture(scheduleFixtureConfig{})

	resp, err := service.ValidateCourses(context.Background(), dto.ValidateCoursesRequest{
		Courses: []dto.CourseRequest{
			{Name: "Mathematics", Faculty: "Dr. Rao", Room: "101", WeeklyTarget: 3, Availability: dto.StringList{"monday"}},
			{Name: "Mathematics", Faculty: "Dr. Rao", Room: "101", Availability: dto.StringList{"monday"}},
			{Name: "Physics", Room: "102", Availability: dto.StringList{"tuesday"}},
			{Name: "Chemistry", Faculty: "Dr. Bose", Room: "103", SessionType: "seminar", Availability: dto.StringList{"wednesday"}},
			{Name: "Biology", Faculty: "Dr. Kumar", Room: "104", WeeklyTarget: 9, Availability: dto.StringList{"someday"}},
		},
	})
	require.NoError(t, err)

	assert.False(t, resp.Valid)
	assert.Len(t, resp.Issues, 4)
	assert.True(t, hasIssue(resp.Issues, "Mathematics", "name"))
	assert.True(t, hasIssue(resp.Issues, "Physics", "faculty"))
	assert.True(t, hasIssue(resp.Issues, "Chemistry", "sessionType"))
	assert.True(t, hasIssue(resp.Issues, "Biology", "weeklyTarget"))

	assert.True(t, hasWarningToken(resp.Warnings, "someday"))
	assert.True(t, hasWarningReason(resp.Warnings, "Biology", "no recognizable availability"))
}

func TestScheduleServiceValidateCoursesFacultyOverload(t *testing.T) {
	service := newScheduleServiceFixture(scheduleFixtureConfig{})

	courses := make([]dto.CourseRequest, 0, 6)
	for i := 0; i < 6; i++ {
		courses = append(courses, dto.CourseRequest{
			Name:         fmt.Sprintf("Course %d", i+1),
			Faculty:      "Dr. Solo",
			Room:         fmt.Sprintf("R%d", i+1),
			Duration:     5,
			Availability: dto.StringList{"monday", "tuesday", "wednesday", "thursday", "friday"},
		})
	}

	resp, err := service.ValidateCourses(context.Background(), dto.ValidateCoursesRequest{Courses: courses})
	require.NoError(t, err)

	assert.True(t, resp.Valid)
	assert.True(t, hasWarningToken(resp.Warnings, "Dr. Solo"))
	assert.True(t, hasWarningReason(resp.Warnings, "", "booked for 30 weekly hours across 6 courses"))
}

func TestScheduleServiceGetResultMissing(t *testing.T) {
	service := newScheduleServiceFixture(scheduleFixtureConfig{})

	_, err := service.GetResult(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = service.GetResult(context.Background(), "deadbeef")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceSample(t *testing.T) {
	service := newScheduleServiceFixture(scheduleFixtureConfig{})

	sample := service.Sample()
	assert.Equal(t, "greedy", sample.Sample.Engine)
	assert.Len(t, sample.Sample.Courses, 4)
	assert.Len(t, sample.Days, 5)
	assert.Len(t, sample.Slots, 9)
	assert.Equal(t, "Monday", sample.Days[0])
	assert.Equal(t, "09:00-10:00", sample.Slots[0])
	assert.Equal(t, "17:00-18:00", sample.Slots[8])
}

// --- Fixtures ---

type scheduleFixtureConfig struct {
	engines  map[string]EngineFactory
	archiver runArchiver
	cfg      ScheduleConfig
}

func newScheduleServiceFixture(cfg scheduleFixtureConfig) *ScheduleService {
	if cfg.engines == nil {
		cfg.engines = map[string]EngineFactory{
			"greedy": func(seed int64) engine.Engine {
				return engine.NewGreedyScheduler(engine.GreedyOptions{Seed: seed})
			},
		}
	}
	results := repository.NewMemoryResultRepository(time.Minute)
	return NewScheduleService(cfg.engines, results, cfg.archiver, nil, nil, zap.NewNop(), cfg.cfg)
}

type engineStub struct {
	name   string
	result *engine.Result
	err    error
}

func (e engineStub) Name() string { return e.name }

func (e engineStub) Schedule(context.Context, []engine.Course) (*engine.Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.result, nil
}

type archiverStub struct {
	archives []*models.ScheduleArchive
	slots    [][]models.ScheduleArchiveSlot
}

func (a *archiverStub) Enqueue(archive *models.ScheduleArchive, slots []models.ScheduleArchiveSlot) error {
	a.archives = append(a.archives, archive)
	a.slots = append(a.slots, slots)
	return nil
}

func ptrInt64(v int64) *int64 { return &v }

func hasIssue(issues []dto.CourseIssue, course, field string) bool {
	for _, issue := range issues {
		if issue.Course == course && issue.Field == field {
			return true
		}
	}
	return false
}

func hasWarningToken(warnings []dto.WarningResponse, token string) bool {
	for _, w := range warnings {
		if w.Token == token {
			return true
		}
	}
	return false
}

func hasWarningReason(warnings []dto.WarningResponse, course, fragment string) bool {
	for _, w := range warnings {
		if course != "" && w.Course != course {
			continue
		}
		if strings.Contains(w.Reason, fragment) {
			return true
		}
	}
	return false
}
