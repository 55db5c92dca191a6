package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCourse(t *testing.T, name, faculty, room string, sessionType SessionType, target int, availability ...string) Course {
	t.Helper()
	slots, warnings := ResolveAvailability(availability...)
	require.Empty(t, warnings)
	return Course{
		Name:           name,
		ID:             ParseCourseID(name),
		Faculty:        faculty,
		Room:           room,
		SessionType:    sessionType,
		WeeklyTarget:   target,
		LabBlockLength: DefaultLabBlockLength,
		CandidateSlots: slots,
	}
}

func newGreedyForTest() *GreedyScheduler {
	return NewGreedyScheduler(GreedyOptions{Seed: 42})
}

func TestGreedySpreadsAcrossDays(t *testing.T) {
	courses := []Course{
		testCourse(t, "Mathematics", "Dr. Rao", "101", SessionLecture, 3, "Monday,Wednesday,Friday"),
	}

	result, err := newGreedyForTest().Schedule(context.Background(), courses)
	require.NoError(t, err)
	require.Len(t, result.Assignments, 3)
	assert.Empty(t, result.FailureReasons)
	assert.Equal(t, "greedy", result.Engine)

	days := make(map[Day]int)
	for _, a := range result.Assignments {
		days[a.Day]++
	}
	assert.Len(t, days, 3, "sessions should land on three distinct days")
	for day, count := range days {
		assert.Equal(t, 1, count, "day %s", day)
	}
}

func TestGreedySharedFacultyDisjointSlots(t *testing.T) {
	overlap := "monday 9am,monday 10am,monday 11am"
	courses := []Course{
		testCourse(t, "Compiler Design", "Dr. Rao", "101", SessionLecture, 2, overlap),
		testCourse(t, "Graph Theory", "Dr. Rao", "102", SessionLecture, 2, overlap),
	}

	result, err := newGreedyForTest().Schedule(context.Background(), courses)
	require.NoError(t, err)

	// Three cells exist, four sessions are wanted: every cell is used
	// once and exactly one course reports a deficit.
	require.Len(t, result.Assignments, 3)
	used := make(map[SlotKey]bool)
	for _, a := range result.Assignments {
		key := SlotKey{Day: a.Day, Slot: a.Slot}
		assert.False(t, used[key], "cell %s assigned twice", key)
		used[key] = true
	}

	require.Len(t, result.FailureReasons, 1)
	for _, reason := range result.FailureReasons {
		assert.Equal(t, "WEEKLY_DEFICIT_1/2", reason)
	}

	report := NewValidator(nil).Validate(result.Assignments)
	assert.True(t, report.Clean(), "conflicts: %+v", report)
}

func TestGreedyLabNeedsContiguousBands(t *testing.T) {
	courses := []Course{
		testCourse(t, "Chemistry (Lab)", "Dr. Ahuja", "Lab-1", SessionLab, 1,
			"monday 9am,monday 11am,tuesday 9am,tuesday 11am"),
	}

	result, err := newGreedyForTest().Schedule(context.Background(), courses)
	require.NoError(t, err)
	assert.Empty(t, result.Assignments)
	assert.Equal(t, FailureLabNoBlock, result.FailureReasons["Chemistry (Lab)"])

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, 0, result.Outcomes[0].ScheduledHours)
	assert.Equal(t, 2, result.Outcomes[0].ExpectedHours)
}

func TestGreedyLabPlacesContiguousBlock(t *testing.T) {
	courses := []Course{
		testCourse(t, "Physics (Lab)", "Dr. Ahuja", "Lab-1", SessionLab, 1,
			"monday 9am,monday 10am,tuesday 9am"),
	}

	result, err := newGreedyForTest().Schedule(context.Background(), courses)
	require.NoError(t, err)
	require.Len(t, result.Assignments, 2)
	assert.Empty(t, result.FailureReasons)

	first, second := result.Assignments[0], result.Assignments[1]
	assert.Equal(t, first.Day, second.Day)
	assert.Equal(t, first.Slot+1, second.Slot)
	assert.Equal(t, 2, first.DurationHours)
	assert.Equal(t, SessionLab, first.SessionType)
}

func TestGreedyZeroCandidateLecture(t *testing.T) {
	courses := []Course{
		{
			Name:         "Ghost Seminar",
			ID:           ParseCourseID("Ghost Seminar"),
			Faculty:      "Dr. Rao",
			Room:         "101",
			SessionType:  SessionLecture,
			WeeklyTarget: 2,
		},
	}

	result, err := newGreedyForTest().Schedule(context.Background(), courses)
	require.NoError(t, err)
	assert.Empty(t, result.Assignments)
	assert.Equal(t, FailureInsufficientSlots, result.FailureReasons["Ghost Seminar"])
}

func TestCourseRunDensity(t *testing.T) {
	dense := newCourseRun(testCourse(t, "Algorithms", "Dr. Das", "201", SessionLecture, 3, "Monday"))
	assert.InDelta(t, 3.0/float64(SlotsPerDay), dense.density, 1e-9)

	orphan := newCourseRun(Course{Name: "Orphan", ID: ParseCourseID("Orphan"), WeeklyTarget: 2})
	assert.InDelta(t, 2.0, orphan.density, 1e-9, "zero candidates divide by one")
}

func TestGreedyRelaxationLiftsFacultyDayCap(t *testing.T) {
	names := []string{"Course A", "Course B", "Course C", "Course D", "Course E", "Course F"}
	courses := make([]Course, 0, len(names))
	for _, name := range names {
		courses = append(courses, testCourse(t, name, "Dr. Rao", "101", SessionLecture, 1, "monday"))
	}

	result, err := newGreedyForTest().Schedule(context.Background(), courses)
	require.NoError(t, err)

	// Five sessions hit the normal cap; the sixth lands during the
	// relaxation pass, so no deficit survives.
	require.Len(t, result.Assignments, 6)
	assert.Empty(t, result.FailureReasons)
	for _, a := range result.Assignments {
		assert.Equal(t, Monday, a.Day)
	}
}

func TestGreedyDeficitBeyondRelaxationBudget(t *testing.T) {
	// Ten single-slot courses compete for one cell: nine deficits exceed
	// the relaxation trigger, so the pass never runs and every deficit
	// carries its code.
	courses := make([]Course, 0, 10)
	for _, name := range []string{"C0", "C1", "C2", "C3", "C4", "C5", "C6", "C7", "C8", "C9"} {
		courses = append(courses, testCourse(t, name, "Dr. "+name, "R-"+name, SessionLecture, 1, "monday 9am"))
	}

	result, err := newGreedyForTest().Schedule(context.Background(), courses)
	require.NoError(t, err)
	assert.Len(t, result.Assignments, 1)
	assert.Len(t, result.FailureReasons, 9)
	for _, reason := range result.FailureReasons {
		assert.Equal(t, "WEEKLY_DEFICIT_0/1", reason)
	}
}

func TestGreedyDeterministicForEqualSeeds(t *testing.T) {
	build := func() []Course {
		return []Course{
			testCourse(t, "Mathematics", "Dr. Rao", "101", SessionLecture, 3, "monday,tuesday,wednesday"),
			testCourse(t, "Physics", "Dr. Ahuja", "102", SessionLecture, 2, "monday,thursday"),
			testCourse(t, "Physics (Lab)", "Dr. Ahuja", "Lab-1", SessionLab, 1, "friday"),
			testCourse(t, "Data Structures", "Dr. Verma", "103", SessionLecture, 3, "tuesday,wednesday,friday"),
		}
	}

	first, err := NewGreedyScheduler(GreedyOptions{Seed: 7}).Schedule(context.Background(), build())
	require.NoError(t, err)
	second, err := NewGreedyScheduler(GreedyOptions{Seed: 7}).Schedule(context.Background(), build())
	require.NoError(t, err)

	assert.Equal(t, first.Assignments, second.Assignments)
	assert.Equal(t, first.Outcomes, second.Outcomes)
}

func TestGreedyDeficitMonotonicInTarget(t *testing.T) {
	slots := "monday 9am,monday 10am,monday 11am,monday 2pm,monday 3pm"
	previous := 0
	for target := 1; target <= 8; target++ {
		courses := []Course{
			testCourse(t, "Course A", "Dr. Rao", "101", SessionLecture, target, slots),
		}
		result, err := newGreedyForTest().Schedule(context.Background(), courses)
		require.NoError(t, err)
		require.Len(t, result.Outcomes, 1)

		deficit := result.Outcomes[0].Deficit()
		assert.GreaterOrEqual(t, deficit, previous, "target %d", target)
		previous = deficit
	}
}

func TestGreedyOutcomesKeepInputOrder(t *testing.T) {
	courses := []Course{
		testCourse(t, "Zoology", "Dr. Rao", "101", SessionLecture, 1, "monday"),
		testCourse(t, "Anatomy", "Dr. Ahuja", "102", SessionLecture, 1, "tuesday"),
		testCourse(t, "Botany", "Dr. Verma", "103", SessionLecture, 1, "wednesday"),
	}

	result, err := newGreedyForTest().Schedule(context.Background(), courses)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, "Zoology", result.Outcomes[0].Course)
	assert.Equal(t, "Anatomy", result.Outcomes[1].Course)
	assert.Equal(t, "Botany", result.Outcomes[2].Course)
}

func TestGreedyCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	courses := []Course{
		testCourse(t, "Mathematics", "Dr. Rao", "101", SessionLecture, 1, "monday"),
	}
	_, err := newGreedyForTest().Schedule(ctx, courses)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGreedyFullWeekValidates(t *testing.T) {
	courses := []Course{
		testCourse(t, "Mathematics", "Dr. Rao", "101", SessionLecture, 3, "monday,wednesday,friday"),
		testCourse(t, "Physics", "Dr. Ahuja", "102", SessionLecture, 3, "monday,tuesday,thursday"),
		testCourse(t, "Physics (Lab)", "Dr. Ahuja", "Lab-1", SessionLab, 1, "wednesday,friday"),
		testCourse(t, "Data Structures", "Dr. Verma", "103", SessionLecture, 3, "tuesday,wednesday,friday"),
		testCourse(t, "Data Structures (Lab)", "Dr. Verma", "Lab-2", SessionLab, 1, "monday,thursday"),
		testCourse(t, "Database Systems", "Dr. Iyer", "104", SessionLecture, 2, "monday,tuesday,friday"),
		testCourse(t, "Operating Systems", "Dr. Iyer", "104", SessionLecture, 2, "wednesday,thursday"),
		testCourse(t, "English", "Dr. Nair", "105", SessionLecture, 2, "tuesday,thursday"),
	}

	result, err := newGreedyForTest().Schedule(context.Background(), courses)
	require.NoError(t, err)
	assert.Empty(t, result.FailureReasons)

	report := NewValidator(nil).Validate(result.Assignments)
	assert.True(t, report.Clean(), "conflicts: %+v", report)

	stats := BuildStatistics(result)
	assert.Equal(t, 8, stats.TotalCourses)
	assert.Equal(t, 8, stats.FullySatisfied)
	assert.Equal(t, stats.ExpectedHours, stats.ScheduledHours)
	assert.InDelta(t, 100.0, stats.CoveragePercent, 0.001)

	// Every scheduled hour appears in the timetable grid.
	grid := result.Timetable()
	total := 0
	for _, day := range Days {
		for _, cell := range grid[day] {
			total += len(cell)
		}
	}
	assert.Equal(t, len(result.Assignments), total)
}
