package engine

import (
	"fmt"
	"sort"
)

// Assignment is one committed occupancy of a grid cell. Lab blocks commit
// one Assignment per occupied band, all carrying the block length as their
// duration. Assignments are immutable once committed.
type Assignment struct {
	Course        string      `json:"course"`
	ID            CourseID    `json:"-"`
	Faculty       string      `json:"faculty"`
	Room          string      `json:"room"`
	Day           Day         `json:"-"`
	Slot          TimeSlot    `json:"-"`
	DurationHours int         `json:"duration_hours"`
	SessionType   SessionType `json:"session_type"`
}

// Timetable arranges assignments by cell for rendering and validation.
type Timetable map[Day]map[TimeSlot][]Assignment

// BuildTimetable groups a run's assignments into the day/band grid.
func BuildTimetable(assignments []Assignment) Timetable {
	t := make(Timetable, len(Days))
	for _, d := range Days {
		t[d] = make(map[TimeSlot][]Assignment)
	}
	for _, a := range assignments {
		t[a.Day][a.Slot] = append(t[a.Day][a.Slot], a)
	}
	return t
}

// CourseOutcome reports how one course fared over a run. Hours count
// occupied bands, so a lab block of length two contributes two.
type CourseOutcome struct {
	Course         string      `json:"course"`
	SessionType    SessionType `json:"session_type"`
	WeeklyTarget   int         `json:"weekly_target"`
	ExpectedHours  int         `json:"expected_hours"`
	ScheduledHours int         `json:"scheduled_hours"`
	FailureReason  string      `json:"failure_reason,omitempty"`
}

// Deficit is the shortfall in hours, never negative.
func (o CourseOutcome) Deficit() int {
	if d := o.ExpectedHours - o.ScheduledHours; d > 0 {
		return d
	}
	return 0
}

// Failure reason codes surfaced in Result.FailureReasons.
const (
	FailureLabNoBlock        = "LAB_NO_BLOCK"
	FailureInsufficientSlots = "LECTURE_INSUFFICIENT_SLOTS"
)

// DeficitReason formats the under-fill code with actual and expected hours.
func DeficitReason(actual, expected int) string {
	return fmt.Sprintf("WEEKLY_DEFICIT_%d/%d", actual, expected)
}

// Result is a run's final snapshot: the committed assignments plus the
// per-course diagnostics. No mutation occurs after the run returns it.
type Result struct {
	Engine         string            `json:"engine"`
	Assignments    []Assignment      `json:"-"`
	Outcomes       []CourseOutcome   `json:"outcomes"`
	FailureReasons map[string]string `json:"failure_reasons"`
}

// Timetable groups the result's assignments into the grid.
func (r *Result) Timetable() Timetable {
	return BuildTimetable(r.Assignments)
}

// Statistics summarizes a run for reporting.
type Statistics struct {
	TotalCourses    int     `json:"total_courses"`
	FullySatisfied  int     `json:"fully_satisfied"`
	ExpectedHours   int     `json:"expected_hours"`
	ScheduledHours  int     `json:"scheduled_hours"`
	CoveragePercent float64 `json:"coverage_percent"`
	DaysUtilized    int     `json:"days_utilized"`
	FacultyCount    int     `json:"faculty_count"`
	RoomCount       int     `json:"room_count"`
}

// BuildStatistics derives coverage and utilization figures from a result.
func BuildStatistics(r *Result) Statistics {
	stats := Statistics{TotalCourses: len(r.Outcomes)}
	for _, o := range r.Outcomes {
		stats.ExpectedHours += o.ExpectedHours
		stats.ScheduledHours += o.ScheduledHours
		if o.Deficit() == 0 {
			stats.FullySatisfied++
		}
	}
	if stats.ExpectedHours > 0 {
		stats.CoveragePercent = 100 * float64(stats.ScheduledHours) / float64(stats.ExpectedHours)
	}

	days := make(map[Day]bool)
	faculty := make(map[string]bool)
	rooms := make(map[string]bool)
	for _, a := range r.Assignments {
		days[a.Day] = true
		faculty[a.Faculty] = true
		rooms[a.Room] = true
	}
	stats.DaysUtilized = len(days)
	stats.FacultyCount = len(faculty)
	stats.RoomCount = len(rooms)
	return stats
}

// SortAssignments orders assignments by day, band, then course name so that
// rendered output is stable across runs with the same seed.
func SortAssignments(assignments []Assignment) {
	sort.SliceStable(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		return a.Course < b.Course
	})
}
