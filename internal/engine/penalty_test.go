package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func lectureAt(course string, day Day, slot TimeSlot) Assignment {
	return Assignment{
		Course:        course,
		ID:            ParseCourseID(course),
		Faculty:       "Dr. Rao",
		Room:          "101",
		Day:           day,
		Slot:          slot,
		DurationHours: 1,
		SessionType:   SessionLecture,
	}
}

func labAt(course string, day Day, slot TimeSlot) Assignment {
	a := lectureAt(course, day, slot)
	a.SessionType = SessionLab
	a.DurationHours = 2
	return a
}

func TestQualityRating(t *testing.T) {
	assert.Equal(t, QualityExcellent, QualityRating(0))
	assert.Equal(t, QualityExcellent, QualityRating(5))
	assert.Equal(t, QualityGood, QualityRating(6))
	assert.Equal(t, QualityGood, QualityRating(10))
	assert.Equal(t, QualityAcceptable, QualityRating(11))
	assert.Equal(t, QualityAcceptable, QualityRating(20))
	assert.Equal(t, QualityNeedsImprovement, QualityRating(21))
}

func TestReportCleanSchedule(t *testing.T) {
	evaluator := NewEvaluator(nil)
	report := evaluator.Report([]Assignment{
		lectureAt("Course A", Monday, 0),
		lectureAt("Course B", Tuesday, 1),
		lectureAt("Course C", Wednesday, 2),
	})
	assert.Equal(t, 0, report.TotalPenalty)
	assert.Equal(t, QualityExcellent, report.QualityRating)
	for key, v := range report.Breakdown {
		assert.Zero(t, v, "category %s", key)
	}
}

func TestReportAdjacentSameCourse(t *testing.T) {
	evaluator := NewEvaluator(nil)
	report := evaluator.Report([]Assignment{
		lectureAt("Course A", Monday, 0),
		lectureAt("Course A", Monday, 1),
	})
	assert.Equal(t, 1, report.Breakdown["consecutive_same_course"])
	// Two sessions of one base on one day also count as a repeat.
	assert.Equal(t, 1, report.Breakdown["multiple_course_per_day"])
}

func TestReportAdjacencyIsBandAdjacency(t *testing.T) {
	evaluator := NewEvaluator(nil)
	// A gap between the bands means no adjacency, even though the two
	// sessions are neighbors in the day's occupied list.
	report := evaluator.Report([]Assignment{
		lectureAt("Course A", Monday, 0),
		lectureAt("Course A", Monday, 2),
	})
	assert.Equal(t, 0, report.Breakdown["consecutive_same_course"])
	assert.Equal(t, 1, report.Breakdown["multiple_course_per_day"])
}

func TestReportLateLectures(t *testing.T) {
	evaluator := NewEvaluator(nil)
	report := evaluator.Report([]Assignment{
		lectureAt("Course A", Monday, SlotsPerDay-1),
		lectureAt("Course B", Tuesday, SlotsPerDay-2),
	})
	assert.Equal(t, 3, report.Breakdown["very_late_lectures"])
	assert.Equal(t, 2, report.Breakdown["late_lectures"])
}

func TestReportLabsNotLatePenalized(t *testing.T) {
	evaluator := NewEvaluator(nil)
	report := evaluator.Report([]Assignment{
		labAt("Course A (Lab)", Monday, SlotsPerDay-2),
		labAt("Course A (Lab)", Monday, SlotsPerDay-1),
	})
	assert.Equal(t, 0, report.Breakdown["very_late_lectures"])
	assert.Equal(t, 0, report.Breakdown["late_lectures"])
	// Contiguous lab bands are not lecture adjacency either.
	assert.Equal(t, 0, report.Breakdown["consecutive_same_course"])
}

func TestReportLunchSessions(t *testing.T) {
	evaluator := NewEvaluator(nil)
	report := evaluator.Report([]Assignment{
		lectureAt("Course A", Monday, LunchSlot),
		lectureAt("Course B", Tuesday, LunchSlot),
	})
	assert.Equal(t, 2, report.Breakdown["lunch_hour_sessions"])
}

func TestReportCoreLate(t *testing.T) {
	evaluator := NewEvaluator(nil)
	report := evaluator.Report([]Assignment{
		lectureAt("Mathematics", Monday, LateThreshold),
	})
	assert.Equal(t, 3, report.Breakdown["core_subjects_late"])

	early := evaluator.Report([]Assignment{
		lectureAt("Mathematics", Monday, LateThreshold-1),
	})
	assert.Equal(t, 0, early.Breakdown["core_subjects_late"])
}

func TestReportCoreLateAppliesToLabs(t *testing.T) {
	evaluator := NewEvaluator(nil)
	report := evaluator.Report([]Assignment{
		labAt("Physics (Lab)", Monday, LateThreshold),
		labAt("Physics (Lab)", Monday, LateThreshold+1),
	})
	assert.Equal(t, 6, report.Breakdown["core_subjects_late"])
}

func TestReportLectureLabSameDay(t *testing.T) {
	evaluator := NewEvaluator(nil)
	report := evaluator.Report([]Assignment{
		lectureAt("Physics", Monday, 0),
		labAt("Physics (Lab)", Monday, 5),
		labAt("Physics (Lab)", Monday, 6),
	})
	assert.Equal(t, 2, report.Breakdown["lecture_lab_same_day"])

	split := evaluator.Report([]Assignment{
		lectureAt("Physics", Monday, 0),
		labAt("Physics (Lab)", Tuesday, 5),
		labAt("Physics (Lab)", Tuesday, 6),
	})
	assert.Equal(t, 0, split.Breakdown["lecture_lab_same_day"])
}

func TestReportOverloadedDay(t *testing.T) {
	evaluator := NewEvaluator(nil)
	var assignments []Assignment
	for slot := TimeSlot(0); slot < 8; slot++ {
		assignments = append(assignments, lectureAt("Course "+slot.String(), Monday, slot))
	}
	report := evaluator.Report(assignments)
	assert.Equal(t, 2, report.Breakdown["overloaded_days"])
}

func TestReportDailyImbalance(t *testing.T) {
	evaluator := NewEvaluator(nil)
	var assignments []Assignment
	for slot := TimeSlot(0); slot < 4; slot++ {
		assignments = append(assignments, lectureAt("Course "+slot.String(), Monday, slot))
	}
	report := evaluator.Report(assignments)
	// Monday holds four sessions while other days hold none.
	assert.Equal(t, 1, report.Breakdown["daily_imbalance"])

	balanced := evaluator.Report([]Assignment{
		lectureAt("Course A", Monday, 0),
		lectureAt("Course B", Friday, 0),
	})
	assert.Equal(t, 0, balanced.Breakdown["daily_imbalance"])
}

func TestReportRepeatCountsExtras(t *testing.T) {
	evaluator := NewEvaluator(nil)
	report := evaluator.Report([]Assignment{
		lectureAt("Course A", Monday, 0),
		lectureAt("Course A", Monday, 2),
		lectureAt("Course A", Monday, 4),
	})
	assert.Equal(t, 2, report.Breakdown["multiple_course_per_day"])
}

func TestScorePlacementRepeatAndLunch(t *testing.T) {
	evaluator := NewEvaluator(nil)
	st := NewState(nil)
	course := Course{
		Name:        "Course A",
		ID:          ParseCourseID("Course A"),
		Faculty:     "Dr. Rao",
		Room:        "101",
		SessionType: SessionLecture,
	}

	assert.Equal(t, 0, evaluator.ScorePlacement(st, course, Monday, 1))
	assert.Equal(t, 1, evaluator.ScorePlacement(st, course, Monday, LunchSlot))

	st.Commit(lectureAt("Course A", Monday, 5))
	// Repeat on the day plus adjacency with the committed session.
	assert.Equal(t, 2, evaluator.ScorePlacement(st, course, Monday, 6))
	// Repeat only.
	assert.Equal(t, 1, evaluator.ScorePlacement(st, course, Monday, 1))
	// A different day carries nothing.
	assert.Equal(t, 0, evaluator.ScorePlacement(st, course, Tuesday, 1))
}

func TestScorePlacementLateBands(t *testing.T) {
	evaluator := NewEvaluator(nil)
	st := NewState(nil)
	course := Course{
		Name:        "Course A",
		ID:          ParseCourseID("Course A"),
		SessionType: SessionLecture,
	}
	assert.Equal(t, 3, evaluator.ScorePlacement(st, course, Monday, SlotsPerDay-1))
	assert.Equal(t, 2, evaluator.ScorePlacement(st, course, Monday, SlotsPerDay-2))

	lab := course
	lab.SessionType = SessionLab
	assert.Equal(t, 0, evaluator.ScorePlacement(st, lab, Monday, SlotsPerDay-1))
}

func TestScorePlacementOverloadedDay(t *testing.T) {
	evaluator := NewEvaluator(nil)
	st := NewState(nil)
	for slot := TimeSlot(0); slot < 7; slot++ {
		st.Commit(lectureAt("Course "+slot.String(), Monday, slot))
	}
	course := Course{
		Name:        "Course X",
		ID:          ParseCourseID("Course X"),
		SessionType: SessionLecture,
	}
	score := evaluator.ScorePlacement(st, course, Monday, 7)
	// Overload and weekly imbalance both apply; the late band adds its
	// second-to-last weight.
	assert.GreaterOrEqual(t, score, 2)
}
