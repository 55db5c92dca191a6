package engine

// Penalty weights, additive.
const (
	penaltyAdjacentSameCourse = 1
	penaltyRepeatPerDay       = 1
	penaltyLastSlotLecture    = 3
	penaltySecondLastLecture  = 2
	penaltyOverloadedDay      = 2
	penaltyLunchSession       = 1
	penaltyCoreLate           = 3
	penaltyLectureLabSameDay  = 2
	penaltyImbalance          = 1
)

// Quality ratings derived from the total penalty.
const (
	QualityExcellent        = "EXCELLENT"
	QualityGood             = "GOOD"
	QualityAcceptable       = "ACCEPTABLE"
	QualityNeedsImprovement = "NEEDS_IMPROVEMENT"
)

// QualityRating maps a total penalty to its categorical rating.
func QualityRating(total int) string {
	switch {
	case total <= 5:
		return QualityExcellent
	case total <= 10:
		return QualityGood
	case total <= 20:
		return QualityAcceptable
	default:
		return QualityNeedsImprovement
	}
}

// PenaltyReport is the final soft-constraint accounting for a completed
// schedule.
type PenaltyReport struct {
	Breakdown     map[string]int `json:"breakdown"`
	TotalPenalty  int            `json:"total_penalty"`
	QualityRating string         `json:"quality_rating"`
}

// Breakdown keys.
const (
	breakdownAdjacent     = "consecutive_same_course"
	breakdownRepeatPerDay = "multiple_course_per_day"
	breakdownLate         = "late_lectures"
	breakdownVeryLate     = "very_late_lectures"
	breakdownOverloaded   = "overloaded_days"
	breakdownLunch        = "lunch_hour_sessions"
	breakdownCoreLate     = "core_subjects_late"
	breakdownLectureLab   = "lecture_lab_same_day"
	breakdownImbalance    = "daily_imbalance"
)

// Evaluator scores soft-constraint violations. It is stateless apart from
// its core-course set and never mutates the schedules it reads, which lets
// the greedy engine call it per candidate and the reporting path call it
// once over the finished run.
type Evaluator struct {
	core map[string]bool
}

// NewEvaluator builds an evaluator treating the given base names as core
// subjects. Passing nil applies the default core set.
func NewEvaluator(coreCourses []string) *Evaluator {
	if coreCourses == nil {
		coreCourses = DefaultCoreCourses()
	}
	core := make(map[string]bool, len(coreCourses))
	for _, c := range coreCourses {
		core[NormalizeBaseName(c)] = true
	}
	return &Evaluator{core: core}
}

// ScorePlacement returns the penalty points the schedule would incur by
// placing one session of the course at the cell, judged against the current
// state. Lower is better.
func (e *Evaluator) ScorePlacement(st *State, c Course, day Day, slot TimeSlot) int {
	base := c.ID.BaseName
	isLecture := c.SessionType == SessionLecture
	total := 0

	if isLecture {
		for _, adj := range []TimeSlot{slot - 1, slot + 1} {
			if !adj.Valid() {
				continue
			}
			for _, occ := range st.OccupantsAt(day, adj) {
				if occ.ID.BaseName == base && occ.SessionType == SessionLecture {
					total += penaltyAdjacentSameCourse
				}
			}
		}
		switch slot {
		case SlotsPerDay - 1:
			total += penaltyLastSlotLecture
		case SlotsPerDay - 2:
			total += penaltySecondLastLecture
		}
	}

	if st.BaseCountOnDay(day, base) > 0 {
		total += penaltyRepeatPerDay
	}

	if st.DayLoad(day) >= 7 {
		total += penaltyOverloadedDay
	}

	if slot == LunchSlot {
		total += penaltyLunchSession
	}

	if e.core[base] && slot >= LateThreshold {
		total += penaltyCoreLate
	}

	if e.hasOppositeComponent(st, day, base, c.SessionType) {
		total += penaltyLectureLabSameDay
	}

	if min, max := st.DayLoadSpread(); max-min > 3 {
		total += penaltyImbalance
	}

	return total
}

func (e *Evaluator) hasOppositeComponent(st *State, day Day, base string, t SessionType) bool {
	for slot := TimeSlot(0); slot < SlotsPerDay; slot++ {
		for _, occ := range st.OccupantsAt(day, slot) {
			if occ.ID.BaseName == base && occ.SessionType != t {
				return true
			}
		}
	}
	return false
}

// Report scores a completed schedule and returns the full breakdown.
func (e *Evaluator) Report(assignments []Assignment) PenaltyReport {
	breakdown := map[string]int{
		breakdownAdjacent:     0,
		breakdownRepeatPerDay: 0,
		breakdownLate:         0,
		breakdownVeryLate:     0,
		breakdownOverloaded:   0,
		breakdownLunch:        0,
		breakdownCoreLate:     0,
		breakdownLectureLab:   0,
		breakdownImbalance:    0,
	}

	grid := BuildTimetable(assignments)

	for _, day := range Days {
		daySessions := 0
		baseCounts := make(map[string]int)
		baseTypes := make(map[string]map[SessionType]bool)

		for slot := TimeSlot(0); slot < SlotsPerDay; slot++ {
			for _, a := range grid[day][slot] {
				daySessions++
				base := a.ID.BaseName
				baseCounts[base]++
				if baseTypes[base] == nil {
					baseTypes[base] = make(map[SessionType]bool)
				}
				baseTypes[base][a.SessionType] = true

				if a.SessionType == SessionLecture {
					switch slot {
					case SlotsPerDay - 1:
						breakdown[breakdownVeryLate] += penaltyLastSlotLecture
					case SlotsPerDay - 2:
						breakdown[breakdownLate] += penaltySecondLastLecture
					}
				}
				if slot == LunchSlot {
					breakdown[breakdownLunch] += penaltyLunchSession
				}
				if e.core[base] && slot >= LateThreshold {
					breakdown[breakdownCoreLate] += penaltyCoreLate
				}
			}

			// Adjacent bands holding lectures of the same base course.
			if slot+1 < SlotsPerDay {
				for _, a := range grid[day][slot] {
					if a.SessionType != SessionLecture {
						continue
					}
					for _, b := range grid[day][slot+1] {
						if b.SessionType == SessionLecture && b.ID.BaseName == a.ID.BaseName {
							breakdown[breakdownAdjacent] += penaltyAdjacentSameCourse
						}
					}
				}
			}
		}

		if daySessions > 7 {
			breakdown[breakdownOverloaded] += penaltyOverloadedDay
		}
		for _, count := range baseCounts {
			if count > 1 {
				breakdown[breakdownRepeatPerDay] += (count - 1) * penaltyRepeatPerDay
			}
		}
		for _, types := range baseTypes {
			if types[SessionLecture] && types[SessionLab] {
				breakdown[breakdownLectureLab] += penaltyLectureLabSameDay
			}
		}
	}

	minLoad, maxLoad := dayLoadSpread(grid)
	if maxLoad-minLoad > 3 {
		breakdown[breakdownImbalance] += penaltyImbalance
	}

	total := 0
	for _, v := range breakdown {
		total += v
	}
	return PenaltyReport{
		Breakdown:     breakdown,
		TotalPenalty:  total,
		QualityRating: QualityRating(total),
	}
}

func dayLoadSpread(grid Timetable) (min, max int) {
	first := true
	for _, day := range Days {
		load := 0
		for _, cell := range grid[day] {
			load += len(cell)
		}
		if first {
			min, max = load, load
			first = false
			continue
		}
		if load < min {
			min = load
		}
		if load > max {
			max = load
		}
	}
	return min, max
}
