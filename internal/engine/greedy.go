package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"
)

// RelaxationPolicy bounds the emergency repair pass that runs when a small
// number of courses end the primary rounds under target. The relaxed cap is
// passed into the retry rounds explicitly; the primary cap is never mutated.
type RelaxationPolicy struct {
	// MaxDeficitCourses is the largest deficit count that still triggers
	// the pass.
	MaxDeficitCourses int
	// FacultyDayCap replaces the normal per-day cap during the pass.
	FacultyDayCap int
	// ExtraRounds bounds the retry loop.
	ExtraRounds int
}

// DefaultRelaxationPolicy matches the engine's stock tuning: repair up to
// three deficit courses with the cap raised to eight for ten rounds.
func DefaultRelaxationPolicy() RelaxationPolicy {
	return RelaxationPolicy{MaxDeficitCourses: 3, FacultyDayCap: 8, ExtraRounds: 10}
}

// GreedyOptions configures a greedy engine instance.
type GreedyOptions struct {
	// MaxRounds bounds the primary round-robin loop.
	MaxRounds int
	// FacultyDayCap is the normal per-faculty, per-day session limit.
	FacultyDayCap int
	Relaxation    RelaxationPolicy
	// Seed drives the tie-break randomness; equal seeds reproduce runs.
	Seed      int64
	Evaluator *Evaluator
	Cohorts   *CohortRegistry
	Logger    *zap.Logger
}

// GreedyScheduler is the primary engine: priority-ordered, round-robin
// placement. Each round every unsatisfied course attempts exactly one unit
// of progress so that early, high-quality cells spread fairly across
// courses instead of one course exhausting them.
type GreedyScheduler struct {
	maxRounds     int
	facultyDayCap int
	relaxation    RelaxationPolicy
	seed          int64
	evaluator     *Evaluator
	cohorts       *CohortRegistry
	logger        *zap.Logger
}

// NewGreedyScheduler applies defaults for any unset option and returns a
// ready engine.
func NewGreedyScheduler(opts GreedyOptions) *GreedyScheduler {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = 50
	}
	if opts.FacultyDayCap <= 0 {
		opts.FacultyDayCap = 5
	}
	if opts.Relaxation.FacultyDayCap <= 0 {
		opts.Relaxation = DefaultRelaxationPolicy()
	}
	if opts.Evaluator == nil {
		opts.Evaluator = NewEvaluator(nil)
	}
	if opts.Cohorts == nil {
		opts.Cohorts = NewCohortRegistry(DefaultCohortGroups())
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &GreedyScheduler{
		maxRounds:     opts.MaxRounds,
		facultyDayCap: opts.FacultyDayCap,
		relaxation:    opts.Relaxation,
		seed:          opts.Seed,
		evaluator:     opts.Evaluator,
		cohorts:       opts.Cohorts,
		logger:        opts.Logger,
	}
}

// Name identifies the backend in results and metrics.
func (g *GreedyScheduler) Name() string { return "greedy" }

// courseRun carries one course's mutable bookkeeping through a run.
type courseRun struct {
	course         Course
	remaining      int
	scheduledUnits int
	scheduledHours int
	density        float64
	slotsByDay     map[Day][]TimeSlot
	days           []Day
}

// Schedule runs the round-robin loop, the relaxation pass when warranted,
// and returns the final snapshot. The error path is reserved for context
// cancellation and commit-discipline defects; per-course problems land in
// FailureReasons instead.
func (g *GreedyScheduler) Schedule(ctx context.Context, courses []Course) (*Result, error) {
	state := NewState(g.cohorts)
	rng := rand.New(rand.NewSource(g.seed))

	runs := make([]*courseRun, 0, len(courses))
	for _, c := range courses {
		runs = append(runs, newCourseRun(c))
	}

	// Tightest-constrained courses first: density descending, then fewer
	// candidate slots.
	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].density != runs[j].density {
			return runs[i].density > runs[j].density
		}
		return len(runs[i].course.CandidateSlots) < len(runs[j].course.CandidateSlots)
	})

	rounds, err := g.runRounds(ctx, state, rng, runs, g.maxRounds, g.facultyDayCap)
	if err != nil {
		return nil, err
	}

	deficits := 0
	for _, cr := range runs {
		if cr.remaining > 0 {
			deficits++
		}
	}
	if deficits > 0 && deficits <= g.relaxation.MaxDeficitCourses {
		g.logger.Warn("relaxing faculty day cap for deficit repair",
			zap.Int("deficit_courses", deficits),
			zap.Int("relaxed_cap", g.relaxation.FacultyDayCap))
		extra, err := g.runRounds(ctx, state, rng, runs, g.relaxation.ExtraRounds, g.relaxation.FacultyDayCap)
		if err != nil {
			return nil, err
		}
		rounds += extra
	}

	result := &Result{
		Engine:         g.Name(),
		FailureReasons: make(map[string]string),
	}

	// Outcomes keep the caller's course order.
	byName := make(map[string]*courseRun, len(runs))
	for _, cr := range runs {
		byName[cr.course.Name] = cr
	}
	for _, c := range courses {
		cr := byName[c.Name]
		outcome := CourseOutcome{
			Course:         c.Name,
			SessionType:    c.SessionType,
			WeeklyTarget:   c.WeeklyTarget,
			ExpectedHours:  c.ExpectedHours(),
			ScheduledHours: cr.scheduledHours,
		}
		if cr.scheduledUnits > c.WeeklyTarget {
			return nil, fmt.Errorf("%w: %q has %d units for target %d",
				ErrOverfill, c.Name, cr.scheduledUnits, c.WeeklyTarget)
		}
		if cr.remaining > 0 {
			outcome.FailureReason = failureReasonFor(cr)
			result.FailureReasons[c.Name] = outcome.FailureReason
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	result.Assignments = append([]Assignment(nil), state.Assignments()...)
	SortAssignments(result.Assignments)
	g.logger.Info("schedule complete",
		zap.Int("courses", len(courses)),
		zap.Int("rounds", rounds),
		zap.Int("assignments", len(result.Assignments)),
		zap.Int("deficit_courses", len(result.FailureReasons)))
	return result, nil
}

func newCourseRun(c Course) *courseRun {
	cr := &courseRun{
		course:     c,
		remaining:  c.WeeklyTarget,
		slotsByDay: make(map[Day][]TimeSlot),
	}
	for _, k := range c.CandidateSlots {
		if len(cr.slotsByDay[k.Day]) == 0 {
			cr.days = append(cr.days, k.Day)
		}
		cr.slotsByDay[k.Day] = append(cr.slotsByDay[k.Day], k.Slot)
	}
	sort.Slice(cr.days, func(i, j int) bool { return cr.days[i] < cr.days[j] })
	denom := len(c.CandidateSlots)
	if denom < 1 {
		denom = 1
	}
	cr.density = float64(c.WeeklyTarget) / float64(denom)
	return cr
}

// runRounds iterates priority order, granting each unsatisfied course one
// unit of progress per round, until a round places nothing or the cap is
// reached. It returns the number of rounds executed.
func (g *GreedyScheduler) runRounds(ctx context.Context, state *State, rng *rand.Rand, runs []*courseRun, maxRounds, dayCap int) (int, error) {
	for round := 1; round <= maxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return round - 1, err
		}
		progress := false
		for _, cr := range runs {
			if cr.remaining <= 0 {
				continue
			}
			placed := false
			if cr.course.SessionType == SessionLab {
				placed = g.placeLabBlock(state, rng, cr, dayCap)
			} else {
				placed = g.placeLecture(state, rng, cr, dayCap)
			}
			if placed {
				cr.remaining--
				cr.scheduledUnits++
				progress = true
			}
		}
		if !progress {
			return round, nil
		}
	}
	return maxRounds, nil
}

// placementScore orders candidates lexicographically: lighter days first,
// then lighter faculty days, then preferred bands, then lower penalty, with
// a small seeded random component breaking exact ties.
type placementScore struct {
	dayLoad     int
	facultyLoad int
	preference  int
	penalty     int
	tiebreak    float64
}

func (s placementScore) less(o placementScore) bool {
	if s.dayLoad != o.dayLoad {
		return s.dayLoad < o.dayLoad
	}
	if s.facultyLoad != o.facultyLoad {
		return s.facultyLoad < o.facultyLoad
	}
	if s.preference != o.preference {
		return s.preference < o.preference
	}
	if s.penalty != o.penalty {
		return s.penalty < o.penalty
	}
	return s.tiebreak < o.tiebreak
}

func (g *GreedyScheduler) scoreCell(state *State, rng *rand.Rand, c Course, day Day, slot TimeSlot) placementScore {
	return placementScore{
		dayLoad:     state.DayLoad(day),
		facultyLoad: state.FacultyDayLoad(c.Faculty, day),
		preference:  PreferenceRank(slot),
		penalty:     g.evaluator.ScorePlacement(state, c, day, slot),
		tiebreak:    rng.Float64() * 0.1,
	}
}

// placeLecture commits the best-scoring surviving candidate cell, or
// reports no progress when every candidate is filtered out.
func (g *GreedyScheduler) placeLecture(state *State, rng *rand.Rand, cr *courseRun, dayCap int) bool {
	c := cr.course
	best := SlotKey{}
	var bestScore placementScore
	found := false

	for _, day := range cr.days {
		if state.FacultyDayLoad(c.Faculty, day) >= dayCap {
			continue
		}
		for _, slot := range cr.slotsByDay[day] {
			if !state.IsAvailable(day, slot, c.Faculty, c.Room) {
				continue
			}
			if state.HasCohortConflict(day, slot, c.ID) {
				continue
			}
			score := g.scoreCell(state, rng, c, day, slot)
			if !found || score.less(bestScore) {
				best = SlotKey{Day: day, Slot: slot}
				bestScore = score
				found = true
			}
		}
	}
	if !found {
		return false
	}

	state.Commit(Assignment{
		Course:        c.Name,
		ID:            c.ID,
		Faculty:       c.Faculty,
		Room:          c.Room,
		Day:           best.Day,
		Slot:          best.Slot,
		DurationHours: 1,
		SessionType:   SessionLecture,
	})
	cr.scheduledHours++
	return true
}

// placeLabBlock commits one contiguous block, every band of which passes
// both predicates individually. Blocks score by their first band and commit
// atomically: all bands or none.
func (g *GreedyScheduler) placeLabBlock(state *State, rng *rand.Rand, cr *courseRun, dayCap int) bool {
	c := cr.course
	blockLen := c.LabBlockLength
	if blockLen <= 0 {
		blockLen = DefaultLabBlockLength
	}

	var bestDay Day
	var bestBlock []TimeSlot
	var bestScore placementScore
	found := false

	for _, day := range cr.days {
		if state.FacultyDayLoad(c.Faculty, day) >= dayCap {
			continue
		}
		slots := cr.slotsByDay[day]
		for i := 0; i+blockLen <= len(slots); i++ {
			segment := slots[i : i+blockLen]
			if !contiguous(segment) {
				continue
			}
			ok := true
			for _, slot := range segment {
				if !state.IsAvailable(day, slot, c.Faculty, c.Room) || state.HasCohortConflict(day, slot, c.ID) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
			score := g.scoreCell(state, rng, c, day, segment[0])
			if !found || score.less(bestScore) {
				bestDay = day
				bestBlock = segment
				bestScore = score
				found = true
			}
		}
	}
	if !found {
		return false
	}

	for _, slot := range bestBlock {
		state.Commit(Assignment{
			Course:        c.Name,
			ID:            c.ID,
			Faculty:       c.Faculty,
			Room:          c.Room,
			Day:           bestDay,
			Slot:          slot,
			DurationHours: blockLen,
			SessionType:   SessionLab,
		})
		cr.scheduledHours++
	}
	return true
}

func contiguous(segment []TimeSlot) bool {
	for j := 1; j < len(segment); j++ {
		if segment[j] != segment[0]+TimeSlot(j) {
			return false
		}
	}
	return true
}

func failureReasonFor(cr *courseRun) string {
	switch {
	case cr.course.SessionType == SessionLab && cr.scheduledUnits == 0:
		return FailureLabNoBlock
	case cr.course.SessionType == SessionLecture && len(cr.course.CandidateSlots) == 0:
		return FailureInsufficientSlots
	default:
		return DeficitReason(cr.scheduledHours, cr.course.ExpectedHours())
	}
}
