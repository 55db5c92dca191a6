package engine

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/sat"
)

// ExactScheduler formulates the week as CNF and delegates to an external
// SAT solver. Hard constraints cover candidate membership, per-course slot
// distinctness, and faculty/room exclusivity. It does not see cohort
// groups, the penalty catalogue, or lab contiguity; callers wanting those
// guarantees run the Validator afterward or use the greedy engine.
type ExactScheduler struct {
	solver sat.Solver
	logger *zap.Logger
}

// NewExactScheduler wraps a solver backend. The solver must already be
// probed; construction does not touch the binary.
func NewExactScheduler(solver sat.Solver, logger *zap.Logger) *ExactScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExactScheduler{solver: solver, logger: logger}
}

// Name identifies the backend in results and metrics.
func (e *ExactScheduler) Name() string { return "exact" }

// placementVar maps one SAT variable back to the session hour it places.
type placementVar struct {
	course int
	unit   int
	slot   SlotKey
}

// Schedule maximizes placed session hours by relaxing as few as possible:
// each unplaced hour costs one relaxation literal, bounded by a sequential
// counter, and the bound grows until the formula satisfies.
func (e *ExactScheduler) Schedule(ctx context.Context, courses []Course) (*Result, error) {
	if e.solver == nil {
		return nil, fmt.Errorf("no sat solver configured")
	}

	formula := &sat.SAT{}
	vars := make([][][]int64, len(courses))
	relax := make([][]int64, len(courses))
	lookup := make(map[int64]placementVar)

	for ci, c := range courses {
		units := sessionUnits(c)
		vars[ci] = make([][]int64, units)
		relax[ci] = make([]int64, units)

		for k := 0; k < units; k++ {
			vars[ci][k] = make([]int64, len(c.CandidateSlots))
			for si, key := range c.CandidateSlots {
				v := formula.NewVar()
				vars[ci][k][si] = v
				lookup[v] = placementVar{course: ci, unit: k, slot: key}
			}

			r := formula.NewVar()
			relax[ci][k] = r

			// Place the unit or spend its relaxation literal.
			formula.AddClause(append([]int64{r}, vars[ci][k]...)...)
			// A relaxed unit stays unplaced.
			for _, v := range vars[ci][k] {
				formula.AddClause(-r, -v)
			}
			// One slot per unit.
			for a := 0; a < len(vars[ci][k]); a++ {
				for b := a + 1; b < len(vars[ci][k]); b++ {
					formula.AddClause(-vars[ci][k][a], -vars[ci][k][b])
				}
			}
		}

		// Units of one course take distinct slots.
		for k1 := 0; k1 < units; k1++ {
			for k2 := k1 + 1; k2 < units; k2++ {
				for si := range c.CandidateSlots {
					formula.AddClause(-vars[ci][k1][si], -vars[ci][k2][si])
				}
			}
		}
	}

	e.addExclusivity(formula, courses, vars)

	relaxAll := lo.Flatten(relax)
	for m := 0; m <= len(relaxAll); m++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		work := sat.SAT{
			Variables: formula.Variables,
			Clauses:   append([][]int64(nil), formula.Clauses...),
		}
		work.AtMostK(relaxAll, m)

		solution, err := e.solver.Solve(work)
		if err != nil {
			return nil, fmt.Errorf("sat solve: %w", err)
		}
		if solution == nil {
			continue
		}

		e.logger.Info("exact solve complete",
			zap.String("solver", e.solver.Name()),
			zap.Int("courses", len(courses)),
			zap.Uint64("variables", work.Variables),
			zap.Int("clauses", len(work.Clauses)),
			zap.Int("relaxed_units", m))
		return e.decode(courses, solution, lookup), nil
	}

	// Unreachable: with every unit relaxed the formula is trivially
	// satisfiable.
	return nil, fmt.Errorf("sat formulation unsatisfiable even fully relaxed")
}

// addExclusivity forbids two courses sharing a faculty or a room from
// occupying the same grid cell.
func (e *ExactScheduler) addExclusivity(formula *sat.SAT, courses []Course, vars [][][]int64) {
	for c1 := 0; c1 < len(courses); c1++ {
		for c2 := c1 + 1; c2 < len(courses); c2++ {
			if courses[c1].Faculty != courses[c2].Faculty && courses[c1].Room != courses[c2].Room {
				continue
			}
			for s1, key1 := range courses[c1].CandidateSlots {
				for s2, key2 := range courses[c2].CandidateSlots {
					if key1 != key2 {
						continue
					}
					for k1 := range vars[c1] {
						for k2 := range vars[c2] {
							formula.AddClause(-vars[c1][k1][s1], -vars[c2][k2][s2])
						}
					}
				}
			}
		}
	}
}

func (e *ExactScheduler) decode(courses []Course, solution sat.Solution, lookup map[int64]placementVar) *Result {
	placed := make([]int, len(courses))
	result := &Result{
		Engine:         e.Name(),
		FailureReasons: make(map[string]string),
	}

	for _, literal := range solution {
		pv, ok := lookup[literal]
		if literal <= 0 || !ok {
			continue
		}
		c := courses[pv.course]
		placed[pv.course]++
		result.Assignments = append(result.Assignments, Assignment{
			Course:        c.Name,
			ID:            c.ID,
			Faculty:       c.Faculty,
			Room:          c.Room,
			Day:           pv.slot.Day,
			Slot:          pv.slot.Slot,
			DurationHours: 1,
			SessionType:   c.SessionType,
		})
	}
	SortAssignments(result.Assignments)

	for ci, c := range courses {
		outcome := CourseOutcome{
			Course:         c.Name,
			SessionType:    c.SessionType,
			WeeklyTarget:   c.WeeklyTarget,
			ExpectedHours:  c.ExpectedHours(),
			ScheduledHours: placed[ci],
		}
		if placed[ci] < sessionUnits(c) {
			switch {
			case c.SessionType == SessionLab && placed[ci] == 0:
				outcome.FailureReason = FailureLabNoBlock
			case c.SessionType == SessionLecture && len(c.CandidateSlots) == 0:
				outcome.FailureReason = FailureInsufficientSlots
			default:
				outcome.FailureReason = DeficitReason(placed[ci], c.ExpectedHours())
			}
			result.FailureReasons[c.Name] = outcome.FailureReason
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result
}

// sessionUnits is the number of one-hour placements the formulation needs:
// lectures place weeklyTarget hours, labs place every block hour without a
// contiguity guarantee.
func sessionUnits(c Course) int {
	if c.SessionType == SessionLab {
		return c.ExpectedHours()
	}
	return c.WeeklyTarget
}
