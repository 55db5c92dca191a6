// Package engine implements the weekly timetabling core: availability
// resolution, occupancy tracking, the greedy placement engine with bounded
// relaxation, the soft-constraint evaluator, the post-hoc validator and the
// SAT-backed exact engine. One run owns its state exclusively; callers that
// serve concurrent requests run independent engine instances.
package engine

import (
	"context"
	"errors"
)

// Engine produces a weekly timetable for a set of resolved courses. Both
// backends honor the same contract: a best-effort assignment list plus
// per-course diagnostics, never an abort because one course cannot be
// placed.
type Engine interface {
	Name() string
	Schedule(ctx context.Context, courses []Course) (*Result, error)
}

// ErrOverfill marks a run that scheduled a course beyond its weekly target.
// It signals a defect in commit discipline, not an input problem.
var ErrOverfill = errors.New("course scheduled beyond weekly target")
