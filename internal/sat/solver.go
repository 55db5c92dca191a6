package sat

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Solver runs one CNF formula through a backend binary. A nil Solution
// with a nil error means the formula is unsatisfiable.
type Solver interface {
	Name() string
	Solve(SAT) (Solution, error)
}

// NewSolver picks a backend by name, failing fast when the binary is not
// installed so callers can fall back before accepting work. A positive
// timeout bounds each solver process; zero leaves runs unbounded.
func NewSolver(backend string, timeout time.Duration) (Solver, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", "kissat":
		if _, err := exec.LookPath(kissatPath); err != nil {
			return nil, fmt.Errorf("kissat binary not found: %w", err)
		}
		return NewKissatSolver(timeout), nil
	case "cadical":
		if _, err := exec.LookPath(cadicalPath); err != nil {
			return nil, fmt.Errorf("cadical binary not found: %w", err)
		}
		return NewCadicalSolver(timeout), nil
	default:
		return nil, fmt.Errorf("unknown sat backend %q", backend)
	}
}

// parseSolution extracts the assignment from a solver's DIMACS output. The
// value block spans every "v " line and terminates with a lone 0.
func parseSolution(output string) (Solution, error) {
	var solution Solution
	seen := false
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "v") {
			continue
		}
		seen = true
		for _, field := range strings.Fields(line[1:]) {
			value, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid literal %q in solver output: %w", field, err)
			}
			if value == 0 {
				return solution, nil
			}
			solution = append(solution, value)
		}
	}
	if !seen {
		return nil, errors.New("no value lines in solver output")
	}
	return solution, nil
}
