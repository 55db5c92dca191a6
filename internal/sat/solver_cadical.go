package sat

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const cadicalPath = "cadical"

type cadicalSolver struct {
	timeout time.Duration
}

// NewCadicalSolver wraps the cadical binary on PATH. A positive timeout
// kills runs that exceed it.
func NewCadicalSolver(timeout time.Duration) Solver {
	return &cadicalSolver{timeout: timeout}
}

func (solver *cadicalSolver) Name() string { return "cadical" }

func (solver *cadicalSolver) Solve(instance SAT) (Solution, error) {
	ctx := context.Background()
	if solver.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, solver.timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, cadicalPath, "-q")
	cmd.Stdin = strings.NewReader(instance.ToDIMACS())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Exit code 10 stands for satisfiable, 20 for unsatisfiable.
	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("cadical timed out after %s", solver.timeout)
	}
	if cmd.ProcessState == nil {
		return nil, fmt.Errorf("cadical did not start: %w", err)
	}
	switch code := cmd.ProcessState.ExitCode(); {
	case code == 20:
		return nil, nil
	case code != 10:
		return nil, fmt.Errorf("cadical execution failed: %v: %s", err, stderr.String())
	}
	return parseSolution(stdout.String())
}
