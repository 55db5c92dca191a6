package sat

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const kissatPath = "kissat"

type kissatSolver struct {
	timeout time.Duration
}

// NewKissatSolver wraps the kissat binary on PATH. A positive timeout
// kills runs that exceed it.
func NewKissatSolver(timeout time.Duration) Solver {
	return &kissatSolver{timeout: timeout}
}

func (solver *kissatSolver) Name() string { return "kissat" }

func (solver *kissatSolver) Solve(instance SAT) (Solution, error) {
	ctx := context.Background()
	if solver.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, solver.timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, kissatPath, "-q", "--relaxed")
	cmd.Stdin = strings.NewReader(instance.ToDIMACS())

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Exit code 10 stands for satisfiable, 20 for unsatisfiable.
	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("kissat timed out after %s", solver.timeout)
	}
	if cmd.ProcessState == nil {
		return nil, fmt.Errorf("kissat did not start: %w", err)
	}
	switch code := cmd.ProcessState.ExitCode(); {
	case code == 20:
		return nil, nil
	case code != 10:
		return nil, fmt.Errorf("kissat execution failed: %v: %s", err, stderr.String())
	}
	return parseSolution(stdout.String())
}
