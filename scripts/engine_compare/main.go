package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noah-isme/timetable-api/internal/engine"
	"github.com/noah-isme/timetable-api/internal/ingest"
	"github.com/noah-isme/timetable-api/internal/sat"
)

type comparison struct {
	Engine       string
	Duration     time.Duration
	Stats        engine.Statistics
	Conflicts    int
	Penalty      int
	Rating       string
	FailureCount int
	Error        error
}

func main() {
	var (
		inputPath string
		seed      int64
		backend   string
		timeout   time.Duration
	)

	flag.StringVar(&inputPath, "input", "", "Course list file, CSV or JSON")
	flag.Int64Var(&seed, "seed", 0, "Deterministic seed for the greedy engine")
	flag.StringVar(&backend, "solver", "kissat", "SAT backend for the exact engine")
	flag.DurationVar(&timeout, "timeout", 60*time.Second, "Per-engine run timeout")
	flag.Parse()

	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "missing -input file")
		flag.Usage()
		os.Exit(1)
	}

	courses, warnings, err := ingest.Load(inputPath)
	if err != nil {
		log.Fatalf("failed to load courses: %v", err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	engines := []engine.Engine{
		engine.NewGreedyScheduler(engine.GreedyOptions{Seed: seed}),
	}
	if solver, err := sat.NewSolver(backend, timeout); err == nil {
		engines = append(engines, engine.NewExactScheduler(solver, nil))
	} else {
		fmt.Fprintf(os.Stderr, "exact engine skipped: %v\n", err)
	}

	var (
		comparisons []comparison
		failed      int
	)
	for _, eng := range engines {
		comp := runEngine(eng, courses, timeout)
		if comp.Error != nil {
			failed++
		}
		comparisons = append(comparisons, comp)
	}

	printReport(comparisons)
	if failed > 0 {
		os.Exit(1)
	}
}

func runEngine(eng engine.Engine, courses []engine.Course, timeout time.Duration) comparison {
	comp := comparison{Engine: eng.Name()}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	result, err := eng.Schedule(ctx, courses)
	comp.Duration = time.Since(start)
	if err != nil {
		comp.Error = err
		return comp
	}

	comp.Stats = engine.BuildStatistics(result)
	comp.Conflicts = engine.NewValidator(nil).Validate(result.Assignments).TotalCount
	report := engine.NewEvaluator(nil).Report(result.Assignments)
	comp.Penalty = report.TotalPenalty
	comp.Rating = report.QualityRating
	comp.FailureCount = len(result.FailureReasons)
	return comp
}

func printReport(results []comparison) {
	fmt.Println("Engine Compare Report")
	fmt.Println("=====================")
	for _, res := range results {
		status := "OK"
		if res.Error != nil {
			status = "ERROR"
		} else if res.FailureCount > 0 {
			status = "DEFICIT"
		}
		fmt.Printf("[%s] %s (%s)\n", status, res.Engine, res.Duration)
		if res.Error != nil {
			fmt.Printf("  Error: %v\n", res.Error)
			continue
		}
		fmt.Printf("  Coverage: %.1f%% (%d/%d hours) | Satisfied: %d/%d\n",
			res.Stats.CoveragePercent, res.Stats.ScheduledHours, res.Stats.ExpectedHours,
			res.Stats.FullySatisfied, res.Stats.TotalCourses)
		fmt.Printf("  Conflicts: %d | Penalty: %d (%s) | Unmet targets: %d\n",
			res.Conflicts, res.Penalty, res.Rating, res.FailureCount)
	}

	if len(results) == 2 && results[0].Error == nil && results[1].Error == nil {
		fmt.Printf("Coverage delta: %+.1f%% | Conflict delta: %+d | Penalty delta: %+d\n",
			results[1].Stats.CoveragePercent-results[0].Stats.CoveragePercent,
			results[1].Conflicts-results[0].Conflicts,
			results[1].Penalty-results[0].Penalty)
	}
}
