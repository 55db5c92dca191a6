package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/timetable-api/internal/engine"
	"github.com/noah-isme/timetable-api/internal/ingest"
	"github.com/noah-isme/timetable-api/internal/sat"
	"github.com/noah-isme/timetable-api/pkg/export"
)

const (
	exitFull    = 0
	exitDeficit = 1
	exitInput   = 2
)

func main() {
	var (
		inputPath     string
		engineName    string
		seed          int64
		backend       string
		solverTimeout time.Duration
		output        string
		outDir        string
	)

	flag.StringVar(&inputPath, "input", "", "Course list file, CSV or JSON (format detected by extension)")
	flag.StringVar(&engineName, "engine", "greedy", `Scheduling engine: "greedy" or "exact"`)
	flag.Int64Var(&seed, "seed", 0, "Deterministic seed for the greedy engine")
	flag.StringVar(&backend, "solver", "kissat", `SAT backend for the exact engine: "kissat" or "cadical"`)
	flag.DurationVar(&solverTimeout, "solver-timeout", 30*time.Second, "Per-call limit for the SAT backend, 0 for unbounded")
	flag.StringVar(&output, "output", "text", `Output format: "text", "csv", "pdf" or "json"`)
	flag.StringVar(&outDir, "dir", ".", "Directory for csv/pdf/json output files")
	flag.Parse()

	if inputPath == "" {
		fmt.Fprintln(os.Stderr, "missing -input file")
		flag.Usage()
		os.Exit(exitInput)
	}

	courses, warnings, err := ingest.Load(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load %s: %v\n", inputPath, err)
		os.Exit(exitInput)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	eng, err := buildEngine(engineName, seed, backend, solverTimeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(exitInput)
	}

	result, err := eng.Schedule(context.Background(), courses)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scheduling failed: %v\n", err)
		os.Exit(exitInput)
	}
	engine.SortAssignments(result.Assignments)

	conflicts := engine.NewValidator(nil).Validate(result.Assignments)
	penalty := engine.NewEvaluator(nil).Report(result.Assignments)
	stats := engine.BuildStatistics(result)

	switch output {
	case "text":
		printTimetable(result, stats, conflicts, penalty, seed)
	case "csv", "pdf", "json":
		if err := writeFile(output, outDir, result, stats, conflicts, penalty, seed); err != nil {
			fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
			os.Exit(exitInput)
		}
	default:
		fmt.Fprintf(os.Stderr, "unsupported output format %q\n", output)
		os.Exit(exitInput)
	}

	if stats.ScheduledHours < stats.ExpectedHours || len(result.FailureReasons) > 0 {
		os.Exit(exitDeficit)
	}
	os.Exit(exitFull)
}

// buildEngine picks the scheduler. An exact request with no usable SAT
// binary falls back to greedy, mirroring the server's startup behavior.
func buildEngine(name string, seed int64, backend string, solverTimeout time.Duration) (engine.Engine, error) {
	switch name {
	case "greedy":
		return engine.NewGreedyScheduler(engine.GreedyOptions{Seed: seed}), nil
	case "exact":
		solver, err := sat.NewSolver(backend, solverTimeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: exact engine unavailable (%v), using greedy\n", err)
			return engine.NewGreedyScheduler(engine.GreedyOptions{Seed: seed}), nil
		}
		return engine.NewExactScheduler(solver, nil), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
}

func printTimetable(result *engine.Result, stats engine.Statistics, conflicts engine.ConflictReport, penalty engine.PenaltyReport, seed int64) {
	fmt.Printf("Weekly Timetable (%s, seed %d)\n", result.Engine, seed)
	fmt.Println("==============================")

	grid := result.Timetable()
	for _, day := range engine.Days {
		fmt.Printf("\n%s\n", strings.ToUpper(day.String()))
		placed := false
		for slot := engine.TimeSlot(0); slot < engine.SlotsPerDay; slot++ {
			cell := grid[day][slot]
			if len(cell) == 0 {
				continue
			}
			placed = true
			for _, a := range cell {
				fmt.Printf("  %s  %s [%s, %s]\n", slot, a.Course, a.Faculty, a.Room)
			}
		}
		if !placed {
			fmt.Println("  no classes scheduled")
		}
	}

	fmt.Printf("\nCoverage: %.1f%% (%d/%d hours), %d/%d courses fully satisfied\n",
		stats.CoveragePercent, stats.ScheduledHours, stats.ExpectedHours,
		stats.FullySatisfied, stats.TotalCourses)
	fmt.Printf("Conflicts: %d\n", conflicts.TotalCount)
	fmt.Printf("Quality: %s (penalty %d)\n", penalty.QualityRating, penalty.TotalPenalty)

	if len(result.FailureReasons) > 0 {
		fmt.Println("\nUnmet targets:")
		names := make([]string, 0, len(result.FailureReasons))
		for name := range result.FailureReasons {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: %s\n", name, result.FailureReasons[name])
		}
	}
}

func writeFile(format, dir string, result *engine.Result, stats engine.Statistics, conflicts engine.ConflictReport, penalty engine.PenaltyReport, seed int64) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case "csv":
		data, err = export.NewCSVExporter().Render(buildDataset(result, stats, penalty, seed))
	case "pdf":
		data, err = export.NewPDFExporter().Render(buildDataset(result, stats, penalty, seed))
	case "json":
		data, err = json.MarshalIndent(buildReport(result, stats, conflicts, penalty, seed), "", "  ")
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("timetable_%s.%s", time.Now().Format("20060102_150405"), format))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("Exported output to: %s\n", path)
	return nil
}

func buildDataset(result *engine.Result, stats engine.Statistics, penalty engine.PenaltyReport, seed int64) export.Dataset {
	headers := make([]string, 0, len(engine.Days)+1)
	headers = append(headers, "Time")
	for _, day := range engine.Days {
		headers = append(headers, day.String())
	}

	grid := result.Timetable()
	rows := make([]map[string]string, 0, engine.SlotsPerDay)
	for slot := engine.TimeSlot(0); slot < engine.SlotsPerDay; slot++ {
		row := map[string]string{"Time": slot.String()}
		for _, day := range engine.Days {
			var cells []string
			for _, a := range grid[day][slot] {
				cells = append(cells, fmt.Sprintf("%s [%s, %s]", a.Course, a.Faculty, a.Room))
			}
			sort.Strings(cells)
			row[day.String()] = strings.Join(cells, "; ")
		}
		rows = append(rows, row)
	}

	return export.Dataset{
		Title: "Weekly Timetable",
		Meta: []string{
			fmt.Sprintf("Engine %s seed %d", result.Engine, seed),
			fmt.Sprintf("Coverage %.1f%% (%d/%d hours)", stats.CoveragePercent, stats.ScheduledHours, stats.ExpectedHours),
			fmt.Sprintf("Quality %s (penalty %d)", penalty.QualityRating, penalty.TotalPenalty),
		},
		Headers: headers,
		Rows:    rows,
	}
}

type runReport struct {
	Engine         string                                    `json:"engine"`
	Seed           int64                                     `json:"seed"`
	GeneratedAt    time.Time                                 `json:"generated_at"`
	Timetable      map[string]map[string][]engine.Assignment `json:"timetable"`
	Outcomes       []engine.CourseOutcome                    `json:"outcomes"`
	FailureReasons map[string]string                         `json:"failure_reasons,omitempty"`
	Conflicts      engine.ConflictReport                     `json:"conflicts"`
	Penalty        engine.PenaltyReport                      `json:"penalty"`
	Statistics     engine.Statistics                         `json:"statistics"`
}

func buildReport(result *engine.Result, stats engine.Statistics, conflicts engine.ConflictReport, penalty engine.PenaltyReport, seed int64) runReport {
	timetable := make(map[string]map[string][]engine.Assignment, len(engine.Days))
	for day, slots := range result.Timetable() {
		cells := make(map[string][]engine.Assignment)
		for slot, assignments := range slots {
			if len(assignments) == 0 {
				continue
			}
			cells[slot.String()] = assignments
		}
		timetable[day.String()] = cells
	}

	return runReport{
		Engine:         result.Engine,
		Seed:           seed,
		GeneratedAt:    time.Now().UTC(),
		Timetable:      timetable,
		Outcomes:       result.Outcomes,
		FailureReasons: result.FailureReasons,
		Conflicts:      conflicts,
		Penalty:        penalty,
		Statistics:     stats,
	}
}
