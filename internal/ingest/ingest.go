// Package ingest turns raw course data (CSV or JSON) into fully defaulted
// engine courses. Every defaulting rule lives here: the engine never
// branches on absent fields.
package ingest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/noah-isme/timetable-api/internal/engine"
)

// Format names a supported input encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Record is one raw course row before defaulting. Zero values mean the
// field was absent from the input.
type Record struct {
	Name         string
	Faculty      string
	Room         string
	SessionType  string
	WeeklyTarget int
	WeeklyCount  int
	Duration     int
	BlockLength  int
	Availability []string
}

// Warning is a recoverable ingestion problem tied to one course.
type Warning struct {
	Course string `json:"course"`
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %q: %s", w.Course, w.Token, w.Reason)
}

// Load reads the file at path, autodetects its format, and builds the
// course list.
func Load(path string) ([]engine.Course, []Warning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}
	return Parse(data, DetectFormat(path, data))
}

// Parse decodes data in the given format and builds the course list.
func Parse(data []byte, format Format) ([]engine.Course, []Warning, error) {
	var (
		records  []Record
		warnings []Warning
		err      error
	)
	switch format {
	case FormatJSON:
		records, warnings, err = ParseJSON(data)
	case FormatCSV:
		records, warnings, err = ParseCSV(bytes.NewReader(data))
	default:
		return nil, nil, fmt.Errorf("unsupported input format %q", format)
	}
	if err != nil {
		return nil, nil, err
	}

	courses, buildWarnings, err := Build(records)
	if err != nil {
		return nil, nil, err
	}
	return courses, append(warnings, buildWarnings...), nil
}

// DetectFormat picks a format from the file extension, falling back to
// content sniffing: JSON documents open with an object or array.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatCSV
}

// Build applies the full defaulting pass and produces engine courses in
// input order. Rows describing components of one base course stay distinct
// Courses; their shared identity is carried by CourseID.BaseName.
//
// Weekly targets resolve in priority order: an explicit weeklyTarget, then
// weeklyCount, then duration. Duration counts weekly hours, so a lab
// converts it to whole blocks.
func Build(records []Record) ([]engine.Course, []Warning, error) {
	courses := make([]engine.Course, 0, len(records))
	var warnings []Warning
	seen := make(map[string]bool, len(records))

	for i, rec := range records {
		name := strings.TrimSpace(rec.Name)
		if name == "" {
			return nil, nil, fmt.Errorf("course %d: name is required", i+1)
		}
		if seen[name] {
			return nil, nil, fmt.Errorf("course %d: duplicate course name %q", i+1, name)
		}
		seen[name] = true

		faculty := strings.TrimSpace(rec.Faculty)
		if faculty == "" {
			return nil, nil, fmt.Errorf("course %q: faculty is required", name)
		}
		room := strings.TrimSpace(rec.Room)
		if room == "" {
			return nil, nil, fmt.Errorf("course %q: room is required", name)
		}

		id := engine.ParseCourseID(name)
		sessionType, w := resolveSessionType(name, rec.SessionType, id)
		if w != nil {
			warnings = append(warnings, *w)
		}

		blockLength := rec.BlockLength
		if blockLength <= 0 {
			blockLength = engine.DefaultLabBlockLength
		}

		target := rec.WeeklyTarget
		if target <= 0 {
			target = rec.WeeklyCount
		}
		if target <= 0 {
			target = rec.Duration
			// Lab durations count weekly hours, targets count blocks.
			if sessionType == engine.SessionLab && target > 0 {
				target = (target + blockLength - 1) / blockLength
			}
		}
		if target <= 0 {
			target = 1
		}

		slots, parseWarnings := engine.ResolveAvailability(rec.Availability...)
		for _, pw := range parseWarnings {
			warnings = append(warnings, Warning{Course: name, Token: pw.Token, Reason: pw.Reason})
		}

		courses = append(courses, engine.Course{
			Name:           name,
			ID:             id,
			Faculty:        faculty,
			Room:           room,
			SessionType:    sessionType,
			WeeklyTarget:   target,
			LabBlockLength: blockLength,
			CandidateSlots: slots,
		})
	}
	return courses, warnings, nil
}

// resolveSessionType prefers an explicit value and otherwise infers a lab
// from the course name's "(Lab)" qualifier.
func resolveSessionType(course, explicit string, id engine.CourseID) (engine.SessionType, *Warning) {
	cleaned := engine.SessionType(strings.ToLower(strings.TrimSpace(explicit)))
	if cleaned.Valid() {
		return cleaned, nil
	}

	var warning *Warning
	if cleaned != "" {
		warning = &Warning{Course: course, Token: explicit, Reason: "unknown session type"}
	}
	if strings.Contains(id.Component, "lab") {
		return engine.SessionLab, warning
	}
	return engine.SessionLecture, warning
}
