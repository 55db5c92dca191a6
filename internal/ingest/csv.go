package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
)

// defaultCSVDuration is assumed when a row leaves the Duration column
// blank: two weekly hours.
const defaultCSVDuration = 2

// csvRow mirrors the expected CSV header. Duration stays a string so a
// blank cell is distinguishable from zero.
type csvRow struct {
	CourseName          string `csv:"CourseName"`
	Faculty             string `csv:"Faculty"`
	RoomAvailable       string `csv:"RoomAvailable"`
	SessionType         string `csv:"SessionType,omitempty"`
	Duration            string `csv:"Duration,omitempty"`
	WeeklyTarget        string `csv:"WeeklyTarget,omitempty"`
	FacultyAvailability string `csv:"FacultyAvailability"`
}

// ParseCSV decodes course rows from r. The availability column accepts
// tokens separated by commas or semicolons.
func ParseCSV(r io.Reader) ([]Record, []Warning, error) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		reader := csv.NewReader(in)
		reader.TrimLeadingSpace = true
		reader.LazyQuotes = true
		return reader
	})

	var rows []csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, fmt.Errorf("decode csv: %w", err)
	}

	records := make([]Record, 0, len(rows))
	var warnings []Warning
	for _, row := range rows {
		rec := Record{
			Name:        strings.TrimSpace(row.CourseName),
			Faculty:     strings.TrimSpace(row.Faculty),
			Room:        strings.TrimSpace(row.RoomAvailable),
			SessionType: row.SessionType,
			Duration:    defaultCSVDuration,
		}
		if rec.Name == "" && rec.Faculty == "" && rec.Room == "" {
			continue
		}

		if v, w := parseCSVInt(rec.Name, "Duration", row.Duration); w != nil {
			warnings = append(warnings, *w)
		} else if v > 0 {
			rec.Duration = v
		}
		if v, w := parseCSVInt(rec.Name, "WeeklyTarget", row.WeeklyTarget); w != nil {
			warnings = append(warnings, *w)
		} else {
			rec.WeeklyTarget = v
		}

		availability := strings.ReplaceAll(row.FacultyAvailability, ";", ",")
		if strings.TrimSpace(availability) != "" {
			rec.Availability = []string{availability}
		}
		records = append(records, rec)
	}
	return records, warnings, nil
}

// parseCSVInt reads a numeric cell, treating a blank as absent and a
// malformed value as a warning.
func parseCSVInt(course, column, cell string) (int, *Warning) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(cell)
	if err != nil || v < 0 {
		return 0, &Warning{Course: course, Token: cell, Reason: fmt.Sprintf("invalid %s value", column)}
	}
	return v, nil
}
