package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// jsonCourse covers the accepted field spellings. Key matching ignores
// case and underscores, so "weekly_target", "weeklyTarget" and
// "WEEKLYTARGET" all land on WeeklyTarget.
type jsonCourse struct {
	Name                string      `mapstructure:"name"`
	CourseName          string      `mapstructure:"coursename"`
	Faculty             string      `mapstructure:"faculty"`
	Room                string      `mapstructure:"room"`
	RoomAvailable       string      `mapstructure:"roomavailable"`
	SessionType         string      `mapstructure:"sessiontype"`
	WeeklyTarget        int         `mapstructure:"weeklytarget"`
	WeeklyCount         int         `mapstructure:"weeklycount"`
	Duration            int         `mapstructure:"duration"`
	LabBlockLength      int         `mapstructure:"labblocklength"`
	Availability        interface{} `mapstructure:"availability"`
	FacultyAvailability interface{} `mapstructure:"facultyavailability"`
}

// jsonDocument is the envelope form; a bare array is also accepted.
type jsonDocument struct {
	Courses []map[string]interface{} `json:"courses"`
}

// defaultJSONDuration is assumed when a course object carries no target
// field at all.
const defaultJSONDuration = 1

// ParseJSON decodes course objects from either {"courses": [...]} or a
// bare array. Unknown fields produce warnings, not errors.
func ParseJSON(data []byte) ([]Record, []Warning, error) {
	var raw []map[string]interface{}

	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("decode json: %w", err)
		}
	} else {
		var doc jsonDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, nil, fmt.Errorf("decode json: %w", err)
		}
		if doc.Courses == nil {
			return nil, nil, fmt.Errorf("decode json: missing \"courses\" array")
		}
		raw = doc.Courses
	}

	records := make([]Record, 0, len(raw))
	var warnings []Warning
	for i, obj := range raw {
		var row jsonCourse
		var meta mapstructure.Metadata
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &row,
			Metadata:         &meta,
			WeaklyTypedInput: true,
			MatchName: func(mapKey, fieldName string) bool {
				return normalizeKey(mapKey) == normalizeKey(fieldName)
			},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("decode json course %d: %w", i+1, err)
		}
		if err := decoder.Decode(obj); err != nil {
			return nil, nil, fmt.Errorf("decode json course %d: %w", i+1, err)
		}

		rec := Record{
			Name:         firstNonEmpty(row.Name, row.CourseName),
			Faculty:      row.Faculty,
			Room:         firstNonEmpty(row.Room, row.RoomAvailable),
			SessionType:  row.SessionType,
			WeeklyTarget: row.WeeklyTarget,
			WeeklyCount:  row.WeeklyCount,
			Duration:     row.Duration,
			BlockLength:  row.LabBlockLength,
		}
		if rec.Duration <= 0 {
			rec.Duration = defaultJSONDuration
		}

		availability, ok := availabilityTokens(row.Availability)
		if !ok {
			warnings = append(warnings, Warning{Course: rec.Name, Token: "availability", Reason: "expected string or array of strings"})
		}
		if len(availability) == 0 {
			if fallback, ok := availabilityTokens(row.FacultyAvailability); ok {
				availability = fallback
			} else {
				warnings = append(warnings, Warning{Course: rec.Name, Token: "faculty_availability", Reason: "expected string or array of strings"})
			}
		}
		rec.Availability = availability

		for _, key := range meta.Unused {
			warnings = append(warnings, Warning{Course: rec.Name, Token: key, Reason: "unknown field"})
		}
		records = append(records, rec)
	}
	return records, warnings, nil
}

// availabilityTokens coerces a decoded availability value into its token
// strings. It accepts a single string or an array of strings.
func availabilityTokens(v interface{}) ([]string, bool) {
	switch value := v.(type) {
	case nil:
		return nil, true
	case string:
		if strings.TrimSpace(value) == "" {
			return nil, true
		}
		return []string{value}, true
	case []string:
		return value, true
	case []interface{}:
		tokens := make([]string, 0, len(value))
		for _, item := range value {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			tokens = append(tokens, s)
		}
		return tokens, true
	default:
		return nil, false
	}
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "_", "")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
