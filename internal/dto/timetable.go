package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// StringList accepts either a single string or an array of strings, since
// availability shows up both ways in course payloads.
type StringList []string

// UnmarshalJSON implements the dual form.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = nil
			return nil
		}
		*s = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("availability must be a string or an array of strings")
	}
	*s = StringList(many)
	return nil
}

// CourseRequest is one course in a scheduling payload. weeklyTarget wins
// over weeklyCount, which wins over duration (weekly hours).
type CourseRequest struct {
	Name           string     `json:"name" validate:"required"`
	Faculty        string     `json:"faculty" validate:"required"`
	Room           string     `json:"room" validate:"required"`
	SessionType    string     `json:"sessionType" validate:"omitempty,oneof=lecture lab"`
	WeeklyTarget   int        `json:"weeklyTarget" validate:"omitempty,min=1,max=8"`
	WeeklyCount    int        `json:"weeklyCount" validate:"omitempty,min=1,max=8"`
	Duration       int        `json:"duration" validate:"omitempty,min=1,max=16"`
	LabBlockLength int        `json:"labBlockLength" validate:"omitempty,min=1,max=4"`
	Availability   StringList `json:"availability"`
}

// GenerateTimetableRequest asks for a full scheduling run.
type GenerateTimetableRequest struct {
	Courses []CourseRequest `json:"courses" validate:"required,min=1,max=128,dive"`
	Engine  string          `json:"engine" validate:"omitempty,oneof=greedy exact"`
	Seed    *int64          `json:"seed"`
}

// ValidateCoursesRequest checks a course list without solving.
type ValidateCoursesRequest struct {
	Courses []CourseRequest `json:"courses" validate:"required,min=1,max=128"`
}

// CourseIssue is one blocking problem found during validation.
type CourseIssue struct {
	Course  string `json:"course"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// WarningResponse is a non-blocking ingestion or validation note. Course
// is empty for notes about a shared resource such as an overloaded faculty.
type WarningResponse struct {
	Course string `json:"course,omitempty"`
	Token  string `json:"token,omitempty"`
	Reason string `json:"reason"`
}

// ValidateCoursesResponse reports validation findings.
type ValidateCoursesResponse struct {
	Valid    bool              `json:"valid"`
	Issues   []CourseIssue     `json:"issues"`
	Warnings []WarningResponse `json:"warnings"`
}

// AssignmentResponse is one scheduled hour in the grid.
type AssignmentResponse struct {
	Course        string `json:"course"`
	SessionType   string `json:"sessionType"`
	Day           string `json:"day"`
	Slot          string `json:"slot"`
	Faculty       string `json:"faculty"`
	Room          string `json:"room"`
	DurationHours int    `json:"durationHours"`
}

// CourseOutcomeResponse reports how one course fared.
type CourseOutcomeResponse struct {
	Course         string `json:"course"`
	SessionType    string `json:"sessionType"`
	WeeklyTarget   int    `json:"weeklyTarget"`
	ExpectedHours  int    `json:"expectedHours"`
	ScheduledHours int    `json:"scheduledHours"`
	FailureReason  string `json:"failureReason,omitempty"`
}

// ConflictResponse names the courses clashing over one resource in a cell.
type ConflictResponse struct {
	Day      string   `json:"day"`
	Slot     string   `json:"slot"`
	Resource string   `json:"resource"`
	Courses  []string `json:"courses"`
}

// ConflictReportResponse groups hard-constraint violations by kind.
type ConflictReportResponse struct {
	FacultyConflicts []ConflictResponse `json:"facultyConflicts"`
	RoomConflicts    []ConflictResponse `json:"roomConflicts"`
	CohortConflicts  []ConflictResponse `json:"cohortConflicts"`
	TotalCount       int                `json:"totalCount"`
}

// PenaltyResponse is the soft-constraint accounting.
type PenaltyResponse struct {
	Breakdown     map[string]int `json:"breakdown"`
	TotalPenalty  int            `json:"totalPenalty"`
	QualityRating string         `json:"qualityRating"`
}

// StatisticsResponse summarizes a run.
type StatisticsResponse struct {
	TotalCourses    int     `json:"totalCourses"`
	FullySatisfied  int     `json:"fullySatisfied"`
	ExpectedHours   int     `json:"expectedHours"`
	ScheduledHours  int     `json:"scheduledHours"`
	CoveragePercent float64 `json:"coveragePercent"`
	DaysUtilized    int     `json:"daysUtilized"`
	FacultyCount    int     `json:"facultyCount"`
	RoomCount       int     `json:"roomCount"`
}

// SampleResponse documents the scheduling payload for API consumers.
type SampleResponse struct {
	Sample            GenerateTimetableRequest `json:"sample"`
	FieldDescriptions map[string]string        `json:"fieldDescriptions"`
	Days              []string                 `json:"days"`
	Slots             []string                 `json:"slots"`
}

// GenerateTimetableResponse is the full result of a run, also the payload
// stored for later retrieval by result id.
type GenerateTimetableResponse struct {
	ResultID       string                                      `json:"resultId"`
	Engine         string                                      `json:"engine"`
	GeneratedAt    time.Time                                   `json:"generatedAt"`
	Timetable      map[string]map[string][]AssignmentResponse  `json:"timetable"`
	Outcomes       []CourseOutcomeResponse                     `json:"outcomes"`
	FailureReasons map[string]string                           `json:"failureReasons,omitempty"`
	Conflicts      ConflictReportResponse                      `json:"conflicts"`
	Penalty        PenaltyResponse                             `json:"penalty"`
	Statistics     StatisticsResponse                          `json:"statistics"`
	Warnings       []WarningResponse                           `json:"warnings,omitempty"`
}
