package engine

import "sort"

// Conflict pinpoints one double-booked resource in one grid cell.
type Conflict struct {
	Day      string   `json:"day"`
	Slot     string   `json:"slot"`
	Resource string   `json:"resource"`
	Courses  []string `json:"courses"`
}

// ConflictReport is the validator's verdict over a finished assignment
// list.
type ConflictReport struct {
	FacultyConflicts []Conflict `json:"faculty_conflicts"`
	RoomConflicts    []Conflict `json:"room_conflicts"`
	CohortConflicts  []Conflict `json:"cohort_conflicts"`
	TotalCount       int        `json:"total_count"`
}

// Clean reports whether every check passed.
func (r ConflictReport) Clean() bool { return r.TotalCount == 0 }

// Validator re-checks a finished timetable independently of the commit-time
// predicates. A correct greedy run always validates clean; the check exists
// to catch engines and manual edits that bypass State.
type Validator struct {
	cohorts *CohortRegistry
}

// NewValidator builds a validator. A nil registry falls back to the stock
// cohort groups.
func NewValidator(cohorts *CohortRegistry) *Validator {
	if cohorts == nil {
		cohorts = NewCohortRegistry(DefaultCohortGroups())
	}
	return &Validator{cohorts: cohorts}
}

// Validate groups assignments by grid cell and reports every faculty,
// room, and cohort double-booking it finds.
func (v *Validator) Validate(assignments []Assignment) ConflictReport {
	byKey := make(map[SlotKey][]Assignment)
	var keys []SlotKey
	for _, a := range assignments {
		key := SlotKey{Day: a.Day, Slot: a.Slot}
		if len(byKey[key]) == 0 {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], a)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	var report ConflictReport
	for _, key := range keys {
		cell := byKey[key]
		if len(cell) < 2 {
			continue
		}
		report.FacultyConflicts = append(report.FacultyConflicts,
			duplicatesAt(key, cell, func(a Assignment) string { return a.Faculty })...)
		report.RoomConflicts = append(report.RoomConflicts,
			duplicatesAt(key, cell, func(a Assignment) string { return a.Room })...)
		report.CohortConflicts = append(report.CohortConflicts, v.cohortClashesAt(key, cell)...)
	}
	report.TotalCount = len(report.FacultyConflicts) + len(report.RoomConflicts) + len(report.CohortConflicts)
	return report
}

// duplicatesAt reports one conflict per resource value booked more than
// once in the cell.
func duplicatesAt(key SlotKey, cell []Assignment, resource func(Assignment) string) []Conflict {
	grouped := make(map[string][]string)
	var order []string
	for _, a := range cell {
		r := resource(a)
		if len(grouped[r]) == 0 {
			order = append(order, r)
		}
		grouped[r] = append(grouped[r], a.Course)
	}

	var out []Conflict
	for _, r := range order {
		if len(grouped[r]) > 1 {
			out = append(out, Conflict{
				Day:      key.Day.String(),
				Slot:     key.Slot.String(),
				Resource: r,
				Courses:  grouped[r],
			})
		}
	}
	return out
}

// cohortClashesAt reports one conflict per unordered pair of cell
// occupants whose base names share a cohort group.
func (v *Validator) cohortClashesAt(key SlotKey, cell []Assignment) []Conflict {
	var out []Conflict
	for i := 0; i < len(cell); i++ {
		for j := i + 1; j < len(cell); j++ {
			if !v.cohorts.SharesCohort(cell[i].ID.BaseName, cell[j].ID.BaseName) {
				continue
			}
			out = append(out, Conflict{
				Day:      key.Day.String(),
				Slot:     key.Slot.String(),
				Resource: "cohort",
				Courses:  []string{cell[i].Course, cell[j].Course},
			})
		}
	}
	return out
}
