package engine

import "strings"

// SessionType distinguishes single-hour lecture sessions from contiguous
// lab blocks.
type SessionType string

const (
	SessionLecture SessionType = "lecture"
	SessionLab     SessionType = "lab"
)

// Valid reports whether t is a known session type.
func (t SessionType) Valid() bool {
	return t == SessionLecture || t == SessionLab
}

// DefaultLabBlockLength is the number of contiguous bands a lab block
// occupies when the input does not say otherwise.
const DefaultLabBlockLength = 2

// CourseID carries a course's identity structurally: the shared base name
// plus the component qualifier ("lecture", "lab", or empty). Two IDs with
// equal BaseName are the same logical course for cohort purposes even when
// their components differ.
type CourseID struct {
	BaseName  string
	Component string
}

// ParseCourseID splits a display name such as "Physics (Lab)" into its
// structural identity. The base name is normalized to lower case with the
// parenthesised qualifier removed.
func ParseCourseID(name string) CourseID {
	n := strings.ToLower(strings.TrimSpace(name))
	component := ""
	if open := strings.Index(n, "("); open >= 0 && strings.Contains(n[open:], ")") {
		end := strings.Index(n[open:], ")") + open
		component = strings.TrimSpace(n[open+1 : end])
		n = strings.TrimSpace(n[:open])
	}
	return CourseID{BaseName: n, Component: component}
}

// NormalizeBaseName reduces a display name to the base used for cohort and
// per-day multiplicity comparison.
func NormalizeBaseName(name string) string {
	return ParseCourseID(name).BaseName
}

// Course is one teaching unit requiring repeated weekly placement. All
// defaulting happens at the ingestion boundary; the engine never branches
// on absent fields.
type Course struct {
	Name           string
	ID             CourseID
	Faculty        string
	Room           string
	SessionType    SessionType
	WeeklyTarget   int
	LabBlockLength int
	// CandidateSlots is sorted by day then band and holds no duplicates.
	CandidateSlots []SlotKey
}

// ExpectedHours translates the weekly target into occupied grid hours:
// lectures count sessions, labs count block length per block.
func (c Course) ExpectedHours() int {
	if c.SessionType == SessionLab {
		return c.WeeklyTarget * c.LabBlockLength
	}
	return c.WeeklyTarget
}

// CohortRegistry answers whether two base names share a student
// population. Groups are used only for conflict detection, never for
// resource booking.
type CohortRegistry struct {
	groups map[string][]string
	member map[string]map[string]bool
}

// NewCohortRegistry builds a registry from named groups of base names.
// Names are normalized on the way in.
func NewCohortRegistry(groups map[string][]string) *CohortRegistry {
	r := &CohortRegistry{
		groups: make(map[string][]string, len(groups)),
		member: make(map[string]map[string]bool, len(groups)),
	}
	for name, bases := range groups {
		normalized := make([]string, 0, len(bases))
		members := make(map[string]bool, len(bases))
		for _, b := range bases {
			nb := NormalizeBaseName(b)
			normalized = append(normalized, nb)
			members[nb] = true
		}
		r.groups[name] = normalized
		r.member[name] = members
	}
	return r
}

// SharesCohort reports whether both base names belong to one group. Equal
// names never conflict: the lecture and lab components of a course belong
// to the same students by definition.
func (r *CohortRegistry) SharesCohort(base1, base2 string) bool {
	if r == nil || base1 == base2 {
		return false
	}
	for _, members := range r.member {
		if members[base1] && members[base2] {
			return true
		}
	}
	return false
}

// DefaultCohortGroups mirrors the curriculum overlap between the computer
// science and information technology programmes.
func DefaultCohortGroups() map[string][]string {
	return map[string][]string{
		"computer_science": {
			"data structures", "software engineering", "computer networks",
			"database systems", "algorithms", "operating systems",
			"computer graphics", "machine learning", "artificial intelligence",
		},
		"information_technology": {
			"data structures", "database systems", "computer networks",
			"web development", "software engineering", "cyber security",
		},
	}
}

// DefaultCoreCourses lists the base names treated as core subjects by the
// penalty evaluator.
func DefaultCoreCourses() []string {
	return []string{
		"mathematics", "physics", "data structures",
		"operating systems", "database systems",
	}
}
