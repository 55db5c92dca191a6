package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCourseID(t *testing.T) {
	cases := []struct {
		name string
		want CourseID
	}{
		{"Physics", CourseID{BaseName: "physics"}},
		{"Physics (Lab)", CourseID{BaseName: "physics", Component: "lab"}},
		{"  Data Structures (Lecture) ", CourseID{BaseName: "data structures", Component: "lecture"}},
		{"Chemistry (", CourseID{BaseName: "chemistry ("}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseCourseID(tc.name), "name %q", tc.name)
	}
}

func TestNormalizeBaseName(t *testing.T) {
	assert.Equal(t, "physics", NormalizeBaseName("Physics (Lab)"))
	assert.Equal(t, "physics", NormalizeBaseName("PHYSICS"))
}

func TestExpectedHours(t *testing.T) {
	lecture := Course{SessionType: SessionLecture, WeeklyTarget: 3}
	assert.Equal(t, 3, lecture.ExpectedHours())

	lab := Course{SessionType: SessionLab, WeeklyTarget: 2, LabBlockLength: 2}
	assert.Equal(t, 4, lab.ExpectedHours())
}

func TestSharesCohort(t *testing.T) {
	registry := NewCohortRegistry(DefaultCohortGroups())

	assert.True(t, registry.SharesCohort("data structures", "algorithms"))
	assert.True(t, registry.SharesCohort("web development", "cyber security"))
	assert.False(t, registry.SharesCohort("algorithms", "web development"))
	assert.False(t, registry.SharesCohort("mathematics", "physics"))

	// Lecture and lab components of one course never conflict.
	assert.False(t, registry.SharesCohort("physics", "physics"))
	assert.False(t, registry.SharesCohort("data structures", "data structures"))
}

func TestSharesCohortNilRegistry(t *testing.T) {
	var registry *CohortRegistry
	assert.False(t, registry.SharesCohort("data structures", "algorithms"))
}
