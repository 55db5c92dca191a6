package engine

// Occupant is one course holding a grid cell.
type Occupant struct {
	ID          CourseID
	SessionType SessionType
}

type facultyDay struct {
	Faculty string
	Day     Day
}

// State tracks all occupancy for exactly one scheduling run. It is created
// fresh per run, owned by a single goroutine, and never shared. There is no
// rollback: candidates are checked through IsAvailable and HasCohortConflict
// before Commit, never reverted after.
type State struct {
	cohorts *CohortRegistry

	facultyBusy    map[string]map[SlotKey]bool
	roomBusy       map[string]map[SlotKey]bool
	slotOccupants  map[SlotKey][]Occupant
	dayLoad        map[Day]int
	facultyDayLoad map[facultyDay]int
	assignments    []Assignment
}

// NewState builds an empty tracker. A nil registry disables cohort
// conflicts.
func NewState(cohorts *CohortRegistry) *State {
	return &State{
		cohorts:        cohorts,
		facultyBusy:    make(map[string]map[SlotKey]bool),
		roomBusy:       make(map[string]map[SlotKey]bool),
		slotOccupants:  make(map[SlotKey][]Occupant),
		dayLoad:        make(map[Day]int),
		facultyDayLoad: make(map[facultyDay]int),
	}
}

// IsAvailable reports whether the cell can take another session: the cell
// must be empty (parallel scheduling is disabled) and both the faculty and
// the room must be free at that key.
func (s *State) IsAvailable(day Day, slot TimeSlot, faculty, room string) bool {
	key := SlotKey{Day: day, Slot: slot}
	if len(s.slotOccupants[key]) > 0 {
		return false
	}
	if s.facultyBusy[faculty][key] {
		return false
	}
	if s.roomBusy[room][key] {
		return false
	}
	return true
}

// HasCohortConflict reports whether any occupant of the cell shares a
// cohort group with the course. Base names compare with component
// qualifiers stripped; the same base never conflicts with itself.
func (s *State) HasCohortConflict(day Day, slot TimeSlot, id CourseID) bool {
	for _, occ := range s.slotOccupants[SlotKey{Day: day, Slot: slot}] {
		if s.cohorts.SharesCohort(id.BaseName, occ.ID.BaseName) {
			return true
		}
	}
	return false
}

// Commit records an assignment across every occupancy structure. Callers
// validate first; a commit is never partial and never reverted.
func (s *State) Commit(a Assignment) {
	key := SlotKey{Day: a.Day, Slot: a.Slot}

	if s.facultyBusy[a.Faculty] == nil {
		s.facultyBusy[a.Faculty] = make(map[SlotKey]bool)
	}
	s.facultyBusy[a.Faculty][key] = true

	if s.roomBusy[a.Room] == nil {
		s.roomBusy[a.Room] = make(map[SlotKey]bool)
	}
	s.roomBusy[a.Room][key] = true

	s.slotOccupants[key] = append(s.slotOccupants[key], Occupant{ID: a.ID, SessionType: a.SessionType})
	s.dayLoad[a.Day]++
	s.facultyDayLoad[facultyDay{Faculty: a.Faculty, Day: a.Day}]++
	s.assignments = append(s.assignments, a)
}

// Assignments returns every committed assignment in commit order.
func (s *State) Assignments() []Assignment {
	return s.assignments
}

// OccupantsAt exposes the cell's occupants for scoring.
func (s *State) OccupantsAt(day Day, slot TimeSlot) []Occupant {
	return s.slotOccupants[SlotKey{Day: day, Slot: slot}]
}

// DayLoad is the number of sessions committed on the day.
func (s *State) DayLoad(day Day) int {
	return s.dayLoad[day]
}

// FacultyDayLoad is the number of sessions the faculty holds on the day.
func (s *State) FacultyDayLoad(faculty string, day Day) int {
	return s.facultyDayLoad[facultyDay{Faculty: faculty, Day: day}]
}

// DayLoadSpread returns the min and max day loads across the whole week,
// counting empty days as zero.
func (s *State) DayLoadSpread() (min, max int) {
	min, max = s.dayLoad[Days[0]], s.dayLoad[Days[0]]
	for _, d := range Days[1:] {
		load := s.dayLoad[d]
		if load < min {
			min = load
		}
		if load > max {
			max = load
		}
	}
	return min, max
}

// BaseCountOnDay counts sessions of the base course already on the day.
func (s *State) BaseCountOnDay(day Day, base string) int {
	count := 0
	for slot := TimeSlot(0); slot < SlotsPerDay; slot++ {
		for _, occ := range s.slotOccupants[SlotKey{Day: day, Slot: slot}] {
			if occ.ID.BaseName == base {
				count++
			}
		}
	}
	return count
}
