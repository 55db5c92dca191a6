package engine

import (
	"fmt"
	"strings"
)

// Day is one weekday column of the scheduling grid.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Days lists the grid's weekdays in order.
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday}

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func (d Day) String() string {
	if d < Monday || d > Friday {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// Valid reports whether d is a weekday on the grid.
func (d Day) Valid() bool {
	return d >= Monday && d <= Friday
}

// ParseDay accepts full day names and three-letter abbreviations,
// case-insensitively.
func ParseDay(token string) (Day, bool) {
	d, ok := dayTokens[strings.ToLower(strings.TrimSpace(token))]
	return d, ok
}

var dayTokens = map[string]Day{
	"monday": Monday, "tuesday": Tuesday, "wednesday": Wednesday,
	"thursday": Thursday, "friday": Friday,
	"mon": Monday, "tue": Tuesday, "wed": Wednesday,
	"thu": Thursday, "fri": Friday,
}

// TimeSlot is an index into the canonical list of hour bands.
type TimeSlot int

// SlotsPerDay fixes the grid at nine one-hour bands, 09:00 through 18:00.
const SlotsPerDay = 9

const (
	// LunchSlot is the 12:00-13:00 band.
	LunchSlot TimeSlot = 3
	// LateThreshold marks the 16:00-17:00 band; core courses placed at or
	// after it are penalized.
	LateThreshold TimeSlot = 7
)

var slotLabels = [SlotsPerDay]string{
	"09:00-10:00", "10:00-11:00", "11:00-12:00", "12:00-13:00",
	"13:00-14:00", "14:00-15:00", "15:00-16:00", "16:00-17:00",
	"17:00-18:00",
}

func (t TimeSlot) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TimeSlot(%d)", int(t))
	}
	return slotLabels[t]
}

// Valid reports whether t is a band on the grid.
func (t TimeSlot) Valid() bool {
	return t >= 0 && t < SlotsPerDay
}

// ParseTimeSlot maps a band label ("09:00-10:00") back to its index.
func ParseTimeSlot(label string) (TimeSlot, bool) {
	for i, l := range slotLabels {
		if l == label {
			return TimeSlot(i), true
		}
	}
	return 0, false
}

// PreferenceRank orders bands for placement scoring; lower ranks are
// preferred. Mid-day and late bands carry steep ranks so lectures drift
// toward mornings and the prime afternoon band.
func PreferenceRank(t TimeSlot) int {
	if !t.Valid() {
		return 25
	}
	return preferenceRanks[t]
}

var preferenceRanks = [SlotsPerDay]int{1, 2, 3, 8, 6, 2, 4, 12, 20}

// SlotKey identifies one grid cell, the atomic unit of occupancy.
type SlotKey struct {
	Day  Day
	Slot TimeSlot
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%s %s", k.Day, k.Slot)
}

// Before orders keys by day, then band.
func (k SlotKey) Before(other SlotKey) bool {
	if k.Day != other.Day {
		return k.Day < other.Day
	}
	return k.Slot < other.Slot
}

// AllSlotsOf expands a day into its full list of cells, in band order.
func AllSlotsOf(d Day) []SlotKey {
	keys := make([]SlotKey, 0, SlotsPerDay)
	for s := TimeSlot(0); s < SlotsPerDay; s++ {
		keys = append(keys, SlotKey{Day: d, Slot: s})
	}
	return keys
}
