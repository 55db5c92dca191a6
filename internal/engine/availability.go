package engine

import (
	"fmt"
	"sort"
	"strings"
)

// ParseWarning records an availability token that could not be understood.
// Warnings never fail a resolve call; the offending token is skipped.
type ParseWarning struct {
	Token  string `json:"token"`
	Reason string `json:"reason"`
}

func (w ParseWarning) String() string {
	return fmt.Sprintf("%q: %s", w.Token, w.Reason)
}

// timeTokens maps recognized clock forms to bands. The index digits '1'-'9'
// address bands directly, so "monday 2" and the compact "mon2" agree.
var timeTokens = map[string]TimeSlot{
	"9am": 0, "10am": 1, "11am": 2, "12pm": 3,
	"2pm": 5, "3pm": 6, "4pm": 7, "5pm": 8,
	"1": 0, "2": 1, "3": 2, "4": 3, "5": 4,
	"6": 5, "7": 6, "8": 7, "9": 8,
}

// ResolveAvailability normalizes free-form availability expressions into a
// deduplicated, ordered set of grid cells. Each raw element may hold several
// comma-separated tokens:
//
//   - a bare day name expands to every band of that day,
//   - "<day> <time>" selects a single cell when the time form is recognized
//     and falls back to the whole day when it is not,
//   - the compact legacy form "<3-letter day><digit>" selects a single cell
//     through the band-index table.
//
// Tokens without a recognizable day are reported as warnings and skipped.
// Resolving the same input twice yields the same set.
func ResolveAvailability(raw ...string) ([]SlotKey, []ParseWarning) {
	seen := make(map[SlotKey]bool)
	var warnings []ParseWarning

	add := func(k SlotKey) {
		seen[k] = true
	}
	addDay := func(d Day) {
		for _, k := range AllSlotsOf(d) {
			add(k)
		}
	}

	for _, element := range raw {
		for _, token := range strings.Split(element, ",") {
			token = strings.ToLower(strings.TrimSpace(token))
			if token == "" {
				continue
			}

			if day, ok := ParseDay(token); ok {
				addDay(day)
				continue
			}

			if strings.Contains(token, " ") {
				parts := strings.SplitN(token, " ", 2)
				day, ok := ParseDay(parts[0])
				if !ok {
					warnings = append(warnings, ParseWarning{Token: token, Reason: "unknown day"})
					continue
				}
				if slot, ok := timeTokens[strings.TrimSpace(parts[1])]; ok {
					add(SlotKey{Day: day, Slot: slot})
				} else {
					// Unrecognized time still keeps the day usable.
					addDay(day)
				}
				continue
			}

			if day, slot, ok := parseCompactToken(token); ok {
				add(SlotKey{Day: day, Slot: slot})
				continue
			}

			warnings = append(warnings, ParseWarning{Token: token, Reason: "unrecognized token"})
		}
	}

	keys := make([]SlotKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys, warnings
}

// parseCompactToken handles the legacy "mon2" form: a day abbreviation
// followed by a single band index digit.
func parseCompactToken(token string) (Day, TimeSlot, bool) {
	if len(token) < 2 || len(token) > 4 {
		return 0, 0, false
	}
	last := token[len(token)-1]
	if last < '1' || last > '9' {
		return 0, 0, false
	}
	day, ok := ParseDay(token[:len(token)-1])
	if !ok {
		return 0, 0, false
	}
	return day, TimeSlot(last - '1'), true
}
