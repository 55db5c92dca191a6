package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	cases := map[string]Day{
		"monday":  Monday,
		"Monday":  Monday,
		"  FRI  ": Friday,
		"wed":     Wednesday,
		"thu":     Thursday,
	}
	for token, want := range cases {
		got, ok := ParseDay(token)
		require.True(t, ok, "token %q", token)
		assert.Equal(t, want, got, "token %q", token)
	}

	_, ok := ParseDay("saturday")
	assert.False(t, ok)
	_, ok = ParseDay("")
	assert.False(t, ok)
}

func TestSlotLabelsRoundTrip(t *testing.T) {
	require.Equal(t, 9, SlotsPerDay)
	assert.Equal(t, "09:00-10:00", TimeSlot(0).String())
	assert.Equal(t, "13:00-14:00", TimeSlot(4).String())
	assert.Equal(t, "17:00-18:00", TimeSlot(8).String())

	for s := TimeSlot(0); s < SlotsPerDay; s++ {
		parsed, ok := ParseTimeSlot(s.String())
		require.True(t, ok)
		assert.Equal(t, s, parsed)
	}
	_, ok := ParseTimeSlot("18:00-19:00")
	assert.False(t, ok)
}

func TestPreferenceRank(t *testing.T) {
	assert.Equal(t, 1, PreferenceRank(0))
	assert.Equal(t, 8, PreferenceRank(LunchSlot))
	assert.Equal(t, 2, PreferenceRank(5))
	assert.Equal(t, 20, PreferenceRank(8))
	assert.Equal(t, 25, PreferenceRank(TimeSlot(9)))
	assert.Equal(t, 25, PreferenceRank(TimeSlot(-1)))
}

func TestSlotKeyBefore(t *testing.T) {
	assert.True(t, SlotKey{Monday, 8}.Before(SlotKey{Tuesday, 0}))
	assert.True(t, SlotKey{Monday, 1}.Before(SlotKey{Monday, 2}))
	assert.False(t, SlotKey{Friday, 0}.Before(SlotKey{Monday, 0}))
	assert.False(t, SlotKey{Monday, 3}.Before(SlotKey{Monday, 3}))
}

func TestAllSlotsOf(t *testing.T) {
	keys := AllSlotsOf(Wednesday)
	require.Len(t, keys, SlotsPerDay)
	for i, k := range keys {
		assert.Equal(t, Wednesday, k.Day)
		assert.Equal(t, TimeSlot(i), k.Slot)
	}
}
