package schedule

import (
	"testing"

	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/curve"
	"github.com/stretchr/testify/assert"
)

func mustParseTime(t *testing.T, value string) configuration.TimeOfDay {
	tod, err := configuration.ParseTimeOfDay(value)
	assert.NoError(t, err)
	return tod
}

func createEntry(t *testing.T, id int, start string, end string, priority int, enabled bool) Entry {
	c, err := curve.New([]curve.Point{
		{Temperature: 30, Duty: 20},
		{Temperature: 70, Duty: 100},
	}, 0, 100)
	assert.NoError(t, err)

	return Entry{
		ID:       id,
		FanID:    "fan1",
		Name:     "entry",
		Start:    mustParseTime(t, start),
		End:      mustParseTime(t, end),
		Curve:    c,
		Priority: priority,
		Enabled:  enabled,
	}
}

func TestNonOvernightWindowMatches(t *testing.T) {
	// GIVEN
	entry := createEntry(t, 1, "08:00", "18:00", 0, true)

	// THEN
	assert.True(t, entry.Matches(mustParseTime(t, "08:00")))
	assert.True(t, entry.Matches(mustParseTime(t, "12:00")))
	assert.False(t, entry.Matches(mustParseTime(t, "18:00")))
	assert.False(t, entry.Matches(mustParseTime(t, "22:00")))
}

func TestOvernightWindowMatches(t *testing.T) {
	// GIVEN
	entry := createEntry(t, 1, "22:00", "06:00", 0, true)

	// THEN
	assert.True(t, entry.Matches(mustParseTime(t, "23:00")))
	assert.True(t, entry.Matches(mustParseTime(t, "05:00")))
	assert.False(t, entry.Matches(mustParseTime(t, "12:00")))
}

func TestZeroWidthWindowNeverMatches(t *testing.T) {
	// GIVEN
	entry := createEntry(t, 1, "10:00", "10:00", 0, true)

	// THEN
	assert.False(t, entry.Matches(mustParseTime(t, "10:00")))
	assert.False(t, entry.Matches(mustParseTime(t, "10:01")))
}

func TestResolveActivePrefersHighestPriority(t *testing.T) {
	// GIVEN
	entries := []Entry{
		createEntry(t, 1, "00:00", "23:59", 5, true),
		createEntry(t, 2, "00:00", "23:59", 10, true),
	}

	// WHEN
	active := ResolveActive(entries, mustParseTime(t, "12:00"))

	// THEN
	assert.NotNil(t, active)
	assert.Equal(t, 2, active.ID)
}

func TestResolveActiveBreaksPriorityTiesByLowestId(t *testing.T) {
	// GIVEN
	entries := []Entry{
		createEntry(t, 7, "00:00", "23:59", 5, true),
		createEntry(t, 3, "00:00", "23:59", 5, true),
	}

	// WHEN
	active := ResolveActive(entries, mustParseTime(t, "12:00"))

	// THEN
	assert.NotNil(t, active)
	assert.Equal(t, 3, active.ID)
}

func TestResolveActiveIgnoresDisabledEntries(t *testing.T) {
	// GIVEN
	entries := []Entry{
		createEntry(t, 1, "00:00", "23:59", 10, false),
		createEntry(t, 2, "00:00", "23:59", 5, true),
	}

	// WHEN
	active := ResolveActive(entries, mustParseTime(t, "12:00"))

	// THEN
	assert.NotNil(t, active)
	assert.Equal(t, 2, active.ID)
}

func TestResolveActiveReturnsNilWithoutMatch(t *testing.T) {
	// GIVEN
	entries := []Entry{
		createEntry(t, 1, "22:00", "06:00", 0, true),
	}

	// WHEN
	active := ResolveActive(entries, mustParseTime(t, "12:00"))

	// THEN
	assert.Nil(t, active)
}

func TestResolveActiveIsStableAcrossCalls(t *testing.T) {
	// GIVEN
	entries := []Entry{
		createEntry(t, 4, "00:00", "23:59", 5, true),
		createEntry(t, 2, "00:00", "23:59", 5, true),
		createEntry(t, 9, "00:00", "23:59", 5, true),
	}

	// WHEN / THEN
	first := ResolveActive(entries, mustParseTime(t, "12:00"))
	for i := 0; i < 10; i++ {
		again := ResolveActive(entries, mustParseTime(t, "12:00"))
		assert.Equal(t, first.ID, again.ID)
	}
}
