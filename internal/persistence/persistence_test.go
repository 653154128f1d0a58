package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/stretchr/testify/assert"
)

func createTestPersistence(t *testing.T) Persistence {
	dbPath := filepath.Join(t.TempDir(), "fancontrol.db")
	p := NewPersistence(dbPath)
	err := p.Init()
	assert.NoError(t, err)
	return p
}

func TestSaveAndLoadFanState(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)
	state := StoredFanState{
		Mode:       "manual",
		ManualDuty: 42,
		Version:    3,
	}

	// WHEN
	err := p.SaveFanState("fan1", state)
	assert.NoError(t, err)
	loaded, err := p.LoadFanState("fan1")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestLoadFanStateWithoutData(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)

	// WHEN
	_, err := p.LoadFanState("unknown")

	// THEN
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDeleteFanState(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)
	err := p.SaveFanState("fan1", StoredFanState{Mode: "auto"})
	assert.NoError(t, err)

	// WHEN
	err = p.DeleteFanState("fan1")
	assert.NoError(t, err)

	// THEN
	_, err = p.LoadFanState("fan1")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveAndLoadDefaultCurve(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)
	points := []configuration.CurvePointConfig{
		{Temperature: 30, Duty: 20},
		{Temperature: 70, Duty: 100},
	}

	// WHEN
	err := p.SaveDefaultCurve("fan1", points)
	assert.NoError(t, err)
	loaded, err := p.LoadDefaultCurve("fan1")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, points, loaded)
}

func TestSaveAndLoadScheduleEntries(t *testing.T) {
	// GIVEN
	p := createTestPersistence(t)
	entries := []configuration.ScheduleEntryConfig{
		{
			ID:       1,
			Name:     "night",
			Start:    configuration.TimeOfDay(22 * 60),
			End:      configuration.TimeOfDay(6 * 60),
			Priority: 10,
			Enabled:  true,
			Curve: []configuration.CurvePointConfig{
				{Temperature: 30, Duty: 20},
				{Temperature: 70, Duty: 60},
			},
		},
	}

	// WHEN
	err := p.SaveScheduleEntries("fan1", entries)
	assert.NoError(t, err)
	loaded, err := p.LoadScheduleEntries("fan1")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, entries, loaded)
}
