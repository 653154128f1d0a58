package fanctrl

import (
	"os"
	"testing"

	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/curve"
	"github.com/hsadmin/fancontrol/internal/persistence"
	"github.com/stretchr/testify/assert"
)

type mockPersistence struct {
	fanStates map[string]persistence.StoredFanState
	curves    map[string][]configuration.CurvePointConfig
	schedules map[string][]configuration.ScheduleEntryConfig
}

func newMockPersistence() *mockPersistence {
	return &mockPersistence{
		fanStates: map[string]persistence.StoredFanState{},
		curves:    map[string][]configuration.CurvePointConfig{},
		schedules: map[string][]configuration.ScheduleEntryConfig{},
	}
}

func (p *mockPersistence) Init() error { return nil }

func (p *mockPersistence) SaveFanState(fanId string, state persistence.StoredFanState) error {
	p.fanStates[fanId] = state
	return nil
}

func (p *mockPersistence) LoadFanState(fanId string) (persistence.StoredFanState, error) {
	state, ok := p.fanStates[fanId]
	if !ok {
		return persistence.StoredFanState{}, os.ErrNotExist
	}
	return state, nil
}

func (p *mockPersistence) DeleteFanState(fanId string) error {
	delete(p.fanStates, fanId)
	return nil
}

func (p *mockPersistence) SaveDefaultCurve(fanId string, points []configuration.CurvePointConfig) error {
	p.curves[fanId] = points
	return nil
}

func (p *mockPersistence) LoadDefaultCurve(fanId string) ([]configuration.CurvePointConfig, error) {
	points, ok := p.curves[fanId]
	if !ok {
		return nil, os.ErrNotExist
	}
	return points, nil
}

func (p *mockPersistence) DeleteDefaultCurve(fanId string) error {
	delete(p.curves, fanId)
	return nil
}

func (p *mockPersistence) SaveScheduleEntries(fanId string, entries []configuration.ScheduleEntryConfig) error {
	p.schedules[fanId] = entries
	return nil
}

func (p *mockPersistence) LoadScheduleEntries(fanId string) ([]configuration.ScheduleEntryConfig, error) {
	entries, ok := p.schedules[fanId]
	if !ok {
		return nil, os.ErrNotExist
	}
	return entries, nil
}

func (p *mockPersistence) DeleteScheduleEntries(fanId string) error {
	delete(p.schedules, fanId)
	return nil
}

func tod(hour int, minute int) configuration.TimeOfDay {
	return configuration.TimeOfDay(hour*60 + minute)
}

func testFanConfig(id string) configuration.FanConfig {
	return configuration.FanConfig{
		ID:                   id,
		MinDuty:              0,
		MaxDuty:              100,
		EmergencyTemperature: 80,
		HysteresisDegrees:    2,
		Sensor:               "cpu",
		DefaultCurve: []configuration.CurvePointConfig{
			{Temperature: 30, Duty: 20},
			{Temperature: 70, Duty: 100},
		},
	}
}

func testStore(t *testing.T, configs ...configuration.FanConfig) *Store {
	store := NewStore(newMockPersistence())
	for _, config := range configs {
		err := store.RegisterFan(config)
		assert.NoError(t, err)
	}
	return store
}

func nightCurve() []curve.Point {
	return []curve.Point{
		{Temperature: 30, Duty: 0},
		{Temperature: 80, Duty: 40},
	}
}

func TestStoreSnapshotUnknownFan(t *testing.T) {
	// GIVEN
	store := testStore(t, testFanConfig("fan1"))

	// WHEN
	_, ok := store.Snapshot("nope")

	// THEN
	assert.False(t, ok)
}

func TestStoreSetModeManual(t *testing.T) {
	// GIVEN
	store := testStore(t, testFanConfig("fan1"))
	duty := 40

	// WHEN
	err := store.SetMode("fan1", ModeManual, &duty)

	// THEN
	assert.NoError(t, err)
	snapshot, ok := store.Snapshot("fan1")
	assert.True(t, ok)
	assert.Equal(t, ModeManual, snapshot.Mode)
	assert.Equal(t, 40, snapshot.ManualDuty)
	assert.Equal(t, int64(2), snapshot.Version)
}

func TestStoreSetModeManualWithoutDuty(t *testing.T) {
	// GIVEN
	store := testStore(t, testFanConfig("fan1"))

	// WHEN
	err := store.SetMode("fan1", ModeManual, nil)

	// THEN
	assert.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestStoreSetModeManualDutyOutOfRange(t *testing.T) {
	// GIVEN
	config := testFanConfig("fan1")
	config.MinDuty = 20
	store := testStore(t, config)
	duty := 10

	// WHEN
	err := store.SetMode("fan1", ModeManual, &duty)

	// THEN
	assert.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
	snapshot, _ := store.Snapshot("fan1")
	assert.Equal(t, ModeAuto, snapshot.Mode)
}

func TestStoreSetModeEmergencyRejected(t *testing.T) {
	// GIVEN
	store := testStore(t, testFanConfig("fan1"))

	// WHEN
	err := store.SetMode("fan1", ModeEmergency, nil)

	// THEN
	assert.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestStoreSetDefaultCurveRejectsDuplicateTemperatures(t *testing.T) {
	// GIVEN
	store := testStore(t, testFanConfig("fan1"))
	before, _ := store.Snapshot("fan1")

	// WHEN
	err := store.SetDefaultCurve("fan1", []curve.Point{
		{Temperature: 40, Duty: 20},
		{Temperature: 40, Duty: 60},
	})

	// THEN
	assert.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
	after, _ := store.Snapshot("fan1")
	assert.Equal(t, before.DefaultCurve.Points(), after.DefaultCurve.Points())
	assert.Equal(t, before.Version, after.Version)
}

func TestStoreSetDefaultCurveReplacesCurve(t *testing.T) {
	// GIVEN
	store := testStore(t, testFanConfig("fan1"))

	// WHEN
	err := store.SetDefaultCurve("fan1", []curve.Point{
		{Temperature: 20, Duty: 10},
		{Temperature: 60, Duty: 90},
	})

	// THEN
	assert.NoError(t, err)
	snapshot, _ := store.Snapshot("fan1")
	assert.Equal(t, 50, snapshot.DefaultCurve.Evaluate(40))
	assert.Equal(t, int64(2), snapshot.Version)
}

func TestStoreCreateScheduleEntry(t *testing.T) {
	// GIVEN
	store := testStore(t, testFanConfig("fan1"))

	// WHEN
	entry, err := store.CreateScheduleEntry("fan1", ScheduleEntryInput{
		Name:     "night",
		Start:    tod(22, 0),
		End:      tod(6, 0),
		Priority: 10,
		Enabled:  true,
		Curve:    nightCurve(),
	})

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 1, entry.ID)
	assert.Equal(t, int64(1), entry.Version)
	entries, err := store.ScheduleEntries("fan1")
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStoreCreateScheduleEntryLimit(t *testing.T) {
	// GIVEN
	store := testStore(t, testFanConfig("fan1"))
	for i := 0; i < configuration.MaxScheduleEntries; i++ {
		_, err := store.CreateScheduleEntry("fan1", ScheduleEntryInput{
			Name:  "entry",
			Start: tod(i, 0),
			End:   tod(i, 30),
			Curve: nightCurve(),
		})
		assert.NoError(t, err)
	}

	// WHEN
	_, err := store.CreateScheduleEntry("fan1", ScheduleEntryInput{
		Name:  "one too many",
		Start: tod(20, 0),
		End:   tod(21, 0),
		Curve: nightCurve(),
	})

	// THEN
	assert.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestStoreUpdateScheduleEntryVersionConflict(t *testing.T) {
	// GIVEN
	store := testStore(t, testFanConfig("fan1"))
	entry, err := store.CreateScheduleEntry("fan1", ScheduleEntryInput{
		Name:  "night",
		Start: tod(22, 0),
		End:   tod(6, 0),
		Curve: nightCurve(),
	})
	assert.NoError(t, err)

	input := ScheduleEntryInput{
		Name:  "night, renamed",
		Start: tod(23, 0),
		End:   tod(7, 0),
		Curve: nightCurve(),
	}
	_, err = store.UpdateScheduleEntry("fan1", entry.ID, input, entry.Version)
	assert.NoError(t, err)

	// WHEN the same stale version is used again
	_, err = store.UpdateScheduleEntry("fan1", entry.ID, input, entry.Version)

	// THEN
	assert.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestStoreDeleteScheduleEntry(t *testing.T) {
	// GIVEN
	store := testStore(t, testFanConfig("fan1"))
	entry, err := store.CreateScheduleEntry("fan1", ScheduleEntryInput{
		Name:  "night",
		Start: tod(22, 0),
		End:   tod(6, 0),
		Curve: nightCurve(),
	})
	assert.NoError(t, err)

	// WHEN
	err = store.DeleteScheduleEntry("fan1", entry.ID, entry.Version)

	// THEN
	assert.NoError(t, err)
	entries, err := store.ScheduleEntries("fan1")
	assert.NoError(t, err)
	assert.Len(t, entries, 0)

	// AND deleting again reports not found
	err = store.DeleteScheduleEntry("fan1", entry.ID, 0)
	assert.IsType(t, &NotFoundError{}, err)
}

func TestStoreEntryIdsAreNotReused(t *testing.T) {
	// GIVEN
	store := testStore(t, testFanConfig("fan1"))
	first, err := store.CreateScheduleEntry("fan1", ScheduleEntryInput{
		Name:  "first",
		Start: tod(8, 0),
		End:   tod(12, 0),
		Curve: nightCurve(),
	})
	assert.NoError(t, err)
	err = store.DeleteScheduleEntry("fan1", first.ID, 0)
	assert.NoError(t, err)

	// WHEN
	second, err := store.CreateScheduleEntry("fan1", ScheduleEntryInput{
		Name:  "second",
		Start: tod(13, 0),
		End:   tod(17, 0),
		Curve: nightCurve(),
	})

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, first.ID+1, second.ID)
}

func TestStoreRegisterFanRestoresPersistedState(t *testing.T) {
	// GIVEN
	pers := newMockPersistence()
	store := NewStore(pers)
	err := store.RegisterFan(testFanConfig("fan1"))
	assert.NoError(t, err)
	duty := 55
	err = store.SetMode("fan1", ModeManual, &duty)
	assert.NoError(t, err)

	// WHEN a new store starts from the same persistence
	restarted := NewStore(pers)
	err = restarted.RegisterFan(testFanConfig("fan1"))
	assert.NoError(t, err)

	// THEN
	snapshot, ok := restarted.Snapshot("fan1")
	assert.True(t, ok)
	assert.Equal(t, ModeManual, snapshot.Mode)
	assert.Equal(t, 55, snapshot.ManualDuty)
	assert.Equal(t, int64(2), snapshot.Version)
}

func TestStoreRegisterFanRejectsInvalidDefaultCurve(t *testing.T) {
	// GIVEN
	config := testFanConfig("fan1")
	config.DefaultCurve = []configuration.CurvePointConfig{
		{Temperature: 30, Duty: 20},
	}
	store := NewStore(newMockPersistence())

	// WHEN
	err := store.RegisterFan(config)

	// THEN
	assert.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}
