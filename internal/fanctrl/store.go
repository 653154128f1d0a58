package fanctrl

import (
	"os"
	"sync"

	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/curve"
	"github.com/hsadmin/fancontrol/internal/persistence"
	"github.com/hsadmin/fancontrol/internal/schedule"
	"github.com/hsadmin/fancontrol/internal/ui"
	"github.com/qdm12/reprint"
)

// FanSnapshot is an immutable per-tick view of one fan's configuration
// and schedule. Control loops take a fresh snapshot at the start of
// every tick, so a configuration edit mid-tick never produces a torn
// read; it is simply picked up on the next tick.
type FanSnapshot struct {
	Config configuration.FanConfig

	// Mode is the user-selected mode (never emergency)
	Mode       Mode
	ManualDuty int

	DefaultCurve curve.Curve
	Entries      []schedule.Entry

	// Version is bumped on every successful mutation of this fan
	Version int64
}

// SnapshotSource provides per-tick configuration snapshots to control loops.
type SnapshotSource interface {
	Snapshot(fanId string) (FanSnapshot, bool)
}

// ScheduleEntryInput carries the user-editable fields of a schedule entry.
type ScheduleEntryInput struct {
	Name     string                  `json:"name"`
	Start    configuration.TimeOfDay `json:"start"`
	End      configuration.TimeOfDay `json:"end"`
	Priority int                     `json:"priority"`
	Enabled  bool                    `json:"enabled"`
	Curve    []curve.Point           `json:"curve"`
}

type fanState struct {
	config configuration.FanConfig

	mode       Mode
	manualDuty int

	defaultCurve curve.Curve
	entries      []schedule.Entry

	nextEntryId int
	version     int64
}

// Store owns the mutable configuration of all registered fans. It is
// the mutation boundary: every write is validated here, versioned and
// persisted before it becomes visible to the control loops.
type Store struct {
	mu   sync.RWMutex
	fans map[string]*fanState
	pers persistence.Persistence
}

func NewStore(pers persistence.Persistence) *Store {
	return &Store{
		fans: map[string]*fanState{},
		pers: pers,
	}
}

// RegisterFan loads the given fan configuration into the store,
// applying any persisted runtime edits (mode, manual duty, default
// curve, schedule entries) on top of the file-based defaults.
func (s *Store) RegisterFan(config configuration.FanConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &fanState{
		config:     config,
		mode:       ModeAuto,
		manualDuty: config.MinDuty,
		version:    1,
	}

	if persisted, err := s.pers.LoadFanState(config.ID); err == nil {
		mode, err := ParseMode(persisted.Mode)
		if err != nil {
			ui.Warning("Ignoring persisted mode for fan %s: %v", config.ID, err)
		} else {
			state.mode = mode
		}
		if persisted.ManualDuty >= config.MinDuty && persisted.ManualDuty <= config.MaxDuty {
			state.manualDuty = persisted.ManualDuty
		}
		if persisted.Version > 0 {
			state.version = persisted.Version
		}
	} else if !os.IsNotExist(err) {
		ui.Warning("Unable to load persisted state for fan %s: %v", config.ID, err)
	}

	if points, err := s.pers.LoadDefaultCurve(config.ID); err == nil {
		state.config.DefaultCurve = points
	}

	if entries, err := s.pers.LoadScheduleEntries(config.ID); err == nil {
		state.config.Schedule = entries
	}

	defaultCurve, err := curve.New(configuration.CurvePoints(state.config.DefaultCurve), config.MinDuty, config.MaxDuty)
	if err != nil {
		return validationErrorf("fan %s: invalid default curve: %s", config.ID, err)
	}
	state.defaultCurve = defaultCurve

	state.nextEntryId = 1
	for _, entryConfig := range state.config.Schedule {
		entryCurve, err := curve.New(configuration.CurvePoints(entryConfig.Curve), config.MinDuty, config.MaxDuty)
		if err != nil {
			return validationErrorf("fan %s: invalid curve for schedule entry %d: %s", config.ID, entryConfig.ID, err)
		}
		version := entryConfig.Version
		if version <= 0 {
			version = 1
		}
		state.entries = append(state.entries, schedule.Entry{
			ID:       entryConfig.ID,
			FanID:    config.ID,
			Name:     entryConfig.Name,
			Start:    entryConfig.Start,
			End:      entryConfig.End,
			Curve:    entryCurve,
			Priority: entryConfig.Priority,
			Enabled:  entryConfig.Enabled,
			Version:  version,
		})
		if entryConfig.ID >= state.nextEntryId {
			state.nextEntryId = entryConfig.ID + 1
		}
	}

	s.fans[config.ID] = state
	return nil
}

// FanIds returns the ids of all registered fans.
func (s *Store) FanIds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id := range s.fans {
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) Snapshot(fanId string) (FanSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.fans[fanId]
	if !ok {
		return FanSnapshot{}, false
	}

	// deep copy so a concurrent mutation can never tear the view of
	// the tick that is currently using it
	var configCopy configuration.FanConfig
	if err := reprint.FromTo(&state.config, &configCopy); err != nil {
		ui.Error("Unable to snapshot config of fan %s: %v", fanId, err)
		return FanSnapshot{}, false
	}

	entries := make([]schedule.Entry, len(state.entries))
	copy(entries, state.entries)

	return FanSnapshot{
		Config:       configCopy,
		Mode:         state.mode,
		ManualDuty:   state.manualDuty,
		DefaultCurve: state.defaultCurve,
		Entries:      entries,
		Version:      state.version,
	}, true
}

// SetMode switches the user-selected mode of a fan. Manual mode
// requires a duty cycle within the fan's configured duty range.
func (s *Store) SetMode(fanId string, mode Mode, manualDuty *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.fans[fanId]
	if !ok {
		return fanNotFound(fanId)
	}

	if mode == ModeEmergency {
		return validationErrorf("mode 'emergency' is entered automatically and cannot be requested")
	}

	if mode == ModeManual {
		if manualDuty == nil {
			return validationErrorf("mode 'manual' requires a manual duty value")
		}
		if *manualDuty < state.config.MinDuty || *manualDuty > state.config.MaxDuty {
			return validationErrorf("manual duty %d outside [%d, %d]", *manualDuty, state.config.MinDuty, state.config.MaxDuty)
		}
		state.manualDuty = *manualDuty
	}

	state.mode = mode
	state.version++
	return s.persistFanState(state)
}

// SetDefaultCurve replaces the default curve of a fan with a new,
// validated curve built from the given points.
func (s *Store) SetDefaultCurve(fanId string, points []curve.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.fans[fanId]
	if !ok {
		return fanNotFound(fanId)
	}

	newCurve, err := curve.New(points, state.config.MinDuty, state.config.MaxDuty)
	if err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	state.defaultCurve = newCurve
	state.config.DefaultCurve = curvePointConfigs(newCurve.Points())
	state.version++

	if err := s.pers.SaveDefaultCurve(fanId, state.config.DefaultCurve); err != nil {
		ui.Error("Unable to persist default curve of fan %s: %v", fanId, err)
	}
	return s.persistFanState(state)
}

// CreateScheduleEntry adds a schedule entry to a fan, assigning it the
// next free entry id.
func (s *Store) CreateScheduleEntry(fanId string, input ScheduleEntryInput) (schedule.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.fans[fanId]
	if !ok {
		return schedule.Entry{}, fanNotFound(fanId)
	}

	if len(state.entries) >= configuration.MaxScheduleEntries {
		return schedule.Entry{}, validationErrorf("fan %s already has the maximum of %d schedule entries", fanId, configuration.MaxScheduleEntries)
	}

	entryCurve, err := curve.New(input.Curve, state.config.MinDuty, state.config.MaxDuty)
	if err != nil {
		return schedule.Entry{}, &ValidationError{Reason: err.Error()}
	}

	entry := schedule.Entry{
		ID:       state.nextEntryId,
		FanID:    fanId,
		Name:     input.Name,
		Start:    input.Start,
		End:      input.End,
		Curve:    entryCurve,
		Priority: input.Priority,
		Enabled:  input.Enabled,
		Version:  1,
	}
	state.nextEntryId++
	state.entries = append(state.entries, entry)
	state.version++

	s.persistSchedule(state)
	if err := s.persistFanState(state); err != nil {
		return schedule.Entry{}, err
	}
	return entry, nil
}

// UpdateScheduleEntry replaces the user-editable fields of a schedule
// entry. A non-zero expectedVersion must match the entry's current
// version, detecting concurrent edits instead of silently overwriting
// them.
func (s *Store) UpdateScheduleEntry(fanId string, entryId int, input ScheduleEntryInput, expectedVersion int64) (schedule.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.fans[fanId]
	if !ok {
		return schedule.Entry{}, fanNotFound(fanId)
	}

	index := indexOfEntry(state.entries, entryId)
	if index < 0 {
		return schedule.Entry{}, scheduleEntryNotFound(entryId)
	}
	existing := state.entries[index]

	if expectedVersion > 0 && existing.Version != expectedVersion {
		return schedule.Entry{}, validationErrorf("schedule entry %d was modified concurrently (version %d, expected %d)", entryId, existing.Version, expectedVersion)
	}

	entryCurve, err := curve.New(input.Curve, state.config.MinDuty, state.config.MaxDuty)
	if err != nil {
		return schedule.Entry{}, &ValidationError{Reason: err.Error()}
	}

	updated := schedule.Entry{
		ID:       entryId,
		FanID:    fanId,
		Name:     input.Name,
		Start:    input.Start,
		End:      input.End,
		Curve:    entryCurve,
		Priority: input.Priority,
		Enabled:  input.Enabled,
		Version:  existing.Version + 1,
	}
	state.entries[index] = updated
	state.version++

	s.persistSchedule(state)
	if err := s.persistFanState(state); err != nil {
		return schedule.Entry{}, err
	}
	return updated, nil
}

// DeleteScheduleEntry removes a schedule entry. A non-zero
// expectedVersion must match the entry's current version.
func (s *Store) DeleteScheduleEntry(fanId string, entryId int, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.fans[fanId]
	if !ok {
		return fanNotFound(fanId)
	}

	index := indexOfEntry(state.entries, entryId)
	if index < 0 {
		return scheduleEntryNotFound(entryId)
	}

	if expectedVersion > 0 && state.entries[index].Version != expectedVersion {
		return validationErrorf("schedule entry %d was modified concurrently (version %d, expected %d)", entryId, state.entries[index].Version, expectedVersion)
	}

	state.entries = append(state.entries[:index], state.entries[index+1:]...)
	state.version++

	s.persistSchedule(state)
	return s.persistFanState(state)
}

// ScheduleEntries returns the schedule entries of a fan.
func (s *Store) ScheduleEntries(fanId string) ([]schedule.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.fans[fanId]
	if !ok {
		return nil, fanNotFound(fanId)
	}

	entries := make([]schedule.Entry, len(state.entries))
	copy(entries, state.entries)
	return entries, nil
}

func (s *Store) persistFanState(state *fanState) error {
	err := s.pers.SaveFanState(state.config.ID, persistence.StoredFanState{
		Mode:       state.mode.String(),
		ManualDuty: state.manualDuty,
		Version:    state.version,
	})
	if err != nil {
		ui.Error("Unable to persist state of fan %s: %v", state.config.ID, err)
	}
	// persistence failures are logged but do not fail the mutation,
	// the in-memory state remains authoritative for this process
	return nil
}

func (s *Store) persistSchedule(state *fanState) {
	entryConfigs := make([]configuration.ScheduleEntryConfig, 0, len(state.entries))
	for _, entry := range state.entries {
		entryConfigs = append(entryConfigs, configuration.ScheduleEntryConfig{
			ID:       entry.ID,
			Name:     entry.Name,
			Start:    entry.Start,
			End:      entry.End,
			Priority: entry.Priority,
			Enabled:  entry.Enabled,
			Curve:    curvePointConfigs(entry.Curve.Points()),
			Version:  entry.Version,
		})
	}
	state.config.Schedule = entryConfigs

	if err := s.pers.SaveScheduleEntries(state.config.ID, entryConfigs); err != nil {
		ui.Error("Unable to persist schedule of fan %s: %v", state.config.ID, err)
	}
}

func indexOfEntry(entries []schedule.Entry, entryId int) int {
	for i, entry := range entries {
		if entry.ID == entryId {
			return i
		}
	}
	return -1
}

func curvePointConfigs(points []curve.Point) []configuration.CurvePointConfig {
	result := make([]configuration.CurvePointConfig, 0, len(points))
	for _, point := range points {
		result = append(result, configuration.CurvePointConfig{
			Temperature: point.Temperature,
			Duty:        point.Duty,
		})
	}
	return result
}
