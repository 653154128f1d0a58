package fanctrl

import (
	"time"

	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/curve"
	"github.com/hsadmin/fancontrol/internal/schedule"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// Permissions is the external permission collaborator. Actors are
// opaque strings (the api layer passes bearer tokens).
type Permissions interface {
	HasWriteCapability(actor string) bool
}

// Service is the engine facade consumed by the api layer and the CLI.
// Reads are served from the store and the control loops' published
// status snapshots; every mutation checks write capability first and
// goes through the store, never touching runtime state directly.
type Service struct {
	store       *Store
	controllers cmap.ConcurrentMap[string, FanController]
	permissions Permissions

	now func() time.Time
}

func NewService(store *Store, permissions Permissions) *Service {
	return &Service{
		store:       store,
		controllers: cmap.New[FanController](),
		permissions: permissions,
		now:         time.Now,
	}
}

func (s *Service) Store() *Store {
	return s.store
}

// RegisterController attaches a running control loop to the service
// for status reporting.
func (s *Service) RegisterController(fanId string, controller FanController) {
	s.controllers.Set(fanId, controller)
}

// GetStatus returns the runtime state snapshot of a fan.
func (s *Service) GetStatus(fanId string) (FanStatus, error) {
	controller, ok := s.controllers.Get(fanId)
	if !ok {
		return FanStatus{}, fanNotFound(fanId)
	}
	return controller.Status(), nil
}

// Statuses returns the runtime state snapshots of all fans.
func (s *Service) Statuses() []FanStatus {
	var result []FanStatus
	for item := range s.controllers.IterBuffered() {
		result = append(result, item.Val.Status())
	}
	return result
}

// GetScheduleEntries returns all schedule entries of a fan.
func (s *Service) GetScheduleEntries(fanId string) ([]schedule.Entry, error) {
	return s.store.ScheduleEntries(fanId)
}

// GetActiveScheduleEntry returns the schedule entry governing the fan
// right now, or nil when no enabled entry matches.
func (s *Service) GetActiveScheduleEntry(fanId string) (*schedule.Entry, error) {
	entries, err := s.store.ScheduleEntries(fanId)
	if err != nil {
		return nil, err
	}
	return schedule.ResolveActive(entries, configuration.TimeOfDayFromTime(s.now())), nil
}

// SetMode switches the user-selected mode of a fan. Manual mode
// requires a duty value within the fan's duty range.
func (s *Service) SetMode(actor string, fanId string, mode Mode, manualDuty *int) error {
	if !s.permissions.HasWriteCapability(actor) {
		return &CapabilityError{}
	}
	return s.store.SetMode(fanId, mode, manualDuty)
}

// SetDefaultCurve replaces the default curve of a fan.
func (s *Service) SetDefaultCurve(actor string, fanId string, points []curve.Point) error {
	if !s.permissions.HasWriteCapability(actor) {
		return &CapabilityError{}
	}
	return s.store.SetDefaultCurve(fanId, points)
}

// CreateScheduleEntry adds a schedule entry to a fan.
func (s *Service) CreateScheduleEntry(actor string, fanId string, input ScheduleEntryInput) (schedule.Entry, error) {
	if !s.permissions.HasWriteCapability(actor) {
		return schedule.Entry{}, &CapabilityError{}
	}
	return s.store.CreateScheduleEntry(fanId, input)
}

// UpdateScheduleEntry replaces the user-editable fields of a schedule
// entry, detecting concurrent edits via the expected version.
func (s *Service) UpdateScheduleEntry(actor string, fanId string, entryId int, input ScheduleEntryInput, expectedVersion int64) (schedule.Entry, error) {
	if !s.permissions.HasWriteCapability(actor) {
		return schedule.Entry{}, &CapabilityError{}
	}
	return s.store.UpdateScheduleEntry(fanId, entryId, input, expectedVersion)
}

// DeleteScheduleEntry removes a schedule entry.
func (s *Service) DeleteScheduleEntry(actor string, fanId string, entryId int, expectedVersion int64) error {
	if !s.permissions.HasWriteCapability(actor) {
		return &CapabilityError{}
	}
	return s.store.DeleteScheduleEntry(fanId, entryId, expectedVersion)
}
