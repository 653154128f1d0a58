package fanctrl

import (
	"time"
)

// FanStatus is the published runtime state of a single fan. It is
// written exclusively by the fan's control loop and exposed to readers
// as an atomically swapped snapshot.
type FanStatus struct {
	FanID string `json:"fanId"`

	Mode Mode `json:"mode"`

	// ManualDuty is only meaningful while Mode is manual
	ManualDuty int `json:"manualDuty"`

	// LastTemperature is the temperature of the last reading accepted
	// by the hysteresis gate
	LastTemperature float64 `json:"lastTemperature"`

	// CurrentDuty is the duty cycle last known to be applied to the fan
	CurrentDuty int `json:"currentDuty"`

	// ActiveScheduleEntryID is nil unless a schedule entry governs the fan
	ActiveScheduleEntryID *int `json:"activeScheduleEntryId"`

	// Degraded is set after repeated consecutive sensor read failures
	Degraded bool `json:"degraded"`

	LastUpdate time.Time `json:"lastUpdate"`
}
