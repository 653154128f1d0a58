package configuration

// ScheduleEntryConfig defines a time-of-day window during which an
// alternate curve governs a fan instead of its default curve.
//
// Start == End denotes a zero-width window that is never active.
// Start > End denotes an overnight window wrapping past midnight.
type ScheduleEntryConfig struct {
	ID       int                `json:"id"`
	Name     string             `json:"name"`
	Start    TimeOfDay          `json:"start"`
	End      TimeOfDay          `json:"end"`
	Priority int                `json:"priority"`
	Enabled  bool               `json:"enabled"`
	Curve    []CurvePointConfig `json:"curve"`

	// Version is a mutation counter managed by the daemon for
	// optimistic concurrency; it is ignored in configuration files.
	Version int64 `json:"version"`
}
