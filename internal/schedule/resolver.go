package schedule

import (
	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/curve"
)

// Entry is a resolved schedule entry: a time-of-day window during which
// its curve governs the owning fan instead of the default curve.
type Entry struct {
	ID       int                     `json:"id"`
	FanID    string                  `json:"fanId"`
	Name     string                  `json:"name"`
	Start    configuration.TimeOfDay `json:"start"`
	End      configuration.TimeOfDay `json:"end"`
	Curve    curve.Curve             `json:"curve"`
	Priority int                     `json:"priority"`
	Enabled  bool                    `json:"enabled"`
	Version  int64                   `json:"version"`
}

// Matches reports whether this entry's window covers the given time of day.
//
// A window with Start == End has zero width and never matches.
// A window with Start > End wraps past midnight and matches times at or
// after Start as well as times before End.
func (e Entry) Matches(now configuration.TimeOfDay) bool {
	if e.Start == e.End {
		return false
	}
	if e.Start > e.End {
		// overnight window
		return now >= e.Start || now < e.End
	}
	return e.Start <= now && now < e.End
}

// ResolveActive selects the single enabled entry governing the given
// time of day, or nil when no enabled entry matches.
//
// Among matching entries the numerically highest priority wins. Entries
// tying on priority are decided by the lowest ID, so resolution is
// deterministic and stable for a given input set.
func ResolveActive(entries []Entry, now configuration.TimeOfDay) *Entry {
	var active *Entry
	for i := range entries {
		entry := &entries[i]
		if !entry.Enabled || !entry.Matches(now) {
			continue
		}
		if active == nil ||
			entry.Priority > active.Priority ||
			(entry.Priority == active.Priority && entry.ID < active.ID) {
			active = entry
		}
	}

	if active == nil {
		return nil
	}
	result := *active
	return &result
}
