package configuration

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// TimeOfDay is a clock time without a date, stored as minutes since
// midnight. It is decoded from "HH:MM" strings in configuration files
// and JSON payloads.
type TimeOfDay int

const MinutesPerDay = 24 * 60

// ParseTimeOfDay parses a "HH:MM" string into a TimeOfDay.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	var hour, minute int
	n, err := fmt.Sscanf(value, "%d:%d", &hour, &minute)
	if err != nil || n != 2 {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %q, expected HH:MM", value)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// TimeOfDayFromTime extracts the clock time of the given instant.
func TimeOfDayFromTime(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

func (t TimeOfDay) Hour() int {
	return int(t) / 60
}

func (t TimeOfDay) Minute() int {
	return int(t) % 60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// TimeOfDayHookFunc returns a mapstructure decode hook that parses
// "HH:MM" strings into TimeOfDay values.
func TimeOfDayHookFunc() mapstructure.DecodeHookFuncType {
	timeOfDayType := reflect.TypeOf(TimeOfDay(0))

	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != timeOfDayType {
			return data, nil
		}

		switch value := data.(type) {
		case string:
			return ParseTimeOfDay(value)
		case int:
			if value < 0 || value >= MinutesPerDay {
				return nil, fmt.Errorf("time of day %d out of range [0, %d)", value, MinutesPerDay)
			}
			return TimeOfDay(value), nil
		}

		return data, nil
	}
}
