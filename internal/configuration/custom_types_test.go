package configuration

import (
	"testing"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/stretchr/testify/assert"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  TimeOfDay
		expectErr bool
	}{
		{
			name:     "Midnight",
			input:    "00:00",
			expected: TimeOfDay(0),
		},
		{
			name:     "Morning",
			input:    "06:30",
			expected: TimeOfDay(6*60 + 30),
		},
		{
			name:     "Late evening",
			input:    "23:59",
			expected: TimeOfDay(23*60 + 59),
		},
		{
			name:      "Hour out of range",
			input:     "24:00",
			expectErr: true,
		},
		{
			name:      "Minute out of range",
			input:     "12:60",
			expectErr: true,
		},
		{
			name:      "Not a time",
			input:     "banana",
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseTimeOfDay(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	// GIVEN
	tod := TimeOfDay(22*60 + 5)

	// WHEN
	result := tod.String()

	// THEN
	assert.Equal(t, "22:05", result)
}

func TestTimeOfDayFromTime(t *testing.T) {
	// GIVEN
	instant := time.Date(2024, 3, 1, 14, 45, 12, 0, time.UTC)

	// WHEN
	result := TimeOfDayFromTime(instant)

	// THEN
	assert.Equal(t, TimeOfDay(14*60+45), result)
}

func TestTimeOfDayHookFunc(t *testing.T) {
	type TestConfig struct {
		Start TimeOfDay `mapstructure:"start"`
	}

	tests := []struct {
		name      string
		inputMap  map[string]interface{}
		expected  TimeOfDay
		expectErr bool
	}{
		{
			name:     "String value",
			inputMap: map[string]interface{}{"start": "22:00"},
			expected: TimeOfDay(22 * 60),
		},
		{
			name:     "Integer minutes",
			inputMap: map[string]interface{}{"start": 90},
			expected: TimeOfDay(90),
		},
		{
			name:      "Malformed string",
			inputMap:  map[string]interface{}{"start": "9 pm"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg TestConfig

			decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
				DecodeHook: TimeOfDayHookFunc(),
				Result:     &cfg,
			})
			assert.NoError(t, err)

			err = decoder.Decode(tt.inputMap)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.Start)
		})
	}
}

func TestTimeOfDayJsonRoundTrip(t *testing.T) {
	// GIVEN
	tod := TimeOfDay(6*60 + 15)

	// WHEN
	data, err := tod.MarshalJSON()
	assert.NoError(t, err)

	var decoded TimeOfDay
	err = decoded.UnmarshalJSON(data)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, tod, decoded)
}
