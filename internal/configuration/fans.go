package configuration

type FanConfig struct {
	// ID is the unique identifier of the fan
	ID string `json:"id"`

	// MinDuty is the lowest duty cycle (in percent) this fan may be driven at
	MinDuty int `json:"minDuty"`
	// MaxDuty is the highest duty cycle (in percent) this fan may be driven at
	MaxDuty int `json:"maxDuty"`

	// EmergencyTemperature is the sensor temperature at or above which the
	// fan is forced to MaxDuty, regardless of mode, manual duty or schedule
	EmergencyTemperature float64 `json:"emergencyTemperature"`

	// HysteresisDegrees is the minimum temperature delta from the last
	// accepted reading required before the duty cycle is recomputed
	HysteresisDegrees float64 `json:"hysteresisDegrees"`

	// Sensor is the ID of the temperature sensor driving this fan
	Sensor string `json:"sensor"`

	// DefaultCurve maps temperature to duty cycle when no schedule entry
	// governs and the fan is not in manual mode
	DefaultCurve []CurvePointConfig `json:"defaultCurve"`

	// Schedule holds time-of-day windows with alternate curves
	Schedule []ScheduleEntryConfig `json:"schedule"`

	HwMon *HwMonFanConfig `json:"hwMon,omitempty"`
	File  *FileFanConfig  `json:"file,omitempty"`
	Cmd   *CmdFanConfig   `json:"cmd,omitempty"`
}

type CurvePointConfig struct {
	Temperature float64 `json:"temperature"`
	Duty        int     `json:"duty"`
}

type HwMonFanConfig struct {
	Platform  string `json:"platform"`
	Index     int    `json:"index"`
	PwmOutput string `json:"pwmOutput"`
}

type FileFanConfig struct {
	Path string `json:"path"`
}

type CmdFanConfig struct {
	SetDuty *ExecConfig `json:"setDuty,omitempty"`
	GetDuty *ExecConfig `json:"getDuty,omitempty"`
}

type ExecConfig struct {
	Exec string   `json:"exec"`
	Args []string `json:"args"`
}
