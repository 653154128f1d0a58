package fanctrl

import (
	"testing"
	"time"

	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/stretchr/testify/assert"
)

type MockSensor struct {
	ID        string
	Value     float64
	Err       error
	MovingAvg float64
}

func (s *MockSensor) GetId() string {
	return s.ID
}

func (s *MockSensor) GetConfig() configuration.SensorConfig {
	return configuration.SensorConfig{ID: s.ID}
}

func (s *MockSensor) GetValue() (float64, error) {
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Value, nil
}

func (s *MockSensor) GetMovingAvg() float64 {
	return s.MovingAvg
}

func (s *MockSensor) SetMovingAvg(avg float64) {
	s.MovingAvg = avg
}

type MockActuator struct {
	ID       string
	Duty     int
	Err      error
	SetCalls int
}

func (a *MockActuator) GetId() string {
	return a.ID
}

func (a *MockActuator) GetConfig() configuration.FanConfig {
	return configuration.FanConfig{ID: a.ID}
}

func (a *MockActuator) GetDuty() (int, error) {
	return a.Duty, a.Err
}

func (a *MockActuator) SetDuty(duty int) error {
	a.SetCalls++
	if a.Err != nil {
		return a.Err
	}
	a.Duty = duty
	return nil
}

func testController(t *testing.T, config configuration.FanConfig) (*fanController, *MockSensor, *MockActuator, *Store) {
	store := testStore(t, config)
	sensor := &MockSensor{ID: config.Sensor}
	act := &MockActuator{ID: config.ID}
	controller := NewFanController(store, sensor, act, 100*time.Millisecond, time.Second, 1, 3).(*fanController)
	return controller, sensor, act, store
}

func TestLoopAppliesCurveDuty(t *testing.T) {
	// GIVEN a curve from (30, 20) to (70, 100)
	controller, sensor, act, _ := testController(t, testFanConfig("fan1"))
	sensor.Value = 45

	// WHEN
	err := controller.UpdateFanSpeed()

	// THEN 45° interpolates to 50%
	assert.NoError(t, err)
	assert.Equal(t, 50, act.Duty)
	status := controller.Status()
	assert.Equal(t, ModeAuto, status.Mode)
	assert.Equal(t, 50, status.CurrentDuty)
	assert.Equal(t, 45.0, status.LastTemperature)
	assert.False(t, status.Degraded)
}

func TestLoopHysteresisSuppressesSmallChanges(t *testing.T) {
	// GIVEN a fan with a hysteresis of 2° holding at 45°
	controller, sensor, act, _ := testController(t, testFanConfig("fan1"))
	sensor.Value = 45
	assert.NoError(t, controller.UpdateFanSpeed())
	assert.Equal(t, 1, act.SetCalls)

	// WHEN the temperature drifts by less than the hysteresis
	sensor.Value = 46
	assert.NoError(t, controller.UpdateFanSpeed())

	// THEN the duty is not recomputed
	assert.Equal(t, 1, act.SetCalls)
	assert.Equal(t, 50, act.Duty)
	// the reference temperature stays at the last accepted reading
	assert.Equal(t, 45.0, controller.Status().LastTemperature)

	// WHEN the cumulative drift from the accepted reading reaches the hysteresis
	sensor.Value = 49
	assert.NoError(t, controller.UpdateFanSpeed())

	// THEN the duty is recomputed
	assert.Equal(t, 2, act.SetCalls)
	assert.Equal(t, 58, act.Duty)
	assert.Equal(t, 49.0, controller.Status().LastTemperature)
}

func TestLoopManualMode(t *testing.T) {
	// GIVEN
	controller, sensor, act, store := testController(t, testFanConfig("fan1"))
	duty := 40
	assert.NoError(t, store.SetMode("fan1", ModeManual, &duty))
	sensor.Value = 65

	// WHEN
	assert.NoError(t, controller.UpdateFanSpeed())

	// THEN the fixed duty wins over the curve
	assert.Equal(t, 40, act.Duty)
	assert.Equal(t, ModeManual, controller.Status().Mode)
}

func TestLoopModeChangeBypassesHysteresis(t *testing.T) {
	// GIVEN a fan holding at 45° in auto mode
	controller, sensor, act, store := testController(t, testFanConfig("fan1"))
	sensor.Value = 45
	assert.NoError(t, controller.UpdateFanSpeed())
	assert.Equal(t, 50, act.Duty)

	// WHEN the user switches to manual while the temperature is unchanged
	duty := 40
	assert.NoError(t, store.SetMode("fan1", ModeManual, &duty))
	assert.NoError(t, controller.UpdateFanSpeed())

	// THEN the new duty takes effect immediately
	assert.Equal(t, 40, act.Duty)
}

func TestLoopEmergencyForcesMaxDuty(t *testing.T) {
	// GIVEN a curve topping out at 60% with an emergency threshold of 80°
	config := testFanConfig("fan1")
	config.DefaultCurve = []configuration.CurvePointConfig{
		{Temperature: 30, Duty: 20},
		{Temperature: 70, Duty: 60},
	}
	controller, sensor, act, _ := testController(t, config)

	// WHEN the temperature reaches the threshold
	sensor.Value = 85
	assert.NoError(t, controller.UpdateFanSpeed())

	// THEN the fan runs at max duty, above anything the curve allows
	assert.Equal(t, 100, act.Duty)
	assert.Equal(t, ModeEmergency, controller.Status().Mode)

	// WHEN the temperature recovers below threshold minus hysteresis
	sensor.Value = 50
	assert.NoError(t, controller.UpdateFanSpeed())

	// THEN the fan returns to its curve
	assert.Equal(t, 40, act.Duty)
	assert.Equal(t, ModeAuto, controller.Status().Mode)
}

func TestLoopSensorFailureKeepsDutyAndDegrades(t *testing.T) {
	// GIVEN a fan holding at 45°
	controller, sensor, act, _ := testController(t, testFanConfig("fan1"))
	sensor.Value = 45
	assert.NoError(t, controller.UpdateFanSpeed())
	assert.Equal(t, 50, act.Duty)

	// WHEN the sensor starts failing
	sensor.Err = assert.AnError
	assert.NoError(t, controller.UpdateFanSpeed())
	assert.NoError(t, controller.UpdateFanSpeed())

	// THEN the duty is retained and the fan is not yet degraded
	assert.Equal(t, 1, act.SetCalls)
	assert.Equal(t, 50, controller.Status().CurrentDuty)
	assert.False(t, controller.Status().Degraded)

	// WHEN the third consecutive read fails
	assert.NoError(t, controller.UpdateFanSpeed())

	// THEN the fan is flagged as degraded
	assert.True(t, controller.Status().Degraded)

	// WHEN the sensor recovers
	sensor.Err = nil
	sensor.Value = 49
	assert.NoError(t, controller.UpdateFanSpeed())

	// THEN the flag clears and control resumes
	assert.False(t, controller.Status().Degraded)
	assert.Equal(t, 58, act.Duty)
}

func TestLoopActuatorFailureRetriesNextTick(t *testing.T) {
	// GIVEN a fan holding at 45°
	controller, sensor, act, _ := testController(t, testFanConfig("fan1"))
	sensor.Value = 45
	assert.NoError(t, controller.UpdateFanSpeed())

	// WHEN a recompute is due but the actuator write fails
	act.Err = assert.AnError
	sensor.Value = 49
	assert.NoError(t, controller.UpdateFanSpeed())

	// THEN the duty is not considered applied
	assert.Equal(t, 50, controller.Status().CurrentDuty)
	assert.Equal(t, 45.0, controller.Status().LastTemperature)

	// WHEN the actuator recovers and the temperature barely moves
	act.Err = nil
	sensor.Value = 45.5
	assert.NoError(t, controller.UpdateFanSpeed())

	// THEN the pending retry bypasses the hysteresis gate
	assert.Equal(t, 51, act.Duty)
	assert.Equal(t, 51, controller.Status().CurrentDuty)
	assert.Equal(t, 45.5, controller.Status().LastTemperature)
}

func TestLoopScheduledEntryGovernsDuty(t *testing.T) {
	// GIVEN a scheduled fan with an overnight entry
	controller, sensor, act, store := testController(t, testFanConfig("fan1"))
	entry, err := store.CreateScheduleEntry("fan1", ScheduleEntryInput{
		Name:     "night",
		Start:    tod(22, 0),
		End:      tod(6, 0),
		Priority: 10,
		Enabled:  true,
		Curve:    nightCurve(),
	})
	assert.NoError(t, err)
	assert.NoError(t, store.SetMode("fan1", ModeScheduled, nil))
	controller.now = func() time.Time {
		return time.Date(2026, 8, 25, 23, 30, 0, 0, time.UTC)
	}

	// WHEN
	sensor.Value = 55
	assert.NoError(t, controller.UpdateFanSpeed())

	// THEN the entry's curve drives the fan
	assert.Equal(t, 20, act.Duty)
	status := controller.Status()
	assert.Equal(t, ModeScheduled, status.Mode)
	assert.NotNil(t, status.ActiveScheduleEntryID)
	assert.Equal(t, entry.ID, *status.ActiveScheduleEntryID)
}
