package fanctrl

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/hsadmin/fancontrol/internal/actuator"
	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/hysteresis"
	"github.com/hsadmin/fancontrol/internal/sensors"
	"github.com/hsadmin/fancontrol/internal/ui"
	"github.com/hsadmin/fancontrol/internal/util"
)

type FanController interface {
	// Run drives the fan until the context is cancelled
	Run(ctx context.Context) error

	// UpdateFanSpeed runs a single control tick
	UpdateFanSpeed() error

	// Status returns the most recently published runtime state
	Status() FanStatus
}

type fanController struct {
	source   SnapshotSource
	sensor   sensors.Sensor
	actuator actuator.Actuator

	arbiter *Arbiter
	gate    *hysteresis.Gate

	updateRate        time.Duration
	ioTimeout         time.Duration
	maxSensorFailures int

	tempWindow     *rolling.PointPolicy
	tempWindowSize int
	windowPrimed   bool

	sensorFailures int
	retryPending   bool
	currentDuty    int

	status atomic.Pointer[FanStatus]

	now func() time.Time
}

func NewFanController(
	source SnapshotSource,
	sensor sensors.Sensor,
	act actuator.Actuator,
	updateRate time.Duration,
	ioTimeout time.Duration,
	tempWindowSize int,
	maxSensorFailures int,
) FanController {
	f := &fanController{
		source:            source,
		sensor:            sensor,
		actuator:          act,
		arbiter:           NewArbiter(),
		gate:              hysteresis.NewGate(),
		updateRate:        updateRate,
		ioTimeout:         ioTimeout,
		tempWindow:        util.CreateRollingWindow(tempWindowSize),
		tempWindowSize:    tempWindowSize,
		maxSensorFailures: maxSensorFailures,
		now:               time.Now,
	}
	f.status.Store(&FanStatus{
		FanID: act.GetId(),
	})
	return f
}

func (f *fanController) Run(ctx context.Context) error {
	fanId := f.actuator.GetId()
	ui.Info("Starting control loop for fan '%s'", fanId)

	tick := time.Tick(f.updateRate)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			if err := f.UpdateFanSpeed(); err != nil {
				// ticks are never fatal, a single fan failing
				// repeatedly must not take down its loop
				ui.Error("Error in control loop for fan %s: %v", fanId, err)
			}
		}
	}
}

func (f *fanController) Status() FanStatus {
	return *f.status.Load()
}

func (f *fanController) UpdateFanSpeed() error {
	fanId := f.actuator.GetId()

	snapshot, ok := f.source.Snapshot(fanId)
	if !ok {
		return fmt.Errorf("no configuration snapshot for fan %s", fanId)
	}
	config := snapshot.Config

	temperature, err := f.readTemperature()
	if err != nil {
		f.sensorFailures++
		ui.Warning("Error reading sensor %s for fan %s: %v", config.Sensor, fanId, err)

		// keep the previous duty and reference temperature, retry on
		// the next tick; surface sustained failures as degraded
		previous := f.status.Load()
		updated := *previous
		updated.Degraded = f.sensorFailures >= f.maxSensorFailures
		updated.LastUpdate = f.now()
		f.status.Store(&updated)
		return nil
	}
	f.sensorFailures = 0

	smoothed := f.smooth(temperature)
	f.sensor.SetMovingAvg(smoothed)

	decision := f.arbiter.Decide(snapshot, smoothed, configuration.TimeOfDayFromTime(f.now()))
	f.notifyOnEmergencyTransition(decision, smoothed, config)

	var candidate int
	switch decision.Mode {
	case ModeManual:
		candidate = decision.ManualDuty
	case ModeEmergency:
		candidate = config.MaxDuty
	default:
		candidate = decision.Curve.Evaluate(smoothed)
	}
	// uniform clamp, manual and emergency satisfy this by construction
	candidate = int(util.Coerce(float64(candidate), float64(config.MinDuty), float64(config.MaxDuty)))

	forced := decision.Forced || decision.Mode == ModeEmergency || f.retryPending
	if f.gate.ShouldRecompute(smoothed, config.HysteresisDegrees, forced) {
		if err := f.writeDuty(candidate); err != nil {
			// duty is not considered applied, force a retry next tick
			f.retryPending = true
			ui.Warning("Error setting duty of fan %s to %d, retrying next tick: %v", fanId, candidate, err)
		} else {
			f.retryPending = false
			f.currentDuty = candidate
			f.gate.Accept(smoothed)
			ui.Debug("Fan %s: %.1f° -> %d%% (%s)", fanId, smoothed, candidate, decision.Mode)
		}
	}

	f.publish(decision)
	return nil
}

// smooth feeds the given reading into the rolling window and returns
// the windowed average the engine operates on.
func (f *fanController) smooth(temperature float64) float64 {
	if !f.windowPrimed {
		util.FillWindow(f.tempWindow, f.tempWindowSize, temperature)
		f.windowPrimed = true
	} else {
		f.tempWindow.Append(temperature)
	}
	return util.GetWindowAvg(f.tempWindow)
}

func (f *fanController) notifyOnEmergencyTransition(decision Decision, temperature float64, config configuration.FanConfig) {
	previous := f.status.Load()
	if decision.Mode == ModeEmergency && previous.Mode != ModeEmergency {
		ui.WarningAndNotify(
			"Emergency fan speed",
			"Fan %s reached %.1f° (emergency threshold %.1f°), forcing maximum speed",
			config.ID, temperature, config.EmergencyTemperature)
	} else if decision.Mode != ModeEmergency && previous.Mode == ModeEmergency {
		ui.Info("Fan %s recovered from emergency at %.1f°", config.ID, temperature)
	}
}

func (f *fanController) publish(decision Decision) {
	status := &FanStatus{
		FanID:                 f.actuator.GetId(),
		Mode:                  decision.Mode,
		ManualDuty:            decision.ManualDuty,
		LastTemperature:       f.gate.LastAccepted(),
		CurrentDuty:           f.currentDuty,
		ActiveScheduleEntryID: decision.ActiveEntryID,
		Degraded:              false,
		LastUpdate:            f.now(),
	}
	f.status.Store(status)
}

// readTemperature reads the sensor, bounded by the per-tick io timeout
// so a stuck backend cannot stall the loop indefinitely.
func (f *fanController) readTemperature() (float64, error) {
	type result struct {
		value float64
		err   error
	}
	resultChan := make(chan result, 1)
	go func() {
		value, err := f.sensor.GetValue()
		resultChan <- result{value, err}
	}()

	select {
	case r := <-resultChan:
		return r.value, r.err
	case <-time.After(f.ioTimeout):
		return 0, fmt.Errorf("sensor read timed out after %s", f.ioTimeout)
	}
}

func (f *fanController) writeDuty(duty int) error {
	errChan := make(chan error, 1)
	go func() {
		errChan <- f.actuator.SetDuty(duty)
	}()

	select {
	case err := <-errChan:
		return err
	case <-time.After(f.ioTimeout):
		return fmt.Errorf("actuator write timed out after %s", f.ioTimeout)
	}
}
