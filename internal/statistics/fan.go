package statistics

import (
	"github.com/hsadmin/fancontrol/internal/fanctrl"
	"github.com/prometheus/client_golang/prometheus"
)

const fanSubsystem = "fan"

// FanCollector exposes the runtime state of all fans as published by
// their control loops.
type FanCollector struct {
	service *fanctrl.Service

	duty        *prometheus.Desc
	temperature *prometheus.Desc
	mode        *prometheus.Desc
	degraded    *prometheus.Desc
}

func NewFanCollector(service *fanctrl.Service) *FanCollector {
	return &FanCollector{
		service: service,
		duty: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "duty"),
			"Duty cycle (in percent) currently applied to the fan",
			[]string{"id"}, nil,
		),
		temperature: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "temperature"),
			"Temperature (in degrees celsius) of the last sensor reading accepted by the fan's hysteresis gate",
			[]string{"id"}, nil,
		),
		mode: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "mode"),
			"Effective control mode of the fan, 1 for the active mode",
			[]string{"id", "mode"}, nil,
		),
		degraded: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "degraded"),
			"1 while the fan's sensor keeps failing and the last known duty is held",
			[]string{"id"}, nil,
		),
	}
}

func (collector *FanCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.duty
	ch <- collector.temperature
	ch <- collector.mode
	ch <- collector.degraded
}

// Collect implements required collect function for all prometheus collectors
func (collector *FanCollector) Collect(ch chan<- prometheus.Metric) {
	for _, status := range collector.service.Statuses() {
		fanId := status.FanID
		ch <- prometheus.MustNewConstMetric(collector.duty, prometheus.GaugeValue, float64(status.CurrentDuty), fanId)
		ch <- prometheus.MustNewConstMetric(collector.temperature, prometheus.GaugeValue, status.LastTemperature, fanId)
		ch <- prometheus.MustNewConstMetric(collector.mode, prometheus.GaugeValue, 1, fanId, status.Mode.String())
		degraded := 0.0
		if status.Degraded {
			degraded = 1.0
		}
		ch <- prometheus.MustNewConstMetric(collector.degraded, prometheus.GaugeValue, degraded, fanId)
	}
}
