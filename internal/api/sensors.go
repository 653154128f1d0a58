package api

import (
	"net/http"

	"github.com/hsadmin/fancontrol/internal/sensors"
	"github.com/labstack/echo/v4"
)

func registerSensorEndpoints(rest *echo.Echo) {
	group := rest.Group("/sensor")

	group.GET("/", getSensors)
	group.GET("/:"+urlParamFanId+"/", getSensor)
}

type sensorReading struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// returns the smoothed readings of all registered sensors
func getSensors(c echo.Context) error {
	var readings []sensorReading
	for item := range sensors.SensorMap.IterBuffered() {
		readings = append(readings, sensorReading{
			ID:    item.Key,
			Value: item.Val.GetMovingAvg(),
		})
	}
	return c.JSONPretty(http.StatusOK, readings, indentationChar)
}

func getSensor(c echo.Context) error {
	id := c.Param(urlParamFanId)
	sensor, ok := sensors.GetSensor(id)
	if !ok {
		return c.JSONPretty(http.StatusNotFound, &Result{
			Name:    "Not found",
			Message: "No sensor with id '" + id + "' found",
		}, indentationChar)
	}
	return c.JSONPretty(http.StatusOK, sensorReading{
		ID:    sensor.GetId(),
		Value: sensor.GetMovingAvg(),
	}, indentationChar)
}
