package api

import (
	"net/http"

	"github.com/hsadmin/fancontrol/internal/curve"
	"github.com/hsadmin/fancontrol/internal/fanctrl"
	"github.com/labstack/echo/v4"
	"golang.org/x/exp/slices"
)

func registerFanEndpoints(rest *echo.Echo, service *fanctrl.Service) {
	group := rest.Group("/fan")

	group.GET("/", getFans(service))
	group.GET("/:"+urlParamFanId+"/", getFan(service))
	group.PUT("/:"+urlParamFanId+"/mode/", setFanMode(service))
	group.PUT("/:"+urlParamFanId+"/curve/", setFanCurve(service))
}

// returns the runtime state of all fans
func getFans(service *fanctrl.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		statuses := service.Statuses()
		slices.SortFunc(statuses, func(a, b fanctrl.FanStatus) int {
			if a.FanID < b.FanID {
				return -1
			}
			if a.FanID > b.FanID {
				return 1
			}
			return 0
		})
		return c.JSONPretty(http.StatusOK, statuses, indentationChar)
	}
}

func getFan(service *fanctrl.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		fanId := c.Param(urlParamFanId)
		status, err := service.GetStatus(fanId)
		if err != nil {
			return returnForError(c, err)
		}
		return c.JSONPretty(http.StatusOK, status, indentationChar)
	}
}

type setModeRequest struct {
	Mode       fanctrl.Mode `json:"mode"`
	ManualDuty *int         `json:"manualDuty,omitempty"`
}

func setFanMode(service *fanctrl.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		fanId := c.Param(urlParamFanId)

		var request setModeRequest
		if err := c.Bind(&request); err != nil {
			return returnBadRequest(c, err)
		}

		if err := service.SetMode(actorOf(c), fanId, request.Mode, request.ManualDuty); err != nil {
			return returnForError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func setFanCurve(service *fanctrl.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		fanId := c.Param(urlParamFanId)

		var points []curve.Point
		if err := c.Bind(&points); err != nil {
			return returnBadRequest(c, err)
		}

		if err := service.SetDefaultCurve(actorOf(c), fanId, points); err != nil {
			return returnForError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
