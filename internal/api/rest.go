package api

import (
	"net/http"

	"github.com/hsadmin/fancontrol/internal/fanctrl"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func CreateRestService(service *fanctrl.Service) *echo.Echo {
	echoRest := echo.New()
	echoRest.HideBanner = true

	// Root level middleware
	echoRest.Pre(middleware.AddTrailingSlash())

	echoRest.Use(middleware.Secure())

	echoRest.Use(middleware.Logger())
	echoRest.Use(middleware.Recover())
	echoRest.Use(echoprometheus.NewMiddleware("fancontrol_api"))

	echoRest.GET("/alive/", isAlive)

	registerFanEndpoints(echoRest, service)
	registerScheduleEndpoints(echoRest, service)
	registerSensorEndpoints(echoRest)

	return echoRest
}

// returns an empty "ok" answer
func isAlive(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}
