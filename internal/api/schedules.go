package api

import (
	"net/http"
	"strconv"

	"github.com/hsadmin/fancontrol/internal/fanctrl"
	"github.com/labstack/echo/v4"
)

func registerScheduleEndpoints(rest *echo.Echo, service *fanctrl.Service) {
	group := rest.Group("/fan/:" + urlParamFanId + "/schedule")

	group.GET("/", getScheduleEntries(service))
	group.GET("/active/", getActiveScheduleEntry(service))
	group.POST("/", createScheduleEntry(service))
	group.PUT("/:"+urlParamEntryId+"/", updateScheduleEntry(service))
	group.DELETE("/:"+urlParamEntryId+"/", deleteScheduleEntry(service))
}

func getScheduleEntries(service *fanctrl.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		fanId := c.Param(urlParamFanId)
		entries, err := service.GetScheduleEntries(fanId)
		if err != nil {
			return returnForError(c, err)
		}
		return c.JSONPretty(http.StatusOK, entries, indentationChar)
	}
}

// returns the entry currently governing the fan, or no content when the
// schedule has no active entry right now
func getActiveScheduleEntry(service *fanctrl.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		fanId := c.Param(urlParamFanId)
		entry, err := service.GetActiveScheduleEntry(fanId)
		if err != nil {
			return returnForError(c, err)
		}
		if entry == nil {
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSONPretty(http.StatusOK, entry, indentationChar)
	}
}

func createScheduleEntry(service *fanctrl.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		fanId := c.Param(urlParamFanId)

		var input fanctrl.ScheduleEntryInput
		if err := c.Bind(&input); err != nil {
			return returnBadRequest(c, err)
		}

		entry, err := service.CreateScheduleEntry(actorOf(c), fanId, input)
		if err != nil {
			return returnForError(c, err)
		}
		return c.JSONPretty(http.StatusCreated, entry, indentationChar)
	}
}

type updateScheduleEntryRequest struct {
	fanctrl.ScheduleEntryInput

	// Version is the version the caller last saw; a mismatch rejects
	// the update instead of overwriting a concurrent edit
	Version int64 `json:"version"`
}

func updateScheduleEntry(service *fanctrl.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		fanId := c.Param(urlParamFanId)
		entryId, err := strconv.Atoi(c.Param(urlParamEntryId))
		if err != nil {
			return returnBadRequest(c, err)
		}

		var request updateScheduleEntryRequest
		if err := c.Bind(&request); err != nil {
			return returnBadRequest(c, err)
		}

		entry, err := service.UpdateScheduleEntry(actorOf(c), fanId, entryId, request.ScheduleEntryInput, request.Version)
		if err != nil {
			return returnForError(c, err)
		}
		return c.JSONPretty(http.StatusOK, entry, indentationChar)
	}
}

func deleteScheduleEntry(service *fanctrl.Service) echo.HandlerFunc {
	return func(c echo.Context) error {
		fanId := c.Param(urlParamFanId)
		entryId, err := strconv.Atoi(c.Param(urlParamEntryId))
		if err != nil {
			return returnBadRequest(c, err)
		}

		var expectedVersion int64
		if raw := c.QueryParam("version"); raw != "" {
			expectedVersion, err = strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return returnBadRequest(c, err)
			}
		}

		if err := service.DeleteScheduleEntry(actorOf(c), fanId, entryId, expectedVersion); err != nil {
			return returnForError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
