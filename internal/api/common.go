package api

import (
	"errors"
	"net/http"

	"github.com/hsadmin/fancontrol/internal/fanctrl"
	"github.com/labstack/echo/v4"
)

const (
	urlParamFanId   = "id"
	urlParamEntryId = "entryId"
	indentationChar = "  "
)

type (
	Result struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	}
)

// returnForError maps the engine's error taxonomy onto HTTP status codes.
func returnForError(c echo.Context, e error) error {
	var validationError *fanctrl.ValidationError
	var capabilityError *fanctrl.CapabilityError
	var notFoundError *fanctrl.NotFoundError

	switch {
	case errors.As(e, &validationError):
		return c.JSONPretty(http.StatusBadRequest, &Result{
			Name:    "Validation failed",
			Message: e.Error(),
		}, indentationChar)
	case errors.As(e, &capabilityError):
		return c.JSONPretty(http.StatusForbidden, &Result{
			Name:    "Forbidden",
			Message: e.Error(),
		}, indentationChar)
	case errors.As(e, &notFoundError):
		return c.JSONPretty(http.StatusNotFound, &Result{
			Name:    "Not found",
			Message: e.Error(),
		}, indentationChar)
	}

	return c.JSONPretty(http.StatusInternalServerError, &Result{
		Name:    "Unknown Error",
		Message: e.Error(),
	}, indentationChar)
}

// returnBadRequest rejects a request with a malformed body or parameter.
func returnBadRequest(c echo.Context, e error) error {
	return c.JSONPretty(http.StatusBadRequest, &Result{
		Name:    "Bad request",
		Message: e.Error(),
	}, indentationChar)
}
