package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestTokenPermissionsOpenWithoutTokens(t *testing.T) {
	// GIVEN
	permissions := NewTokenPermissions(nil)

	// WHEN / THEN
	assert.True(t, permissions.HasWriteCapability(""))
	assert.True(t, permissions.HasWriteCapability("anything"))
}

func TestTokenPermissionsRequireConfiguredToken(t *testing.T) {
	// GIVEN
	permissions := NewTokenPermissions([]string{"secret"})

	// WHEN / THEN
	assert.True(t, permissions.HasWriteCapability("secret"))
	assert.False(t, permissions.HasWriteCapability("other"))
	assert.False(t, permissions.HasWriteCapability(""))
}

func TestActorOf(t *testing.T) {
	// GIVEN
	e := echo.New()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(echo.HeaderAuthorization, "Bearer secret")
	c := e.NewContext(request, httptest.NewRecorder())

	// WHEN
	actor := actorOf(c)

	// THEN
	assert.Equal(t, "secret", actor)
}

func TestActorOfWithoutBearerToken(t *testing.T) {
	// GIVEN
	e := echo.New()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(echo.HeaderAuthorization, "Basic dXNlcjpwYXNz")
	c := e.NewContext(request, httptest.NewRecorder())

	// WHEN
	actor := actorOf(c)

	// THEN
	assert.Equal(t, "", actor)
}
