package api

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// TokenPermissions grants write capability to requests carrying one of
// the configured bearer tokens. With no tokens configured every caller
// may write, matching a trusted-network home server setup.
type TokenPermissions struct {
	writeTokens map[string]struct{}
}

func NewTokenPermissions(tokens []string) *TokenPermissions {
	writeTokens := map[string]struct{}{}
	for _, token := range tokens {
		writeTokens[token] = struct{}{}
	}
	return &TokenPermissions{
		writeTokens: writeTokens,
	}
}

func (p *TokenPermissions) HasWriteCapability(actor string) bool {
	if len(p.writeTokens) == 0 {
		return true
	}
	_, ok := p.writeTokens[actor]
	return ok
}

// actorOf extracts the bearer token of a request. Requests without one
// yield the empty actor, which never carries write capability when
// tokens are configured.
func actorOf(c echo.Context) string {
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}
