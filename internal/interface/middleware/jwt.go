package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/medication-reminder/pkg/helpers"
)

// AccessToken reads the access_token cookie, falling back to an
// "Authorization: Bearer" header for non-browser clients.
func AccessToken(c *gin.Context) string {
	if token, err := c.Cookie(helpers.AccessCookie); err == nil && token != "" {
		return token
	}
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RefreshToken reads the refresh_token cookie, falling back to the
// X-Refresh-Token header.
func RefreshToken(c *gin.Context) string {
	if token, err := c.Cookie(helpers.RefreshCookie); err == nil && token != "" {
		return token
	}
	return strings.TrimSpace(c.GetHeader("X-Refresh-Token"))
}
