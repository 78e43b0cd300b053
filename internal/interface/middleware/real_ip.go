package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// RealIP stores the client address under "real_ip". The first valid value
// wins: CF-Connecting-IP, the left-most X-Forwarded-For entry, X-Real-IP,
// then c.ClientIP().
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", realIP(c))
		c.Next()
	}
}

func realIP(c *gin.Context) string {
	candidates := []string{c.GetHeader("CF-Connecting-IP")}
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		candidates = append(candidates, strings.SplitN(xff, ",", 2)[0])
	}
	candidates = append(candidates, c.GetHeader("X-Real-IP"))
	for _, raw := range candidates {
		if ip := net.ParseIP(strings.TrimSpace(raw)); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}
