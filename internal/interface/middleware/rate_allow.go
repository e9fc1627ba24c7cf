package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limiter for loopback and private callers
// (10/8, 172.16/12, 192.168/16, fc00::/7).
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		parsed := net.ParseIP(ipFromCtx(c))
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}

// BypassPrivate returns AllowPrivateIP when enabled, otherwise nil (no bypass).
func BypassPrivate(enabled bool) AllowFunc {
	if !enabled {
		return nil
	}
	return AllowPrivateIP()
}
