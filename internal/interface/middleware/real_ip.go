package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/suraksha-api/internal/application"
)

func resolveIP(c *gin.Context) string {
	// Cloudflare header first
	if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
		if ip := net.ParseIP(cf); ip != nil {
			return ip.String()
		}
	}
	// X-Forwarded-For: take left-most
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}

// RealIP sets the real client IP into Gin context (key: "real_ip") and
// attaches ip + user agent to the request context for the audit trail.
// Priority: CF-Connecting-IP, X-Forwarded-For (left-most), c.ClientIP().
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := resolveIP(c)
		c.Set("real_ip", ip)
		ctx := application.WithRequestMeta(c.Request.Context(), application.RequestMeta{
			IP:        ip,
			UserAgent: c.GetHeader("User-Agent"),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
