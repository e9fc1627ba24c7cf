package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/suraksha-api/internal/interface/middleware"
)

// Limits builds Redis-backed throttles shared by the modules.
type Limits struct {
	Redis *redis.Client
	Allow middleware.AllowFunc
}

// PerMinute allows max hits per key each minute.
func (l Limits) PerMinute(max int, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(l.Redis, max, time.Minute, key, l.Allow)
}
