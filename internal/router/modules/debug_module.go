package modules

import (
	"expvar"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/suraksha-api/internal/interface/middleware"
)

type DebugModule struct {
	Limits Limits
}

func NewDebugModule(limits Limits) *DebugModule { return &DebugModule{Limits: limits} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// expvar metrics, rate-limited per IP
	rg.GET("/debug/vars", m.Limits.PerMinute(120, middleware.KeyByIP()), gin.WrapH(expvar.Handler()))
}
