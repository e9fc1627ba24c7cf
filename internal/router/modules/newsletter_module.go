package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/suraksha-api/internal/interface/http"
)

type NewsletterModule struct {
	Handler *handlers.NewsletterHandler
}

func NewNewsletterModule(h *handlers.NewsletterHandler) *NewsletterModule {
	return &NewsletterModule{Handler: h}
}

func (m *NewsletterModule) Register(rg *gin.RouterGroup) {
	rg.POST("/newsletter/subscribe", m.Handler.Subscribe)
	rg.POST("/newsletter/unsubscribe", m.Handler.Unsubscribe)
}
