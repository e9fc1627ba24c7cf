package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/suraksha-api/pkg/response"
)

const apiBanner = "Suraksha Restful Application Programming Interface Version 1"

type Registry struct {
	Engine       *gin.Engine
	API          *gin.RouterGroup
	SupportEmail string
	middlewares  []gin.HandlerFunc
	modules      []Module
}

func NewRegistry(engine *gin.Engine, supportEmail string) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api, SupportEmail: supportEmail}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll mounts the API banner, every module and the 404 fallback.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	bannerModule.Register(r.API)
	for _, m := range r.modules {
		m.Register(r.API)
	}
	r.Engine.NoRoute(func(c *gin.Context) {
		response.Error[any](c, http.StatusNotFound, "Page not Found. If error persists, contact "+r.SupportEmail, nil, nil)
	})
}
