package modules

import (
	"github.com/gin-gonic/gin"

	repo "github.com/oksasatya/suraksha-api/internal/domain/repository"
	handlers "github.com/oksasatya/suraksha-api/internal/interface/http"
	"github.com/oksasatya/suraksha-api/internal/interface/middleware"
	"github.com/oksasatya/suraksha-api/pkg/helpers"
)

// UserModule wires the profile endpoints; every route needs a bearer token.
// GET /users/me, PUT /users, PUT /users/password, POST /users/upload,
// POST /users/email-verification, DELETE /users/delete
type UserModule struct {
	Handler  *handlers.UserHandler
	Sessions repo.SessionStore
	JWT      *helpers.JWTManager
	Limits   Limits
}

func NewUserModule(h *handlers.UserHandler, sessions repo.SessionStore, jwt *helpers.JWTManager, limits Limits) *UserModule {
	return &UserModule{Handler: h, Sessions: sessions, JWT: jwt, Limits: limits}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")
	users.Use(middleware.Auth(m.Sessions, m.JWT))
	{
		users.GET("/me", m.Handler.Me)
		users.PUT("", m.Handler.Update)
		users.PUT("/password", m.Handler.UpdatePassword)
		users.POST("/upload", m.Handler.UploadAvatar)
		users.DELETE("/delete", m.Handler.Delete)
		users.POST("/email-verification", m.Limits.PerMinute(6, middleware.KeyByUserID()), m.Handler.SendVerification)
	}
}
