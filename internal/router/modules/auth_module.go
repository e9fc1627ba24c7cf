package modules

import (
	"github.com/gin-gonic/gin"

	repo "github.com/oksasatya/suraksha-api/internal/domain/repository"
	handlers "github.com/oksasatya/suraksha-api/internal/interface/http"
	"github.com/oksasatya/suraksha-api/internal/interface/middleware"
	"github.com/oksasatya/suraksha-api/pkg/helpers"
)

// AuthModule serves /auth/* and the signed email verification link.
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Sessions repo.SessionStore
	JWT      *helpers.JWTManager
	Signer   *helpers.URLSigner
	Limits   Limits
}

func NewAuthModule(h *handlers.AuthHandler, sessions repo.SessionStore, jwt *helpers.JWTManager, signer *helpers.URLSigner, limits Limits) *AuthModule {
	return &AuthModule{Handler: h, Sessions: sessions, JWT: jwt, Signer: signer, Limits: limits}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/register", m.Handler.Register)
	rg.POST("/auth/login", m.Handler.Login)
	rg.POST("/auth/forgot-password", m.Handler.ForgotPassword)
	rg.POST("/auth/reset-password", m.Handler.ResetPassword)

	rg.GET("/email/verify/:id/:hash",
		middleware.Signed(m.Signer),
		m.Limits.PerMinute(6, middleware.KeyByIPAndPath()),
		m.Handler.VerifyEmail,
	)

	auth := rg.Group("/auth")
	auth.Use(middleware.Auth(m.Sessions, m.JWT))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/user", m.Handler.User)
	}
}
