package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/suraksha-api/internal/application"
	"github.com/oksasatya/suraksha-api/internal/interface/middleware"
	"github.com/oksasatya/suraksha-api/pkg/response"
)

type AuthHandler struct {
	Svc   *application.AuthService
	Users *application.UserService
	Res   Serializer
	Errs  Errors
}

func NewAuthHandler(svc *application.AuthService, users *application.UserService, res Serializer, errs Errors) *AuthHandler {
	return &AuthHandler{Svc: svc, Users: users, Res: res, Errs: errs}
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResource `json:"user"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in application.RegisterInput
	if !h.Errs.bindJSON(c, &in) {
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), in)
	if err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.Res.User(u), "User created successfully.")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in application.LoginInput
	if !h.Errs.bindJSON(c, &in) {
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), in)
	if err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success(c, http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      h.Res.User(res.User),
	}, "Login successful")
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Users.Logout(c.Request.Context(), c.GetString(middleware.CtxUserIDKey)); err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "User logged out.")
}

// User GET /api/auth/user
func (h *AuthHandler) User(c *gin.Context) {
	u, err := h.Users.GetProfile(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success(c, http.StatusOK, h.Res.User(u), "Successful")
}

// ForgotPassword POST /api/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var in application.ForgotPasswordInput
	if !h.Errs.bindJSON(c, &in) {
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), in); err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "We have emailed your password reset link!")
}

// ResetPassword POST /api/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var in application.ResetPasswordInput
	if !h.Errs.bindJSON(c, &in) {
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), in); err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "Your password has been reset!")
}

// VerifyEmail GET /api/email/verify/:id/:hash (signed)
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.Svc.VerifyEmail(c.Request.Context(), c.Param("id"), c.Param("hash")); err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.NoContent(c)
}
