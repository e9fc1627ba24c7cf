package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/suraksha-api/internal/application"
	"github.com/oksasatya/suraksha-api/pkg/response"
)

type NewsletterHandler struct {
	Svc  *application.NewsletterService
	Errs Errors
}

func NewNewsletterHandler(svc *application.NewsletterService, errs Errors) *NewsletterHandler {
	return &NewsletterHandler{Svc: svc, Errs: errs}
}

// Subscribe POST /api/newsletter/subscribe
func (h *NewsletterHandler) Subscribe(c *gin.Context) {
	var in application.NewsletterInput
	if !h.Errs.bindJSON(c, &in) {
		return
	}
	if err := h.Svc.Subscribe(c.Request.Context(), in); err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success(c, http.StatusOK, []any{}, "You have been successfully subscribed to our newsletter.")
}

// Unsubscribe POST /api/newsletter/unsubscribe
func (h *NewsletterHandler) Unsubscribe(c *gin.Context) {
	var in application.NewsletterInput
	if !h.Errs.bindJSON(c, &in) {
		return
	}
	if err := h.Svc.Unsubscribe(c.Request.Context(), in); err != nil {
		h.Errs.Write(c, err)
		return
	}
	response.Success(c, http.StatusOK, []any{}, "You have been successfully unsubscribed to our newsletter.")
}
