package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/suraksha-api/internal/application"
	"github.com/oksasatya/suraksha-api/pkg/response"
	"github.com/oksasatya/suraksha-api/pkg/validation"
)

const invalidDataMessage = "The given data was invalid."

// Errors maps failures onto the response envelope. Expose adds the raw
// cause to the body; it is on whenever downstream failures are not
// suppressed.
type Errors struct {
	Expose bool
	Logger *logrus.Logger
}

func NewErrors(policy application.FailurePolicy) Errors {
	return Errors{Expose: !policy.Suppress, Logger: policy.Logger}
}

func (e Errors) Write(c *gin.Context, err error) {
	var ae *application.Error
	if !errors.As(err, &ae) {
		e.log(c, err)
		response.Error[any](c, http.StatusInternalServerError, "Server Error", nil, e.raw(err))
		return
	}
	var cause interface{}
	if ae.Kind == application.KindService || ae.Kind == application.KindUnknown {
		e.log(c, err)
		cause = e.raw(ae.Err)
	}
	response.Error[any](c, ae.Kind.Status(), ae.Message, ae.Details, cause)
}

// Invalid answers 422 with the given field details.
func (e Errors) Invalid(c *gin.Context, details map[string]string) {
	response.Error[any](c, http.StatusUnprocessableEntity, invalidDataMessage, details, nil)
}

func (e Errors) raw(err error) interface{} {
	if !e.Expose || err == nil {
		return nil
	}
	return err.Error()
}

func (e Errors) log(c *gin.Context, err error) {
	if e.Logger == nil {
		return
	}
	e.Logger.WithError(err).WithFields(logrus.Fields{
		"request_id": c.GetString("request_id"),
		"path":       c.FullPath(),
	}).Error("request failed")
}

// bindJSON decodes the body into dst, answering 422 on malformed input.
// Field rules are enforced by the services.
func (e Errors) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		e.Invalid(c, validation.ToDetails(err))
		return false
	}
	return true
}
