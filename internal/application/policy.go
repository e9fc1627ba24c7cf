package application

import (
	"github.com/sirupsen/logrus"
)

// FailurePolicy decides what happens to downstream failures (storage URL
// resolution, mail dispatch). With Suppress set the failure is reported and
// the caller degrades; otherwise the raw error is handed back for visibility.
type FailurePolicy struct {
	Suppress bool
	Logger   *logrus.Logger
}

// Report logs err with fields regardless of the suppression switch.
func (p FailurePolicy) Report(msg string, err error, fields logrus.Fields) {
	if p.Logger == nil || err == nil {
		return
	}
	p.Logger.WithError(err).WithFields(fields).Error(msg)
}

// Handle reports err and returns true when the caller should degrade
// instead of propagating it.
func (p FailurePolicy) Handle(msg string, err error, fields logrus.Fields) bool {
	if !p.Suppress {
		return false
	}
	p.Report(msg, err, fields)
	return true
}
