package helpers

import (
	"os"

	"github.com/sirupsen/logrus"
)

// NewLogger creates the process logger. Every entry carries app and env.
func NewLogger(appName, env string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if env == "development" {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.InfoLevel)
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	}
	logger.AddHook(DefaultFields(logrus.Fields{"app": appName, "env": env}))
	logger.Debug("logger initialized")
	return logger
}

// DefaultFields returns a hook that adds fields to entries that lack them.
func DefaultFields(fields logrus.Fields) logrus.Hook {
	return defaultFieldsHook(fields)
}

type defaultFieldsHook logrus.Fields

func (h defaultFieldsHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h defaultFieldsHook) Fire(e *logrus.Entry) error {
	for k, v := range h {
		if _, ok := e.Data[k]; !ok {
			e.Data[k] = v
		}
	}
	return nil
}
