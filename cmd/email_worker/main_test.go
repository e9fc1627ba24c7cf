package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/suraksha-api/pkg/mailer"
	mailtpl "github.com/oksasatya/suraksha-api/pkg/mailer/templates"
)

type recordingSender struct {
	to, subject, text, html string
	err                     error
}

func (s *recordingSender) Send(_ context.Context, to, subject, text, html string) error {
	s.to, s.subject, s.text, s.html = to, subject, text, html
	return s.err
}

func encode(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestProcess_RendersTemplate(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := &recordingSender{}

	body := encode(t, mailer.EmailJob{
		To:       "jane@example.com",
		Template: mailtpl.ForgotPassword,
		Data: map[string]any{
			"Name":     "Jane",
			"AppName":  "Suraksha",
			"ResetURL": "http://app.test/reset-password?token=abc",
		},
	})
	assert.Equal(t, ack, process(context.Background(), s, body, logger))
	assert.Equal(t, "jane@example.com", s.to)
	assert.Equal(t, "Reset your Suraksha password", s.subject)
	assert.Contains(t, s.html, "http://app.test/reset-password?token=abc")
}

func TestProcess_DropsBadMessages(t *testing.T) {
	logger, hook := test.NewNullLogger()
	s := &recordingSender{}

	assert.Equal(t, drop, process(context.Background(), s, []byte("{not json"), logger))
	assert.Equal(t, drop, process(context.Background(), s, encode(t, mailer.EmailJob{To: "a@example.com", Template: "universal"}), logger))
	assert.Empty(t, s.to)
	assert.Len(t, hook.Entries, 2)
}

func TestProcess_RetriesFailedDelivery(t *testing.T) {
	logger, _ := test.NewNullLogger()
	s := &recordingSender{err: errors.New("mailgun 503")}

	body := encode(t, mailer.EmailJob{To: "a@example.com", Subject: "Hi", Text: "hello"})
	assert.Equal(t, retry, process(context.Background(), s, body, logger))
}
