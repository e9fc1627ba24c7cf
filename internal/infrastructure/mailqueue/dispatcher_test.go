package mailqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/suraksha-api/config"
	"github.com/oksasatya/suraksha-api/internal/domain/entity"
	"github.com/oksasatya/suraksha-api/pkg/mailer"
)

type recordingPublisher struct {
	bodies [][]byte
	err    error
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, body any) error {
	if p.err != nil {
		return p.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish without deadline")
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	p.bodies = append(p.bodies, b)
	return nil
}

type recordingSender struct {
	to, subject, text, html string
}

func (s *recordingSender) Send(_ context.Context, to, subject, text, html string) error {
	s.to, s.subject, s.text, s.html = to, subject, text, html
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		AppName:       "suraksha-api",
		CompanyName:   "Suraksha",
		VerifyLinkTTL: time.Hour,
		ResetTokenTTL: 30 * time.Minute,
	}
}

var jane = &entity.User{ID: "u-1", Email: "jane@example.com", Firstname: "Jane", Username: "jane"}

func TestQueueDispatcher_PublishesTemplateJob(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewQueueDispatcher(pub, testConfig())

	require.NoError(t, d.SendVerification(context.Background(), jane, "http://api.test/api/email/verify/u-1/abc?signature=x"))
	require.Len(t, pub.bodies, 1)

	var job mailer.EmailJob
	require.NoError(t, json.Unmarshal(pub.bodies[0], &job))
	assert.Equal(t, "jane@example.com", job.To)
	assert.Equal(t, "verify_email", job.Template)
	assert.Equal(t, "http://api.test/api/email/verify/u-1/abc?signature=x", job.Data["VerifyURL"])
	assert.Equal(t, "Jane", job.Data["Name"])
	assert.Equal(t, "1 hour", job.Data["ExpiresInText"])
}

func TestQueueDispatcher_PublishFailure(t *testing.T) {
	d := NewQueueDispatcher(&recordingPublisher{err: errors.New("channel closed")}, testConfig())

	err := d.SendPasswordReset(context.Background(), jane, "http://app.test/reset-password?token=t")
	assert.ErrorContains(t, err, "channel closed")
}

func TestDirectDispatcher_RendersTemplates(t *testing.T) {
	s := &recordingSender{}
	d := NewDirectDispatcher(s, testConfig())

	require.NoError(t, d.SendPasswordReset(context.Background(), jane, "http://app.test/reset-password?token=t&email=jane%40example.com"))
	assert.Equal(t, "jane@example.com", s.to)
	assert.Equal(t, "Reset your suraksha-api password", s.subject)
	assert.Contains(t, s.text, "http://app.test/reset-password?token=t&email=jane%40example.com")
	assert.Contains(t, s.text, "30 minutes")
	assert.Contains(t, s.html, "Reset Password")
}
