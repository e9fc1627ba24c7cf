package mailqueue

import (
	"context"
	"fmt"
	"time"

	"github.com/oksasatya/suraksha-api/config"
	"github.com/oksasatya/suraksha-api/internal/domain/entity"
	"github.com/oksasatya/suraksha-api/pkg/helpers"
	"github.com/oksasatya/suraksha-api/pkg/mailer"
	mailtpl "github.com/oksasatya/suraksha-api/pkg/mailer/templates"
)

const publishTimeout = 5 * time.Second

// Publisher puts a JSON message on the email queue.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Dispatcher turns account emails into EmailJobs and hands them to the
// queue, or renders and sends them inline when no queue is available.
type Dispatcher struct {
	cfg     *config.Config
	deliver func(ctx context.Context, job mailer.EmailJob) error
}

func NewQueueDispatcher(pub Publisher, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		cfg: cfg,
		deliver: func(ctx context.Context, job mailer.EmailJob) error {
			c, cancel := context.WithTimeout(ctx, publishTimeout)
			defer cancel()
			if err := pub.PublishJSON(c, job); err != nil {
				return fmt.Errorf("publish %s email: %w", job.Template, err)
			}
			return nil
		},
	}
}

func NewDirectDispatcher(s Sender, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		cfg: cfg,
		deliver: func(ctx context.Context, job mailer.EmailJob) error {
			subject, text, html, err := helpers.RenderEmailJob(&job)
			if err != nil {
				return err
			}
			return s.Send(ctx, job.To, subject, text, html)
		},
	}
}

func (d *Dispatcher) SendVerification(ctx context.Context, u *entity.User, link string) error {
	return d.deliver(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.VerifyEmail,
		Data:     mailtpl.NewVerifyEmailData(d.cfg, u.DisplayName(), u.Email, link, mailtpl.WithExpiresIn(d.cfg.VerifyLinkTTL)),
	})
}

func (d *Dispatcher) SendPasswordReset(ctx context.Context, u *entity.User, link string) error {
	return d.deliver(ctx, mailer.EmailJob{
		To:       u.Email,
		Template: mailtpl.ForgotPassword,
		Data:     mailtpl.NewForgotPasswordData(d.cfg, u.DisplayName(), u.Email, link, mailtpl.WithExpiresIn(d.cfg.ResetTokenTTL)),
	})
}
