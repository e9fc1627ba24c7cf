package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/suraksha-api/pkg/validation"
)

type NewsletterService struct {
	List   NewsletterList
	Policy FailurePolicy
	Logger *logrus.Logger
}

func NewNewsletterService(list NewsletterList, policy FailurePolicy, logger *logrus.Logger) *NewsletterService {
	return &NewsletterService{List: list, Policy: policy, Logger: logger}
}

type NewsletterInput struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

func (s *NewsletterService) log() *logrus.Entry {
	if s.Logger == nil {
		l := logrus.New()
		return logrus.NewEntry(l).WithField("channel", "newsletter")
	}
	return s.Logger.WithField("channel", "newsletter")
}

// Subscribe adds or re-subscribes the address on the mailing list.
func (s *NewsletterService) Subscribe(ctx context.Context, in NewsletterInput) error {
	in.Email = normalizeEmail(in.Email)
	if details := validation.Struct(in); details != nil {
		return Validation(invalidDataMessage, details)
	}
	s.log().WithField("email", in.Email).Info("new email subscription")
	return s.call(ctx, in.Email, "subscribe", s.listOp(true))
}

// Unsubscribe flags the address as unsubscribed on the mailing list.
func (s *NewsletterService) Unsubscribe(ctx context.Context, in NewsletterInput) error {
	in.Email = normalizeEmail(in.Email)
	if details := validation.Struct(in); details != nil {
		return Validation(invalidDataMessage, details)
	}
	s.log().WithField("email", in.Email).Info("unsubscribe request")
	return s.call(ctx, in.Email, "unsubscribe", s.listOp(false))
}

func (s *NewsletterService) listOp(subscribe bool) func(context.Context, string) error {
	return func(ctx context.Context, email string) error {
		if s.List == nil {
			return ErrMailUnavailable
		}
		if subscribe {
			return s.List.Subscribe(ctx, email)
		}
		return s.List.Unsubscribe(ctx, email)
	}
}

func (s *NewsletterService) call(ctx context.Context, email, op string, fn func(context.Context, string) error) error {
	if err := fn(ctx, email); err != nil {
		if s.Policy.Handle("newsletter "+op+" failed", err, logrus.Fields{"email": email, "channel": "newsletter"}) {
			return ServiceFailure("Newsletter service unavailable", err)
		}
		return err
	}
	return nil
}
