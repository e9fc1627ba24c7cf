package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/suraksha-api/internal/domain/entity"
	repo "github.com/oksasatya/suraksha-api/internal/domain/repository"
)

// Mailer dispatches account emails.
type Mailer interface {
	SendVerification(ctx context.Context, u *entity.User, link string) error
	SendPasswordReset(ctx context.Context, u *entity.User, link string) error
}

// LinkSigner produces absolute, expiring, signed URLs for a request path.
type LinkSigner interface {
	Sign(path string, ttl time.Duration) string
}

// UserIndexer mirrors public profile data into the user directory.
type UserIndexer interface {
	Index(ctx context.Context, u *entity.User) error
	Remove(ctx context.Context, userID string) error
}

// NewsletterList is the third-party mailing list.
type NewsletterList interface {
	Subscribe(ctx context.Context, email string) error
	Unsubscribe(ctx context.Context, email string) error
}

// RequestMeta carries caller details for the audit trail
type RequestMeta struct {
	IP        string
	UserAgent string
}

type requestMetaKey struct{}

func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

func requestMetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}

// Auditor writes audit events; failures are logged and never surfaced.
// A nil Auditor is a no-op.
type Auditor struct {
	Repo   repo.AuditRepository
	Logger *logrus.Logger
}

func NewAuditor(r repo.AuditRepository, logger *logrus.Logger) *Auditor {
	return &Auditor{Repo: r, Logger: logger}
}

func (a *Auditor) Record(ctx context.Context, userID, email, action string, metadata map[string]any) {
	if a == nil || a.Repo == nil {
		return
	}
	meta := requestMetaFrom(ctx)
	err := a.Repo.Insert(ctx, &entity.AuditLog{
		UserID:    userID,
		Email:     email,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  metadata,
	})
	if err != nil && a.Logger != nil {
		a.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "action": action}).Warn("audit insert failed")
	}
}

// Directory keeps the user index in sync. A nil Directory or Indexer is a no-op.
type Directory struct {
	Indexer UserIndexer
	Logger  *logrus.Logger
}

func NewDirectory(idx UserIndexer, logger *logrus.Logger) *Directory {
	return &Directory{Indexer: idx, Logger: logger}
}

func (d *Directory) Sync(ctx context.Context, u *entity.User) {
	if d == nil || d.Indexer == nil {
		return
	}
	if err := d.Indexer.Index(ctx, u); err != nil && d.Logger != nil {
		d.Logger.WithError(err).WithField("user_id", u.ID).Warn("user index failed")
	}
}

func (d *Directory) Drop(ctx context.Context, userID string) {
	if d == nil || d.Indexer == nil {
		return
	}
	if err := d.Indexer.Remove(ctx, userID); err != nil && d.Logger != nil {
		d.Logger.WithError(err).WithField("user_id", userID).Warn("user index removal failed")
	}
}
