package application

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/oksasatya/suraksha-api/internal/domain/entity"
)

// VerificationSender mails signed email-verification links.
type VerificationSender struct {
	Mailer Mailer
	Links  LinkSigner
	TTL    time.Duration
}

func NewVerificationSender(m Mailer, links LinkSigner, ttl time.Duration) *VerificationSender {
	return &VerificationSender{Mailer: m, Links: links, TTL: ttl}
}

// EmailHash is the {hash} segment of a verification link
func EmailHash(email string) string {
	sum := sha1.Sum([]byte(email))
	return hex.EncodeToString(sum[:])
}

// VerificationPath is the unsigned request path of u's verification link
func VerificationPath(u *entity.User) string {
	return fmt.Sprintf("/api/email/verify/%s/%s", u.ID, EmailHash(u.Email))
}

func (v *VerificationSender) Send(ctx context.Context, u *entity.User) error {
	if v == nil || v.Mailer == nil || v.Links == nil {
		return ErrMailUnavailable
	}
	link := v.Links.Sign(VerificationPath(u), v.TTL)
	return v.Mailer.SendVerification(ctx, u, link)
}
