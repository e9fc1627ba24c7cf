package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

var ErrNotConfigured = errors.New("mailgun not configured")

// Mailgun sends transactional email through one shared client.
type Mailgun struct {
	Domain string
	Sender string
	client mg.Mailgun
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	m := &Mailgun{Domain: domain, Sender: sender}
	if domain != "" && apiKey != "" {
		m.client = mg.NewMailgun(domain, apiKey)
	}
	return m
}

// Client exposes the underlying API client, nil when unconfigured.
func (m *Mailgun) Client() mg.Mailgun {
	if m == nil {
		return nil
	}
	return m.client
}

// Send sends an email via Mailgun. html is optional; if provided it will be used as HTML body.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	if m == nil || m.client == nil || m.Sender == "" {
		return ErrNotConfigured
	}
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}
