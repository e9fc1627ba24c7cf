package newsletter

import (
	"context"
	"errors"
	"net/http"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const requestTimeout = 10 * time.Second

// MailgunList keeps newsletter membership on a Mailgun mailing list.
type MailgunList struct {
	client mg.Mailgun
	list   string
}

func NewMailgunList(client mg.Mailgun, listAddress string) (*MailgunList, error) {
	if client == nil || listAddress == "" {
		return nil, errors.New("newsletter: mailgun client and list address are required")
	}
	return &MailgunList{client: client, list: listAddress}, nil
}

// Subscribe creates the member or flips an existing one back to subscribed.
func (l *MailgunList) Subscribe(ctx context.Context, email string) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	return l.client.CreateMember(c, true, l.list, mg.Member{
		Address:    email,
		Subscribed: mg.Subscribed,
	})
}

// Unsubscribe marks the member unsubscribed. Unknown addresses are not an error.
func (l *MailgunList) Unsubscribe(ctx context.Context, email string) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	_, err := l.client.UpdateMember(c, email, l.list, mg.Member{Subscribed: mg.Unsubscribed})
	if err != nil && mg.GetStatusFromErr(err) == http.StatusNotFound {
		return nil
	}
	return err
}
