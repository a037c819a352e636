package notify

import (
	"context"
	"time"

	"inkpost.backend/internal/domain/entities"
)

// Notifier renders account notifications and hands them to a Dispatcher
type Notifier struct {
	dispatcher Dispatcher
	siteName   string
}

// NewNotifier creates a notifier for the given site
func NewNotifier(dispatcher Dispatcher, siteName string) *Notifier {
	return &Notifier{dispatcher: dispatcher, siteName: siteName}
}

// Activation sends the account activation link
func (n *Notifier) Activation(ctx context.Context, account *entities.Account, link string) error {
	return n.send(ctx, KindActivation, account, Data{Link: link})
}

// PasswordReset sends the password reset link
func (n *Notifier) PasswordReset(ctx context.Context, account *entities.Account, link string) error {
	return n.send(ctx, KindPasswordReset, account, Data{Link: link})
}

// OTP sends a one-time code
func (n *Notifier) OTP(ctx context.Context, account *entities.Account, code string, validFor time.Duration) error {
	return n.send(ctx, KindOTP, account, Data{Code: code, ExpiryMinutes: int(validFor.Round(time.Minute) / time.Minute)})
}

func (n *Notifier) send(ctx context.Context, kind string, account *entities.Account, data Data) error {
	data.SiteName = n.siteName
	data.Name = account.FullName()
	subject, body, err := Render(kind, data)
	if err != nil {
		return err
	}
	return n.dispatcher.Send(ctx, account.Email, subject, body)
}
