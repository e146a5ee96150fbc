package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/krishg/billgate/internal/auth/entity"
	"github.com/krishg/billgate/internal/pkg/mail"
	"github.com/sethvargo/go-retry"
)

// ErrEmailRecipientRequired is returned when no admin recipient is set.
var ErrEmailRecipientRequired = errors.New("notifier: email recipient is required")

// EmailOptions configures the SMTP dispatcher.
type EmailOptions struct {
	// Client sends the message.
	Client mail.Mail
	// Recipient is the fixed administrative address.
	Recipient string
	// Timeout bounds one Deliver call including retries.
	Timeout time.Duration
	// MaxRetries is the number of re-attempts after the first failure.
	MaxRetries uint64
}

// Email delivers challenge reports over SMTP.
type Email struct {
	client     mail.Mail
	recipient  string
	timeout    time.Duration
	maxRetries uint64
}

// NewEmail constructs the SMTP dispatcher.
func NewEmail(opts EmailOptions) (*Email, error) {
	if opts.Client == nil {
		return nil, errors.New("notifier: email driver requires a mail client")
	}
	if opts.Recipient == "" {
		return nil, ErrEmailRecipientRequired
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	return &Email{
		client:     opts.Client,
		recipient:  opts.Recipient,
		timeout:    opts.Timeout,
		maxRetries: opts.MaxRetries,
	}, nil
}

// Deliver emails the challenge report to the admin recipient. Transient
// SMTP failures are retried with a short constant backoff; the whole
// attempt is bounded by the configured timeout and never returns an
// error to the login path.
func (e *Email) Deliver(ctx context.Context, ch *entity.Challenge) DispatchOutcome {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	msg := mail.Message{
		To:       []string{e.recipient},
		Subject:  fmt.Sprintf("New Device Login - OTP: %s", ch.Code),
		TextBody: report(ch),
	}

	backoff := retry.WithMaxRetries(e.maxRetries, retry.NewConstant(time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := e.client.Send(ctx, msg); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "failed to deliver challenge email", "device_id", ch.DeviceID, "error", err)
		return DispatchOutcome{Delivered: false}
	}

	return DispatchOutcome{Delivered: true}
}
