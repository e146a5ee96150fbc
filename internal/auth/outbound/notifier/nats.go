package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/krishg/billgate/internal/auth/entity"
	"github.com/nats-io/nats.go"
)

const defaultNATSSubject = "billgate.auth.challenge_issued"

// NATSOptions configures the NATS dispatcher.
type NATSOptions struct {
	// Conn is an established NATS connection.
	Conn *nats.Conn
	// Subject receives the challenge events; empty selects the default.
	Subject string
}

// NATS publishes challenge events for an out-of-band admin consumer
// (e.g. a chat bot that forwards the code).
type NATS struct {
	conn    *nats.Conn
	subject string
}

// challengeEvent is the published payload.
type challengeEvent struct {
	DeviceID  string    `json:"device_id"`
	Username  string    `json:"username"`
	Code      string    `json:"code"`
	UserAgent string    `json:"user_agent,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	Locale    string    `json:"locale,omitempty"`
	Timezone  string    `json:"timezone,omitempty"`
	Screen    string    `json:"screen,omitempty"`
	Location  string    `json:"location,omitempty"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewNATS constructs the NATS dispatcher.
func NewNATS(opts NATSOptions) (*NATS, error) {
	if opts.Conn == nil {
		return nil, errors.New("notifier: nats driver requires a connection")
	}
	if opts.Subject == "" {
		opts.Subject = defaultNATSSubject
	}

	return &NATS{conn: opts.Conn, subject: opts.Subject}, nil
}

// Deliver publishes the challenge event. Publish errors are logged and
// reported as not delivered.
func (n *NATS) Deliver(ctx context.Context, ch *entity.Challenge) DispatchOutcome {
	payload, err := json.Marshal(challengeEvent{
		DeviceID:  ch.DeviceID,
		Username:  ch.Username,
		Code:      ch.Code,
		UserAgent: ch.Context.UserAgent,
		Platform:  ch.Context.Platform,
		Locale:    ch.Context.Locale,
		Timezone:  ch.Context.Timezone,
		Screen:    ch.Context.Screen,
		Location:  ch.Context.Location,
		IssuedAt:  ch.CreatedAt,
		ExpiresAt: ch.ExpiresAt,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode challenge event", "device_id", ch.DeviceID, "error", err)
		return DispatchOutcome{Delivered: false}
	}

	if err := n.conn.Publish(n.subject, payload); err != nil {
		slog.WarnContext(ctx, "failed to publish challenge event", "device_id", ch.DeviceID, "subject", n.subject, "error", err)
		return DispatchOutcome{Delivered: false}
	}

	return DispatchOutcome{Delivered: true}
}
