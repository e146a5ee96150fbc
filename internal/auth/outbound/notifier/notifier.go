// Package notifier delivers issued challenges to the administrator.
//
// Delivery is strictly best-effort: implementations never let an error
// escape the Deliver boundary. A failed delivery becomes
// DispatchOutcome{Delivered: false} and the login flow carries on, since
// the code must stay usable through the fallback surface.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/krishg/billgate/internal/auth/entity"
)

const (
	// DriverEmail selects SMTP delivery to the admin recipient.
	DriverEmail = "email"
	// DriverNATS selects publishing a security event to a NATS subject.
	DriverNATS = "nats"
	// DriverNone disables delivery; the fallback surface is the only way
	// to obtain the code.
	DriverNone = "none"
)

// ErrUnknownDriver indicates an unsupported notifier driver.
var ErrUnknownDriver = errors.New("notifier: unknown driver")

// DispatchOutcome reports whether the challenge reached the admin.
type DispatchOutcome struct {
	Delivered bool
}

// Dispatcher sends a challenge report to a fixed administrative
// recipient.
type Dispatcher interface {
	Deliver(ctx context.Context, ch *entity.Challenge) DispatchOutcome
}

// FactoryOptions groups configuration for notifier drivers.
type FactoryOptions struct {
	// Email configures the SMTP driver.
	Email EmailOptions
	// NATS configures the NATS driver.
	NATS NATSOptions
}

// NewFromDriver constructs a Dispatcher by driver name.
func NewFromDriver(driver string, opts FactoryOptions) (Dispatcher, error) {
	switch strings.ToLower(driver) {
	case DriverEmail:
		return NewEmail(opts.Email)
	case DriverNATS:
		return NewNATS(opts.NATS)
	case DriverNone:
		return Noop{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

// report renders the admin-facing challenge summary shared by drivers.
func report(ch *entity.Challenge) string {
	var sb strings.Builder

	sb.WriteString("NEW DEVICE LOGIN ATTEMPT\n\n")
	fmt.Fprintf(&sb, "Username: %s\n", ch.Username)
	fmt.Fprintf(&sb, "OTP Code: %s\n\n", ch.Code)

	sb.WriteString("Device Information:\n")
	writeLine(&sb, "Browser", ch.Context.UserAgent)
	writeLine(&sb, "Platform", ch.Context.Platform)
	writeLine(&sb, "Language", ch.Context.Locale)
	writeLine(&sb, "Timezone", ch.Context.Timezone)
	writeLine(&sb, "Screen", ch.Context.Screen)
	writeLine(&sb, "Location", ch.Context.Location)
	writeLine(&sb, "Time", ch.CreatedAt.Format("2006-01-02 15:04:05 MST"))

	sb.WriteString("\nTo approve this device, share the OTP code with the user.\n")
	sb.WriteString("To deny access, ignore this message.\n")

	return sb.String()
}

func writeLine(sb *strings.Builder, label, value string) {
	if value == "" {
		value = "Unknown"
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, value)
}
