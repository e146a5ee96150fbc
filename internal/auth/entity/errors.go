package entity

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidCredentials mean the submitted username/password pair does
	// not match the configured credential.
	ErrInvalidCredentials = errors.New("auth: invalid username or password")

	// ErrNoPendingChallenge mean verification was attempted with no live
	// challenge for the device.
	ErrNoPendingChallenge = errors.New("auth: no pending challenge for device")

	// ErrChallengeExpired mean the pending challenge passed its expiry
	// instant; the caller must restart login.
	ErrChallengeExpired = errors.New("auth: challenge expired")

	// ErrCodeMismatch mean the submitted code differs from the issued one.
	// The challenge stays live so the caller may retry until expiry.
	ErrCodeMismatch = errors.New("auth: code does not match")
)

// RateLimitedError is returned when a challenge is requested within the
// issuance cooldown window for a device.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("auth: too soon, retry in %d seconds", e.RetryAfterSeconds())
}

// RetryAfterSeconds reports the remaining cooldown rounded up to whole
// seconds, never below 1.
func (e *RateLimitedError) RetryAfterSeconds() int {
	secs := int((e.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
