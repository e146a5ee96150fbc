package entity

import "time"

// TrustRecord marks a device as permanently trusted. Its presence is the
// sole trust predicate; there is no expiry.
type TrustRecord struct {
	DeviceID       string
	TrustToken     string
	FirstTrustedAt time.Time
}

// Session records that a device is currently logged in as a user. It is
// independent of trust and lives until an explicit logout.
type Session struct {
	DeviceID  string
	Username  string
	LoginTime time.Time
	Active    bool
}

// Challenge is an in-flight OTP verification attempt. At most one exists
// per device; issuing a new one overwrites the previous.
type Challenge struct {
	DeviceID  string
	Code      string
	Username  string
	Remember  bool
	Context   DeviceContext
	CreatedAt time.Time
	ExpiresAt time.Time
}

// DeviceContext is a diagnostic snapshot of the device making a login
// attempt. Every field is optional; an empty context is valid.
type DeviceContext struct {
	UserAgent  string
	Platform   string
	Locale     string
	Timezone   string
	Screen     string
	IP         string
	Location   string
	CapturedAt time.Time
}

// RateWindow throttles challenge issuance per device.
type RateWindow struct {
	DeviceID     string
	LastIssuedAt time.Time
}
