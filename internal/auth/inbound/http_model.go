package inbound

import "time"

// HeaderDevicePlatform, HeaderDeviceTimezone and HeaderDeviceScreen carry
// the device snapshot the browser collects alongside a login attempt.
const (
	HeaderDevicePlatform = "X-Device-Platform"
	HeaderDeviceTimezone = "X-Device-Timezone"
	HeaderDeviceScreen   = "X-Device-Screen"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type LoginResponse struct {
	State     string `json:"state"`
	Username  string `json:"username,omitempty"`
	LoginTime string `json:"login_time,omitempty"`

	// Challenge fields, present only when state is ChallengePending.
	Delivered    bool   `json:"delivered,omitempty"`
	FallbackCode string `json:"fallback_code,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`
}

type VerifyChallengeRequest struct {
	Code string `json:"code"`
}

type VerifyChallengeResponse struct {
	Username  string `json:"username"`
	LoginTime string `json:"login_time"`
	Trusted   bool   `json:"trusted"`
}

type CancelChallengeResponse struct{}

func (CancelChallengeResponse) Message() string {
	return "Verification cancelled."
}

type LogoutResponse struct{}

func (LogoutResponse) Message() string {
	return "Logged out. This device stays trusted."
}

type ResumeResponse struct {
	State     string `json:"state"`
	Username  string `json:"username,omitempty"`
	LoginTime string `json:"login_time,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

type ForgetDeviceResponse struct{}

func (ForgetDeviceResponse) Message() string {
	return "Device forgotten. The next login will require verification."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
