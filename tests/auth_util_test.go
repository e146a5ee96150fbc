package tests

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"
	"strings"
	"testing"
)

// Credentials of the configured account; override via env when the
// server runs with different values.
func accountUsername() string {
	if v := strings.TrimSpace(os.Getenv("BILLGATE_USERNAME")); v != "" {
		return v
	}
	return "bill"
}

func accountPassword() string {
	if v := strings.TrimSpace(os.Getenv("BILLGATE_PASSWORD")); v != "" {
		return v
	}
	return "1234"
}

// newDeviceID returns a fresh random device so tests never collide with
// trust state left behind by earlier runs.
func newDeviceID(t *testing.T) string {
	t.Helper()

	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("random device id: %v", err)
	}
	return "e2e-" + hex.EncodeToString(b)
}

type loginData struct {
	State        string `json:"state"`
	Username     string `json:"username"`
	LoginTime    string `json:"login_time"`
	Delivered    bool   `json:"delivered"`
	FallbackCode string `json:"fallback_code"`
	ExpiresAt    string `json:"expires_at"`
}

type verifyData struct {
	Username  string `json:"username"`
	LoginTime string `json:"login_time"`
	Trusted   bool   `json:"trusted"`
}

type sessionData struct {
	State     string `json:"state"`
	Username  string `json:"username"`
	LoginTime string `json:"login_time"`
	ExpiresAt string `json:"expires_at"`
}

func login(t *testing.T, deviceID, username, password string) loginData {
	t.Helper()

	payload := map[string]any{
		"username": username,
		"password": password,
		"remember": true,
	}

	status, body := doJSON(t, http.MethodPost, "/api/v1/auth/login", payload, deviceID)
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("login failed: status=%d message=%q", status, errEnv.Message)
	}

	var data loginData
	decodeSuccess(t, body, &data)

	return data
}

// challengeCode starts a login on a fresh device and returns the code.
// It skips the calling test when the server delivered the code
// out-of-band (the test cannot read the admin mailbox).
func challengeCode(t *testing.T, deviceID string) string {
	t.Helper()

	resp := login(t, deviceID, accountUsername(), accountPassword())
	if resp.State != "ChallengePending" {
		t.Fatalf("expected ChallengePending for a fresh device, got %q", resp.State)
	}
	if resp.FallbackCode == "" {
		t.Skip("code was delivered out-of-band; run the server with notifier.driver=none to test verification")
	}

	return resp.FallbackCode
}

func verify(t *testing.T, deviceID, code string) verifyData {
	t.Helper()

	status, body := doJSON(t, http.MethodPost, "/api/v1/auth/verify", map[string]string{"code": code}, deviceID)
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("verify failed: status=%d message=%q", status, errEnv.Message)
	}

	var data verifyData
	decodeSuccess(t, body, &data)

	return data
}

func session(t *testing.T, deviceID string) sessionData {
	t.Helper()

	status, body := doJSON(t, http.MethodGet, "/api/v1/auth/session", nil, deviceID)
	if status != http.StatusOK {
		errEnv := decodeError(t, body)
		t.Fatalf("session failed: status=%d message=%q", status, errEnv.Message)
	}

	var data sessionData
	decodeSuccess(t, body, &data)

	return data
}
