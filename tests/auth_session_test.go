package tests

import (
	"net/http"
	"testing"
)

func TestSession(t *testing.T) {

	t.Run("FreshDeviceIsLoggedOut", func(t *testing.T) {

		// Arrange
		deviceID := newDeviceID(t)

		// Act
		state := session(t, deviceID)

		// Assert
		if state.State != "LoggedOut" {
			t.Fatalf("expected LoggedOut, got %q", state.State)
		}
	})

	t.Run("PendingChallengeSurvivesReload", func(t *testing.T) {

		// Arrange
		deviceID := newDeviceID(t)
		resp := login(t, deviceID, accountUsername(), accountPassword())
		if resp.State != "ChallengePending" {
			t.Fatalf("expected ChallengePending, got %q", resp.State)
		}

		// Act
		state := session(t, deviceID)

		// Assert
		if state.State != "ChallengePending" {
			t.Fatalf("expected ChallengePending on resume, got %q", state.State)
		}
		if state.ExpiresAt != resp.ExpiresAt {
			t.Fatalf("expected resume to keep the original expiry %q, got %q", resp.ExpiresAt, state.ExpiresAt)
		}
	})
}

func TestForgetDevice(t *testing.T) {

	t.Run("NextLoginNeedsVerificationAgain", func(t *testing.T) {

		// Arrange
		deviceID := newDeviceID(t)
		code := challengeCode(t, deviceID)
		verify(t, deviceID, code)

		// Act
		status, _ := doJSON(t, http.MethodDelete, "/api/v1/auth/device", nil, deviceID)

		// Assert
		if status != http.StatusOK {
			t.Fatalf("forget failed: %d", status)
		}
		state := session(t, deviceID)
		if state.State != "LoggedOut" {
			t.Fatalf("expected LoggedOut after forget, got %q", state.State)
		}
	})
}
