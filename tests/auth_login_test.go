package tests

import (
	"net/http"
	"testing"
)

func TestLogin(t *testing.T) {

	t.Run("UnknownDevice", func(t *testing.T) {

		// Arrange
		deviceID := newDeviceID(t)

		// Act
		resp := login(t, deviceID, accountUsername(), accountPassword())

		// Assert
		if resp.State != "ChallengePending" {
			t.Fatalf("expected ChallengePending, got %q", resp.State)
		}
		if resp.ExpiresAt == "" {
			t.Fatalf("expected an expiry timestamp")
		}
	})

	t.Run("InvalidCredentials", func(t *testing.T) {

		// Arrange
		deviceID := newDeviceID(t)
		payload := map[string]any{"username": accountUsername(), "password": "definitely-wrong"}

		// Act
		status, body := doJSON(t, http.MethodPost, "/api/v1/auth/login", payload, deviceID)

		// Assert
		if status != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d: %s", status, body)
		}
	})

	t.Run("MissingDeviceID", func(t *testing.T) {

		// Arrange
		payload := map[string]any{"username": accountUsername(), "password": accountPassword()}

		// Act
		status, _ := doJSON(t, http.MethodPost, "/api/v1/auth/login", payload, "")

		// Assert
		if status != http.StatusBadRequest {
			t.Fatalf("expected 400 without device header, got %d", status)
		}
	})

	t.Run("RepeatLoginRateLimited", func(t *testing.T) {

		// Arrange
		deviceID := newDeviceID(t)
		resp := login(t, deviceID, accountUsername(), accountPassword())
		if resp.State != "ChallengePending" {
			t.Fatalf("expected ChallengePending, got %q", resp.State)
		}
		payload := map[string]any{"username": accountUsername(), "password": accountPassword()}

		// Act
		status, body := doJSON(t, http.MethodPost, "/api/v1/auth/login", payload, deviceID)

		// Assert
		if status != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d: %s", status, body)
		}
		errEnv := decodeError(t, body)
		if errEnv.Error["retry_after_seconds"] == "" {
			t.Fatalf("expected retry_after_seconds in error detail, got %v", errEnv.Error)
		}
	})
}
