package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/krishg/billgate/internal/auth/entity"
)

func TestResume(t *testing.T) {
	ctx := context.Background()

	t.Run("NothingStoredMeansLoggedOut", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		out, err := env.uc.Resume(ctx, ResumeInput{DeviceID: "dev-1"})

		// Assert
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
		if out.State != entity.AuthStateLoggedOut {
			t.Fatalf("expected LoggedOut, got %v", out.State)
		}
	})

	t.Run("SessionWithTrustMeansLoggedIn", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.trustDevice(t, "dev-1")
		if _, err := env.uc.Login(ctx, LoginInput{DeviceID: "dev-1", Username: testUsername, Password: testPassword}); err != nil {
			t.Fatalf("login: %v", err)
		}
		loginTime := env.clock.now
		env.clock.advance(time.Hour)

		// Act
		out, err := env.uc.Resume(ctx, ResumeInput{DeviceID: "dev-1"})

		// Assert
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
		if out.State != entity.AuthStateLoggedIn {
			t.Fatalf("expected LoggedIn, got %v", out.State)
		}
		if out.Username != testUsername || !out.LoginTime.Equal(loginTime) {
			t.Fatalf("unexpected output %+v", out)
		}
	})

	t.Run("SessionWithoutTrustDoesNotLogIn", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		err := env.repo.PutSession(ctx, entity.Session{
			DeviceID:  "dev-1",
			Username:  testUsername,
			LoginTime: env.clock.now,
			Active:    true,
		})
		if err != nil {
			t.Fatalf("put session: %v", err)
		}

		// Act
		out, err := env.uc.Resume(ctx, ResumeInput{DeviceID: "dev-1"})

		// Assert
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
		if out.State != entity.AuthStateLoggedOut {
			t.Fatalf("expected LoggedOut without trust, got %v", out.State)
		}
	})

	t.Run("LivePendingChallengeResumes", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.loginPending(t, "dev-1")
		expiresAt := env.clock.now.Add(testTTL)
		dispatches := len(env.dispatcher.calls)
		env.clock.advance(5 * time.Minute)

		// Act
		out, err := env.uc.Resume(ctx, ResumeInput{DeviceID: "dev-1"})

		// Assert
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
		if out.State != entity.AuthStateChallengePending {
			t.Fatalf("expected ChallengePending, got %v", out.State)
		}
		if !out.ExpiresAt.Equal(expiresAt) {
			t.Fatalf("expected the original expiry %v, got %v", expiresAt, out.ExpiresAt)
		}
		if len(env.dispatcher.calls) != dispatches {
			t.Fatalf("expected resume not to re-notify")
		}
	})

	t.Run("ExpiredPendingChallengeMeansLoggedOut", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.loginPending(t, "dev-1")
		env.clock.advance(testTTL)

		// Act
		out, err := env.uc.Resume(ctx, ResumeInput{DeviceID: "dev-1"})

		// Assert
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
		if out.State != entity.AuthStateLoggedOut {
			t.Fatalf("expected LoggedOut after expiry, got %v", out.State)
		}
	})

	t.Run("InactiveSessionIsIgnored", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.trustDevice(t, "dev-1")
		err := env.repo.PutSession(ctx, entity.Session{
			DeviceID:  "dev-1",
			Username:  testUsername,
			LoginTime: env.clock.now,
			Active:    false,
		})
		if err != nil {
			t.Fatalf("put session: %v", err)
		}

		// Act
		out, err := env.uc.Resume(ctx, ResumeInput{DeviceID: "dev-1"})

		// Assert
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
		if out.State != entity.AuthStateLoggedOut {
			t.Fatalf("expected LoggedOut for an inactive session, got %v", out.State)
		}
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("PreservesTrust", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		env.trustDevice(t, "dev-1")
		if _, err := env.uc.Login(ctx, LoginInput{DeviceID: "dev-1", Username: testUsername, Password: testPassword}); err != nil {
			t.Fatalf("login: %v", err)
		}

		// Act
		if err := env.uc.Logout(ctx, LogoutInput{DeviceID: "dev-1"}); err != nil {
			t.Fatalf("logout: %v", err)
		}

		// Assert
		if _, err := env.repo.GetTrust(ctx, "dev-1"); err != nil {
			t.Fatalf("expected trust to survive logout, got %v", err)
		}
		out, err := env.uc.Resume(ctx, ResumeInput{DeviceID: "dev-1"})
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
		if out.State != entity.AuthStateLoggedOut {
			t.Fatalf("expected LoggedOut after logout, got %v", out.State)
		}

		// A later login on the still-trusted device needs no challenge.
		again, err := env.uc.Login(ctx, LoginInput{DeviceID: "dev-1", Username: testUsername, Password: testPassword})
		if err != nil {
			t.Fatalf("relogin: %v", err)
		}
		if again.State != entity.AuthStateLoggedIn {
			t.Fatalf("expected LoggedIn on relogin, got %v", again.State)
		}
	})

	t.Run("IdempotentWithoutSession", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		err := env.uc.Logout(ctx, LogoutInput{DeviceID: "dev-1"})

		// Assert
		if err != nil {
			t.Fatalf("expected logout without session to succeed, got %v", err)
		}
	})
}

func TestCancelChallenge(t *testing.T) {
	ctx := context.Background()

	t.Run("DiscardsPending", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		code := env.loginPending(t, "dev-1")

		// Act
		if err := env.uc.CancelChallenge(ctx, CancelChallengeInput{DeviceID: "dev-1"}); err != nil {
			t.Fatalf("cancel: %v", err)
		}

		// Assert
		if _, err := env.uc.VerifyChallenge(ctx, VerifyChallengeInput{DeviceID: "dev-1", Code: code}); !errors.Is(err, entity.ErrNoPendingChallenge) {
			t.Fatalf("expected no pending challenge after cancel, got %v", err)
		}
	})

	t.Run("IdempotentWithoutPending", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		err := env.uc.CancelChallenge(ctx, CancelChallengeInput{DeviceID: "dev-1"})

		// Assert
		if err != nil {
			t.Fatalf("expected cancel with nothing pending to succeed, got %v", err)
		}
	})
}

func TestForgetDevice(t *testing.T) {
	ctx := context.Background()

	t.Run("ClearsTrustSessionAndChallenge", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)
		code := env.loginPending(t, "dev-1")
		if _, err := env.uc.VerifyChallenge(ctx, VerifyChallengeInput{DeviceID: "dev-1", Code: code}); err != nil {
			t.Fatalf("verify: %v", err)
		}

		// Act
		if err := env.uc.ForgetDevice(ctx, ForgetDeviceInput{DeviceID: "dev-1"}); err != nil {
			t.Fatalf("forget: %v", err)
		}

		// Assert
		out, err := env.uc.Resume(ctx, ResumeInput{DeviceID: "dev-1"})
		if err != nil {
			t.Fatalf("resume: %v", err)
		}
		if out.State != entity.AuthStateLoggedOut {
			t.Fatalf("expected LoggedOut after forget, got %v", out.State)
		}

		// The next login must go through verification again.
		env.clock.advance(time.Minute)
		next, err := env.uc.Login(ctx, LoginInput{DeviceID: "dev-1", Username: testUsername, Password: testPassword})
		if err != nil {
			t.Fatalf("login after forget: %v", err)
		}
		if next.State != entity.AuthStateChallengePending {
			t.Fatalf("expected a new challenge after forget, got %v", next.State)
		}
	})
}
