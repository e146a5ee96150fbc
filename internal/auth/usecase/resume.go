package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/krishg/billgate/internal/auth/entity"
	"github.com/krishg/billgate/internal/pkg/goerror"
)

type ResumeInput struct {
	DeviceID string `validate:"required"`
}

type ResumeOutput struct {
	State     entity.AuthState
	Username  string
	LoginTime time.Time
	ExpiresAt time.Time
}

// Resume reconstructs the device's auth state after a restart.
// A session only counts when the device is still trusted; otherwise a
// live pending challenge resumes verification, and anything else means
// logged out. No code is re-issued and nothing is re-notified here.
func (s *Usecase) Resume(ctx context.Context, in ResumeInput) (*ResumeOutput, error) {
	ctx, span := s.startSpan(ctx, "Resume")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sess, err := s.repoStore.GetSession(ctx, in.DeviceID)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get session", "device_id", in.DeviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if sess != nil && sess.Active {
		_, err := s.repoStore.GetTrust(ctx, in.DeviceID)
		if err == nil {
			return &ResumeOutput{
				State:     entity.AuthStateLoggedIn,
				Username:  sess.Username,
				LoginTime: sess.LoginTime,
			}, nil
		}
		if !errors.Is(err, goerror.ErrNotFound) {
			slog.ErrorContext(ctx, "failed to repo get trust record", "device_id", in.DeviceID, "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	ch, err := s.challenges.RestorePending(ctx, in.DeviceID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to restore pending challenge", "device_id", in.DeviceID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if ch != nil {
		return &ResumeOutput{
			State:     entity.AuthStateChallengePending,
			Username:  ch.Username,
			ExpiresAt: ch.ExpiresAt,
		}, nil
	}

	return &ResumeOutput{State: entity.AuthStateLoggedOut}, nil
}
