package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/krishg/billgate/internal/auth/entity"
	"github.com/krishg/billgate/internal/pkg/goerror"
)

type VerifyChallengeInput struct {
	DeviceID string `validate:"required"`
	Code     string `validate:"required,otpcode"`
}

type VerifyChallengeOutput struct {
	Username  string
	LoginTime time.Time
	Trusted   bool
}

// VerifyChallenge consumes the pending code for the device. A correct
// code trusts the device and opens a session; a wrong one leaves the
// challenge in place for another attempt.
func (s *Usecase) VerifyChallenge(ctx context.Context, in VerifyChallengeInput) (*VerifyChallengeOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyChallenge")
	defer span.End()

	in.Code = strings.TrimSpace(in.Code)
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ch, err := s.challenges.Verify(ctx, in.DeviceID, in.Code)
	switch {
	case errors.Is(err, entity.ErrNoPendingChallenge):
		slog.WarnContext(ctx, "no pending challenge for device", "device_id", in.DeviceID)
		return nil, goerror.NewBusinessWrap(err,
			"no verification is in progress for this device", goerror.CodeNotFound)

	case errors.Is(err, entity.ErrChallengeExpired):
		slog.WarnContext(ctx, "challenge expired", "device_id", in.DeviceID)
		return nil, goerror.NewBusinessWrap(err,
			"verification code expired, sign in again to get a new one", goerror.CodeUnauthorized)

	case errors.Is(err, entity.ErrCodeMismatch):
		slog.WarnContext(ctx, "challenge code mismatch", "device_id", in.DeviceID)
		return nil, goerror.NewBusinessWrap(err,
			"incorrect verification code", goerror.CodeUnauthorized)

	case err != nil:
		slog.ErrorContext(ctx, "failed to verify challenge", "device_id", in.DeviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if _, err := s.ensureTrusted(ctx, in.DeviceID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	sess := entity.Session{
		DeviceID:  in.DeviceID,
		Username:  ch.Username,
		LoginTime: now,
		Active:    true,
	}
	if err := s.repoStore.PutSession(ctx, sess); err != nil {
		slog.ErrorContext(ctx, "failed to repo put session", "device_id", in.DeviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VerifyChallengeOutput{
		Username:  ch.Username,
		LoginTime: now,
		Trusted:   true,
	}, nil
}
