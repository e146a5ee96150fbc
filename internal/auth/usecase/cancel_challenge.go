package usecase

import (
	"context"
	"log/slog"

	"github.com/krishg/billgate/internal/pkg/goerror"
)

type CancelChallengeInput struct {
	DeviceID string `validate:"required"`
}

// CancelChallenge abandons any pending verification for the device.
// Cancelling when nothing is pending is a no-op.
func (s *Usecase) CancelChallenge(ctx context.Context, in CancelChallengeInput) error {
	ctx, span := s.startSpan(ctx, "CancelChallenge")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.challenges.Cancel(ctx, in.DeviceID); err != nil {
		slog.ErrorContext(ctx, "failed to cancel challenge", "device_id", in.DeviceID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
