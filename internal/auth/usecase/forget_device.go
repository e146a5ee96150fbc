package usecase

import (
	"context"
	"log/slog"

	"github.com/krishg/billgate/internal/pkg/goerror"
)

type ForgetDeviceInput struct {
	DeviceID string `validate:"required"`
}

// ForgetDevice wipes everything known about the device: trust, session
// and any pending challenge. The next login starts from scratch.
func (s *Usecase) ForgetDevice(ctx context.Context, in ForgetDeviceInput) error {
	ctx, span := s.startSpan(ctx, "ForgetDevice")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.challenges.Cancel(ctx, in.DeviceID); err != nil {
		slog.ErrorContext(ctx, "failed to cancel challenge", "device_id", in.DeviceID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoStore.DeleteSession(ctx, in.DeviceID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete session", "device_id", in.DeviceID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoStore.DeleteTrust(ctx, in.DeviceID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete trust record", "device_id", in.DeviceID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
