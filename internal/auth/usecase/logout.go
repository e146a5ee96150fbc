package usecase

import (
	"context"
	"log/slog"

	"github.com/krishg/billgate/internal/pkg/goerror"
)

type LogoutInput struct {
	DeviceID string `validate:"required"`
}

// Logout ends the session only. Device trust survives, so the next
// login on this device goes straight through without a new code.
func (s *Usecase) Logout(ctx context.Context, in LogoutInput) error {
	ctx, span := s.startSpan(ctx, "Logout")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	if err := s.repoStore.DeleteSession(ctx, in.DeviceID); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete session", "device_id", in.DeviceID, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
