package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/krishg/billgate/internal/auth/challenge"
	"github.com/krishg/billgate/internal/auth/entity"
	"github.com/krishg/billgate/internal/pkg/goerror"
)

type LoginInput struct {
	DeviceID string `validate:"required"`
	Username string `validate:"required"`
	Password string `validate:"required"`
	Remember bool
	Context  entity.DeviceContext
}

type LoginOutput struct {
	State     entity.AuthState
	Username  string
	LoginTime time.Time

	// Delivery fields are only meaningful when State is ChallengePending.
	Delivered    bool
	FallbackCode string
	ExpiresAt    time.Time
}

// Login checks credentials and either opens a session on a trusted
// device or issues a fresh one-time code challenge on an unknown one.
// Challenge delivery failure is not fatal: the caller learns about it
// through Delivered and gets the code back for on-screen fallback.
func (s *Usecase) Login(ctx context.Context, in LoginInput) (*LoginOutput, error) {
	ctx, span := s.startSpan(ctx, "Login")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	username := strings.TrimSpace(in.Username)
	if !s.credential.Validate(username, in.Password) {
		slog.WarnContext(ctx, "credential check failed", "device_id", in.DeviceID)
		return nil, goerror.NewBusinessWrap(entity.ErrInvalidCredentials,
			"invalid username or password", goerror.CodeUnauthorized)
	}

	_, err := s.repoStore.GetTrust(ctx, in.DeviceID)
	if err == nil {
		now := s.clock.Now()
		sess := entity.Session{
			DeviceID:  in.DeviceID,
			Username:  username,
			LoginTime: now,
			Active:    true,
		}
		if err := s.repoStore.PutSession(ctx, sess); err != nil {
			slog.ErrorContext(ctx, "failed to repo put session", "device_id", in.DeviceID, "error", err)
			return nil, goerror.NewServer(err)
		}

		return &LoginOutput{
			State:     entity.AuthStateLoggedIn,
			Username:  username,
			LoginTime: now,
		}, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get trust record", "device_id", in.DeviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	devCtx := in.Context
	devCtx.CapturedAt = s.clock.Now()
	if devCtx.Location == "" {
		devCtx.Location = s.location.Lookup(ctx, devCtx.IP)
	}

	ch, err := s.challenges.Issue(ctx, challenge.IssueInput{
		DeviceID: in.DeviceID,
		Username: username,
		Remember: in.Remember,
		Context:  devCtx,
	})

	var rle *entity.RateLimitedError
	if errors.As(err, &rle) {
		retry := rle.RetryAfterSeconds()
		slog.WarnContext(ctx, "challenge issuance rate limited",
			"device_id", in.DeviceID, "retry_after_seconds", retry)
		return nil, goerror.NewBusinessFields(rle,
			"verification code was requested too recently", goerror.CodeTooManyRequest,
			"retry_after_seconds", strconv.Itoa(retry))
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to issue challenge", "device_id", in.DeviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	outcome := s.dispatcher.Deliver(ctx, ch)

	out := &LoginOutput{
		State:     entity.AuthStateChallengePending,
		Username:  username,
		Delivered: outcome.Delivered,
		ExpiresAt: ch.ExpiresAt,
	}
	if !outcome.Delivered {
		out.FallbackCode = ch.Code
	}

	return out, nil
}
