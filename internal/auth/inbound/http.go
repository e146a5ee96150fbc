package inbound

import (
	"context"

	"github.com/krishg/billgate/internal/auth/usecase"
	"github.com/krishg/billgate/internal/pkg/router"
)

type uc interface {
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	VerifyChallenge(ctx context.Context, in usecase.VerifyChallengeInput) (*usecase.VerifyChallengeOutput, error)
	CancelChallenge(ctx context.Context, in usecase.CancelChallengeInput) error

	Logout(ctx context.Context, in usecase.LogoutInput) error
	Resume(ctx context.Context, in usecase.ResumeInput) (*usecase.ResumeOutput, error)
	ForgetDevice(ctx context.Context, in usecase.ForgetDeviceInput) error
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Login & challenge lifecycle
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/verify", end.VerifyChallenge)
	r.POST("/api/v1/auth/cancel", end.CancelChallenge)

	// Session lifecycle
	r.POST("/api/v1/auth/logout", end.Logout)
	r.GET("/api/v1/auth/session", end.Resume)

	// Device management
	r.DELETE("/api/v1/auth/device", end.ForgetDevice)
}
