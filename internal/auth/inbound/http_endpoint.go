package inbound

import (
	"strings"

	"github.com/krishg/billgate/internal/auth/entity"
	"github.com/krishg/billgate/internal/auth/usecase"
	"github.com/krishg/billgate/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the device-trust login workflows.
type HTTPEndpoint struct {
	uc uc
}

// deviceID reads the device identifier header.
func deviceID(r *router.Request) string {
	return strings.TrimSpace(r.Header.Get(router.HeaderDeviceID))
}

// deviceContext assembles the device snapshot from request headers. Every
// field is best effort; absent headers simply stay empty.
func deviceContext(r *router.Request) entity.DeviceContext {
	return entity.DeviceContext{
		UserAgent: r.UserAgent(),
		Platform:  r.Header.Get(HeaderDevicePlatform),
		Locale:    r.Header.Get("Accept-Language"),
		Timezone:  r.Header.Get(HeaderDeviceTimezone),
		Screen:    r.Header.Get(HeaderDeviceScreen),
		IP:        r.RemoteAddr,
	}
}

// Login authenticates a user; unknown devices get a one-time code challenge.
// @Summary Authenticate user
// @Description Validates credentials. Trusted devices get a session; unknown devices get a pending one-time code challenge.
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "Device identifier"
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 429 {object} router.errorResponse "Code requested too recently"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		DeviceID: deviceID(r),
		Username: req.Username,
		Password: req.Password,
		Remember: req.Remember,
		Context:  deviceContext(r),
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		State:        resp.State.String(),
		Username:     resp.Username,
		LoginTime:    formatTime(resp.LoginTime),
		Delivered:    resp.Delivered,
		FallbackCode: resp.FallbackCode,
		ExpiresAt:    formatTime(resp.ExpiresAt),
	}, nil
}

// VerifyChallenge completes a pending challenge and opens a session.
// @Summary Verify one-time code
// @Description Checks the submitted code against the pending challenge. Success trusts the device and opens a session.
// @Tags Auth
// @Accept json
// @Produce json
// @Param X-Device-ID header string true "Device identifier"
// @Param request body VerifyChallengeRequest true "Verification payload"
// @Success 200 {object} router.successResponse{data=VerifyChallengeResponse} "Verification result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Wrong or expired code"
// @Failure 404 {object} router.errorResponse "No pending challenge"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/verify [post]
func (h *HTTPEndpoint) VerifyChallenge(r *router.Request) (any, error) {
	var req VerifyChallengeRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyChallenge(r.Context(), usecase.VerifyChallengeInput{
		DeviceID: deviceID(r),
		Code:     req.Code,
	})
	if err != nil {
		return nil, err
	}

	return VerifyChallengeResponse{
		Username:  resp.Username,
		LoginTime: formatTime(resp.LoginTime),
		Trusted:   resp.Trusted,
	}, nil
}

// CancelChallenge abandons the pending challenge for this device.
// @Summary Cancel verification
// @Description Drops any pending one-time code challenge for the device. Idempotent.
// @Tags Auth
// @Produce json
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {object} router.successResponse "Cancelled"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/cancel [post]
func (h *HTTPEndpoint) CancelChallenge(r *router.Request) (any, error) {
	err := h.uc.CancelChallenge(r.Context(), usecase.CancelChallengeInput{DeviceID: deviceID(r)})
	if err != nil {
		return nil, err
	}

	return CancelChallengeResponse{}, nil
}

// Logout closes the session while keeping the device trusted.
// @Summary Log out
// @Description Ends the session for this device. Device trust is preserved.
// @Tags Auth
// @Produce json
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {object} router.successResponse "Logged out"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/logout [post]
func (h *HTTPEndpoint) Logout(r *router.Request) (any, error) {
	err := h.uc.Logout(r.Context(), usecase.LogoutInput{DeviceID: deviceID(r)})
	if err != nil {
		return nil, err
	}

	return LogoutResponse{}, nil
}

// Resume reports the device's current authentication state.
// @Summary Resume session
// @Description Returns LoggedIn, ChallengePending or LoggedOut for the device, so a reloaded client can restore its screen.
// @Tags Auth
// @Produce json
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {object} router.successResponse{data=ResumeResponse} "Current state"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/session [get]
func (h *HTTPEndpoint) Resume(r *router.Request) (any, error) {
	resp, err := h.uc.Resume(r.Context(), usecase.ResumeInput{DeviceID: deviceID(r)})
	if err != nil {
		return nil, err
	}

	return ResumeResponse{
		State:     resp.State.String(),
		Username:  resp.Username,
		LoginTime: formatTime(resp.LoginTime),
		ExpiresAt: formatTime(resp.ExpiresAt),
	}, nil
}

// ForgetDevice removes trust, session and any pending challenge.
// @Summary Forget device
// @Description Wipes everything stored for the device. The next login starts the verification flow again.
// @Tags Auth
// @Produce json
// @Param X-Device-ID header string true "Device identifier"
// @Success 200 {object} router.successResponse "Device forgotten"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/device [delete]
func (h *HTTPEndpoint) ForgetDevice(r *router.Request) (any, error) {
	err := h.uc.ForgetDevice(r.Context(), usecase.ForgetDeviceInput{DeviceID: deviceID(r)})
	if err != nil {
		return nil, err
	}

	return ForgetDeviceResponse{}, nil
}
