package entity

// AuthState classifies the outcome of a login or resume operation.
type AuthState int16

const (
	// AuthStateLoggedOut mean no session and no pending challenge exist.
	AuthStateLoggedOut AuthState = 0

	// AuthStateChallengePending mean an unexpired OTP challenge is awaiting a code.
	AuthStateChallengePending AuthState = 1

	// AuthStateLoggedIn mean the device holds an active session.
	AuthStateLoggedIn AuthState = 2
)

func (as AuthState) String() string {
	switch as {
	case AuthStateLoggedIn:
		return "LoggedIn"
	case AuthStateChallengePending:
		return "ChallengePending"
	default:
		return "LoggedOut"
	}
}
