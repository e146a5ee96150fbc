package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/krishg/billgate/internal/auth/challenge"
	"github.com/krishg/billgate/internal/auth/credential"
	"github.com/krishg/billgate/internal/auth/entity"
	"github.com/krishg/billgate/internal/auth/outbound/notifier"
	"github.com/krishg/billgate/internal/auth/outbound/store"
	"github.com/krishg/billgate/internal/pkg/instrument"
	"github.com/krishg/billgate/internal/pkg/kvstore"
	"github.com/krishg/billgate/internal/pkg/uid"
	"github.com/krishg/billgate/internal/pkg/validator"
)

const (
	testUsername = "bill"
	testPassword = "1234"
	testTTL      = 10 * time.Minute
	testCooldown = 30 * time.Second
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

type fakeDispatcher struct {
	delivered bool
	calls     []*entity.Challenge
}

func (f *fakeDispatcher) Deliver(_ context.Context, ch *entity.Challenge) notifier.DispatchOutcome {
	f.calls = append(f.calls, ch)
	return notifier.DispatchOutcome{Delivered: f.delivered}
}

func (f *fakeDispatcher) lastCode(t *testing.T) string {
	t.Helper()

	if len(f.calls) == 0 {
		t.Fatalf("expected at least one dispatched challenge")
	}
	return f.calls[len(f.calls)-1].Code
}

type fakeLocation struct {
	loc string
}

func (f *fakeLocation) Lookup(_ context.Context, _ string) string {
	return f.loc
}

type testEnv struct {
	uc         *Usecase
	repo       *store.Store
	clock      *fakeClock
	dispatcher *fakeDispatcher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clk := &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	repo := store.NewStore(kvstore.NewMemory(), instrument.NewNoop())
	challenges := challenge.NewManager(repo, clk, testTTL, testCooldown)
	dispatcher := &fakeDispatcher{delivered: true}

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	uc := New(Dependency{
		RepoStore:  repo,
		Challenges: challenges,
		Credential: credential.New(credential.Config{Username: testUsername, Password: testPassword}),
		Dispatcher: dispatcher,
		Location:   &fakeLocation{loc: "Testville TS Testland (IP: 203.0.113.9)"},
		Validator:  v,
		Clock:      clk,
		UUID:       uid.NewUUID(),
		Instrument: instrument.NewNoop(),
	})

	return &testEnv{uc: uc, repo: repo, clock: clk, dispatcher: dispatcher}
}

func (e *testEnv) trustDevice(t *testing.T, deviceID string) {
	t.Helper()

	err := e.repo.PutTrust(context.Background(), entity.TrustRecord{
		DeviceID:       deviceID,
		TrustToken:     "pre-trusted",
		FirstTrustedAt: e.clock.now.Add(-24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("put trust: %v", err)
	}
}

// loginPending drives a full untrusted login and returns the issued code.
func (e *testEnv) loginPending(t *testing.T, deviceID string) string {
	t.Helper()

	out, err := e.uc.Login(context.Background(), LoginInput{
		DeviceID: deviceID,
		Username: testUsername,
		Password: testPassword,
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if out.State != entity.AuthStateChallengePending {
		t.Fatalf("expected pending state, got %v", out.State)
	}

	return e.dispatcher.lastCode(t)
}
