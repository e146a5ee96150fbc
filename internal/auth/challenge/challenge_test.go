package challenge

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/krishg/billgate/internal/auth/entity"
	authstore "github.com/krishg/billgate/internal/auth/outbound/store"
	"github.com/krishg/billgate/internal/pkg/instrument"
	"github.com/krishg/billgate/internal/pkg/kvstore"
)

const (
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

func newTestManager(t *testing.T) (*Manager, *fakeClock) {
	t.Helper()

	clk := &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
	st := authstore.NewStore(kvstore.NewMemory(), instrument.NewNoop())

	return NewManager(st, clk, testTTL, testCooldown), clk
}

var reSixDigits = regexp.MustCompile(`^[1-9][0-9]{5}$`)

func TestManagerIssue(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesSixDigitCode", func(t *testing.T) {
		// Arrange
		m, clk := newTestManager(t)

		// Act
		ch, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})

		// Assert
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if !reSixDigits.MatchString(ch.Code) {
			t.Fatalf("expected 6-digit code without leading zero, got %q", ch.Code)
		}
		if !ch.ExpiresAt.Equal(clk.now.Add(testTTL)) {
			t.Fatalf("expected expiry %v, got %v", clk.now.Add(testTTL), ch.ExpiresAt)
		}
	})

	t.Run("WithinCooldownRateLimited", func(t *testing.T) {
		// Arrange
		m, clk := newTestManager(t)
		if _, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"}); err != nil {
			t.Fatalf("first issue: %v", err)
		}
		clk.advance(10 * time.Second)

		// Act
		_, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})

		// Assert
		var rle *entity.RateLimitedError
		if !errors.As(err, &rle) {
			t.Fatalf("expected RateLimitedError, got %v", err)
		}
		if rle.RetryAfter != 20*time.Second {
			t.Fatalf("expected 20s retry-after, got %v", rle.RetryAfter)
		}
		if rle.RetryAfterSeconds() != 20 {
			t.Fatalf("expected 20 retry-after seconds, got %d", rle.RetryAfterSeconds())
		}
	})

	t.Run("AtCooldownBoundaryAllowed", func(t *testing.T) {
		// Arrange
		m, clk := newTestManager(t)
		if _, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"}); err != nil {
			t.Fatalf("first issue: %v", err)
		}
		clk.advance(testCooldown)

		// Act
		_, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})

		// Assert
		if err != nil {
			t.Fatalf("expected issue at the cooldown boundary to succeed, got %v", err)
		}
	})

	t.Run("CooldownIsPerDevice", func(t *testing.T) {
		// Arrange
		m, _ := newTestManager(t)
		if _, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"}); err != nil {
			t.Fatalf("first issue: %v", err)
		}

		// Act
		_, err := m.Issue(ctx, IssueInput{DeviceID: "dev-2", Username: "bill"})

		// Assert
		if err != nil {
			t.Fatalf("expected another device to be unaffected, got %v", err)
		}
	})

	t.Run("OverwritesPreviousChallenge", func(t *testing.T) {
		// Arrange
		m, clk := newTestManager(t)
		first, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})
		if err != nil {
			t.Fatalf("first issue: %v", err)
		}
		clk.advance(time.Minute)

		// Act
		second, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})

		// Assert
		if err != nil {
			t.Fatalf("second issue: %v", err)
		}
		live, err := m.RestorePending(ctx, "dev-1")
		if err != nil {
			t.Fatalf("restore: %v", err)
		}
		if live.Code != second.Code {
			t.Fatalf("expected the second challenge to be live")
		}
		if first.Code != second.Code {
			if _, err := m.Verify(ctx, "dev-1", first.Code); !errors.Is(err, entity.ErrCodeMismatch) {
				t.Fatalf("expected the first code to be dead, got %v", err)
			}
		}
	})
}

func TestManagerVerify(t *testing.T) {
	ctx := context.Background()

	t.Run("NoPendingChallenge", func(t *testing.T) {
		// Arrange
		m, _ := newTestManager(t)

		// Act
		_, err := m.Verify(ctx, "dev-1", "123456")

		// Assert
		if !errors.Is(err, entity.ErrNoPendingChallenge) {
			t.Fatalf("expected ErrNoPendingChallenge, got %v", err)
		}
	})

	t.Run("MatchConsumesChallenge", func(t *testing.T) {
		// Arrange
		m, _ := newTestManager(t)
		issued, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill", Remember: true})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		// Act
		ch, err := m.Verify(ctx, "dev-1", issued.Code)

		// Assert
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if ch.Username != "bill" || !ch.Remember {
			t.Fatalf("unexpected challenge payload %+v", ch)
		}
		if _, err := m.Verify(ctx, "dev-1", issued.Code); !errors.Is(err, entity.ErrNoPendingChallenge) {
			t.Fatalf("expected the code to be single use, got %v", err)
		}
	})

	t.Run("MismatchKeepsChallengeLive", func(t *testing.T) {
		// Arrange
		m, _ := newTestManager(t)
		issued, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		// Act
		_, err = m.Verify(ctx, "dev-1", "000000")

		// Assert
		if !errors.Is(err, entity.ErrCodeMismatch) {
			t.Fatalf("expected ErrCodeMismatch, got %v", err)
		}
		if _, err := m.Verify(ctx, "dev-1", issued.Code); err != nil {
			t.Fatalf("expected a retry with the right code to succeed, got %v", err)
		}
	})

	t.Run("TrimsSubmittedCode", func(t *testing.T) {
		// Arrange
		m, _ := newTestManager(t)
		issued, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		// Act
		_, err = m.Verify(ctx, "dev-1", "  "+issued.Code+"\n")

		// Assert
		if err != nil {
			t.Fatalf("expected surrounding whitespace to be ignored, got %v", err)
		}
	})

	t.Run("JustBeforeExpiryStillValid", func(t *testing.T) {
		// Arrange
		m, clk := newTestManager(t)
		issued, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		clk.advance(testTTL - time.Second)

		// Act
		_, err = m.Verify(ctx, "dev-1", issued.Code)

		// Assert
		if err != nil {
			t.Fatalf("expected verify just before expiry to succeed, got %v", err)
		}
	})

	t.Run("ExactExpiryInstantIsExpired", func(t *testing.T) {
		// Arrange
		m, clk := newTestManager(t)
		issued, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		clk.advance(testTTL)

		// Act
		_, err = m.Verify(ctx, "dev-1", issued.Code)

		// Assert
		if !errors.Is(err, entity.ErrChallengeExpired) {
			t.Fatalf("expected ErrChallengeExpired, got %v", err)
		}
		if _, err := m.Verify(ctx, "dev-1", issued.Code); !errors.Is(err, entity.ErrNoPendingChallenge) {
			t.Fatalf("expected the expired challenge to be discarded, got %v", err)
		}
	})
}

func TestManagerCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("DiscardsPendingChallenge", func(t *testing.T) {
		// Arrange
		m, _ := newTestManager(t)
		issued, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}

		// Act
		if err := m.Cancel(ctx, "dev-1"); err != nil {
			t.Fatalf("cancel: %v", err)
		}

		// Assert
		if _, err := m.Verify(ctx, "dev-1", issued.Code); !errors.Is(err, entity.ErrNoPendingChallenge) {
			t.Fatalf("expected no pending challenge after cancel, got %v", err)
		}
	})

	t.Run("IdempotentWithoutChallenge", func(t *testing.T) {
		// Arrange
		m, _ := newTestManager(t)

		// Act
		err := m.Cancel(ctx, "dev-1")

		// Assert
		if err != nil {
			t.Fatalf("expected cancel with nothing pending to succeed, got %v", err)
		}
	})
}

func TestManagerRestorePending(t *testing.T) {
	ctx := context.Background()

	t.Run("NothingPending", func(t *testing.T) {
		// Arrange
		m, _ := newTestManager(t)

		// Act
		ch, err := m.RestorePending(ctx, "dev-1")

		// Assert
		if err != nil {
			t.Fatalf("restore: %v", err)
		}
		if ch != nil {
			t.Fatalf("expected nil challenge, got %+v", ch)
		}
	})

	t.Run("LiveChallengeReturnedAsIs", func(t *testing.T) {
		// Arrange
		m, clk := newTestManager(t)
		issued, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		clk.advance(5 * time.Minute)

		// Act
		ch, err := m.RestorePending(ctx, "dev-1")

		// Assert
		if err != nil {
			t.Fatalf("restore: %v", err)
		}
		if ch == nil || ch.Code != issued.Code {
			t.Fatalf("expected the original challenge back, got %+v", ch)
		}
		if !ch.ExpiresAt.Equal(issued.ExpiresAt) {
			t.Fatalf("expected restore to keep the original expiry")
		}
	})

	t.Run("ExpiredChallengeDiscarded", func(t *testing.T) {
		// Arrange
		m, clk := newTestManager(t)
		if _, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"}); err != nil {
			t.Fatalf("issue: %v", err)
		}
		clk.advance(testTTL)

		// Act
		ch, err := m.RestorePending(ctx, "dev-1")

		// Assert
		if err != nil {
			t.Fatalf("restore: %v", err)
		}
		if ch != nil {
			t.Fatalf("expected expired challenge to be treated as absent, got %+v", ch)
		}
	})
}

func TestManagerSweep(t *testing.T) {
	ctx := context.Background()

	t.Run("DiscardsExpiredIssuances", func(t *testing.T) {
		// Arrange
		m, clk := newTestManager(t)
		for _, dev := range []string{"dev-1", "dev-2"} {
			if _, err := m.Issue(ctx, IssueInput{DeviceID: dev, Username: "bill"}); err != nil {
				t.Fatalf("issue %s: %v", dev, err)
			}
		}
		clk.advance(testTTL)

		// Act
		n := m.Sweep(ctx)

		// Assert
		if n != 2 {
			t.Fatalf("expected 2 discarded challenges, got %d", n)
		}
		for _, dev := range []string{"dev-1", "dev-2"} {
			ch, err := m.RestorePending(ctx, dev)
			if err != nil {
				t.Fatalf("restore %s: %v", dev, err)
			}
			if ch != nil {
				t.Fatalf("expected %s to have no challenge after sweep, got %+v", dev, ch)
			}
		}
		if n := m.Sweep(ctx); n != 0 {
			t.Fatalf("expected a second sweep to find nothing, got %d", n)
		}
	})

	t.Run("LeavesLiveChallenges", func(t *testing.T) {
		// Arrange
		m, clk := newTestManager(t)
		issued, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		clk.advance(time.Minute)

		// Act
		n := m.Sweep(ctx)

		// Assert
		if n != 0 {
			t.Fatalf("expected nothing discarded, got %d", n)
		}
		ch, err := m.RestorePending(ctx, "dev-1")
		if err != nil {
			t.Fatalf("restore: %v", err)
		}
		if ch == nil || ch.Code != issued.Code {
			t.Fatalf("expected the live challenge to survive the sweep, got %+v", ch)
		}
	})

	t.Run("IgnoresConsumedChallenges", func(t *testing.T) {
		// Arrange
		m, clk := newTestManager(t)
		issued, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if _, err := m.Verify(ctx, "dev-1", issued.Code); err != nil {
			t.Fatalf("verify: %v", err)
		}
		clk.advance(testTTL)

		// Act
		n := m.Sweep(ctx)

		// Assert
		if n != 0 {
			t.Fatalf("expected a consumed challenge to be gone already, got %d", n)
		}
	})
}

func TestManagerReleasesDeviceLocks(t *testing.T) {
	// Arrange
	ctx := context.Background()
	m, clk := newTestManager(t)

	// Act
	issued, err := m.Issue(ctx, IssueInput{DeviceID: "dev-1", Username: "bill"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(ctx, "dev-1", "000000"); !errors.Is(err, entity.ErrCodeMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if _, err := m.Verify(ctx, "dev-1", issued.Code); err != nil {
		t.Fatalf("verify: %v", err)
	}
	clk.advance(testCooldown)
	if _, err := m.Issue(ctx, IssueInput{DeviceID: "dev-2", Username: "bill"}); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := m.Cancel(ctx, "dev-2"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Assert
	m.mu.Lock()
	held := len(m.locks)
	m.mu.Unlock()
	if held != 0 {
		t.Fatalf("expected no retained device locks, found %d", held)
	}
}
