package challenge

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/krishg/billgate/internal/auth/entity"
	"github.com/krishg/billgate/internal/pkg/clock"
	"github.com/krishg/billgate/internal/pkg/goerror"
)

const (
	codeMin = 100000
	codeMax = 999999
)

// store is the persistence needed by the manager: the pending challenge
// record and the per-device issuance window.
type store interface {
	GetChallenge(ctx context.Context, deviceID string) (*entity.Challenge, error)
	PutChallenge(ctx context.Context, ch entity.Challenge) error
	DeleteChallenge(ctx context.Context, deviceID string) error
	GetRateWindow(ctx context.Context, deviceID string) (*entity.RateWindow, error)
	PutRateWindow(ctx context.Context, rw entity.RateWindow) error
}

// deviceLock is a refcounted mutex. The count tracks waiters so the
// manager can evict the entry once nobody holds or wants it.
type deviceLock struct {
	sync.Mutex
	refs int
}

// Manager owns the per-device challenge lifecycle:
// none -> pending -> verified | expired | cancelled -> none.
//
// Issuance and the rate-limit check are serialized per device so two
// near-simultaneous login attempts cannot both pass the cooldown check.
// Expiry is checked lazily on Verify and RestorePending; Sweep is an
// optional hygiene pass over this instance's own issuances, never a
// correctness requirement.
type Manager struct {
	store    store
	clock    clock.Clocker
	ttl      time.Duration
	cooldown time.Duration

	mu      sync.Mutex
	locks   map[string]*deviceLock
	pending map[string]time.Time
}

// IssueInput carries everything a new challenge needs to remember.
type IssueInput struct {
	DeviceID string
	Username string
	Remember bool
	Context  entity.DeviceContext
}

// NewManager creates a Manager. ttl is the challenge lifetime and
// cooldown the minimum gap between issuances for one device.
func NewManager(st store, clk clock.Clocker, ttl, cooldown time.Duration) *Manager {
	return &Manager{
		store:    st,
		clock:    clk,
		ttl:      ttl,
		cooldown: cooldown,
		locks:    make(map[string]*deviceLock),
		pending:  make(map[string]time.Time),
	}
}

func (m *Manager) acquire(deviceID string) *deviceLock {
	m.mu.Lock()
	l, ok := m.locks[deviceID]
	if !ok {
		l = &deviceLock{}
		m.locks[deviceID] = l
	}
	l.refs++
	m.mu.Unlock()

	l.Lock()
	return l
}

func (m *Manager) release(deviceID string, l *deviceLock) {
	l.Unlock()

	m.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(m.locks, deviceID)
	}
	m.mu.Unlock()
}

// trackPending records the expiry of this instance's latest issuance so
// Sweep knows which devices to visit. The store stays authoritative.
func (m *Manager) trackPending(deviceID string, expiresAt time.Time) {
	m.mu.Lock()
	m.pending[deviceID] = expiresAt
	m.mu.Unlock()
}

func (m *Manager) untrackPending(deviceID string) {
	m.mu.Lock()
	delete(m.pending, deviceID)
	m.mu.Unlock()
}

// Issue creates a new pending challenge for the device, overwriting any
// previous one. It fails with entity.RateLimitedError when called within
// the cooldown window since the device's last issuance.
func (m *Manager) Issue(ctx context.Context, in IssueInput) (*entity.Challenge, error) {
	l := m.acquire(in.DeviceID)
	defer m.release(in.DeviceID, l)

	now := m.clock.Now()

	rw, err := m.store.GetRateWindow(ctx, in.DeviceID)
	if err != nil && !errors.Is(err, goerror.ErrNotFound) {
		return nil, err
	}
	if rw != nil {
		if elapsed := now.Sub(rw.LastIssuedAt); elapsed < m.cooldown {
			return nil, &entity.RateLimitedError{RetryAfter: m.cooldown - elapsed}
		}
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	ch := entity.Challenge{
		DeviceID:  in.DeviceID,
		Code:      code,
		Username:  in.Username,
		Remember:  in.Remember,
		Context:   in.Context,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	if err := m.store.PutChallenge(ctx, ch); err != nil {
		return nil, err
	}

	if err := m.store.PutRateWindow(ctx, entity.RateWindow{DeviceID: in.DeviceID, LastIssuedAt: now}); err != nil {
		return nil, err
	}

	m.trackPending(in.DeviceID, ch.ExpiresAt)

	return &ch, nil
}

// Verify checks the submitted code against the device's pending
// challenge. A match consumes the challenge (single use) and returns it;
// a mismatch leaves the challenge live. An expired challenge is
// discarded as a side effect. The exact expiry instant counts as
// expired.
func (m *Manager) Verify(ctx context.Context, deviceID, submittedCode string) (*entity.Challenge, error) {
	l := m.acquire(deviceID)
	defer m.release(deviceID, l)

	ch, err := m.store.GetChallenge(ctx, deviceID)
	if errors.Is(err, goerror.ErrNotFound) {
		m.untrackPending(deviceID)
		return nil, entity.ErrNoPendingChallenge
	}
	if err != nil {
		return nil, err
	}

	if !m.clock.Now().Before(ch.ExpiresAt) {
		if err := m.store.DeleteChallenge(ctx, deviceID); err != nil {
			slog.ErrorContext(ctx, "failed to discard expired challenge", "device_id", deviceID, "error", err)
		}
		m.untrackPending(deviceID)
		return nil, entity.ErrChallengeExpired
	}

	submitted := strings.TrimSpace(submittedCode)
	if subtle.ConstantTimeCompare([]byte(submitted), []byte(ch.Code)) != 1 {
		return nil, entity.ErrCodeMismatch
	}

	if err := m.store.DeleteChallenge(ctx, deviceID); err != nil {
		return nil, err
	}
	m.untrackPending(deviceID)

	return ch, nil
}

// Cancel discards any pending challenge for the device. It is idempotent
// and succeeds when nothing is pending.
func (m *Manager) Cancel(ctx context.Context, deviceID string) error {
	l := m.acquire(deviceID)
	defer m.release(deviceID, l)

	if err := m.store.DeleteChallenge(ctx, deviceID); err != nil {
		return err
	}
	m.untrackPending(deviceID)

	return nil
}

// RestorePending returns the device's live challenge, or nil when none
// exists. A challenge found past its expiry is discarded and treated as
// absent, so a reload after the window closes starts from scratch.
func (m *Manager) RestorePending(ctx context.Context, deviceID string) (*entity.Challenge, error) {
	l := m.acquire(deviceID)
	defer m.release(deviceID, l)

	ch, err := m.store.GetChallenge(ctx, deviceID)
	if errors.Is(err, goerror.ErrNotFound) {
		m.untrackPending(deviceID)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !m.clock.Now().Before(ch.ExpiresAt) {
		if err := m.store.DeleteChallenge(ctx, deviceID); err != nil {
			slog.ErrorContext(ctx, "failed to discard expired challenge", "device_id", deviceID, "error", err)
		}
		m.untrackPending(deviceID)
		return nil, nil
	}

	return ch, nil
}

// Sweep discards challenges this instance issued whose expiry has
// passed and returns how many it removed. Lazy expiry on Verify and
// RestorePending stays the correctness mechanism; sweeping only keeps
// the store from accumulating records for devices that never return.
func (m *Manager) Sweep(ctx context.Context) int {
	now := m.clock.Now()

	m.mu.Lock()
	due := make([]string, 0, len(m.pending))
	for deviceID, expiresAt := range m.pending {
		if !now.Before(expiresAt) {
			due = append(due, deviceID)
		}
	}
	m.mu.Unlock()

	discarded := 0
	for _, deviceID := range due {
		if ctx.Err() != nil {
			return discarded
		}

		l := m.acquire(deviceID)

		ch, err := m.store.GetChallenge(ctx, deviceID)
		switch {
		case errors.Is(err, goerror.ErrNotFound):
			m.untrackPending(deviceID)

		case err != nil:
			slog.WarnContext(ctx, "failed to load challenge during sweep", "device_id", deviceID, "error", err)

		case !m.clock.Now().Before(ch.ExpiresAt):
			if err := m.store.DeleteChallenge(ctx, deviceID); err != nil {
				slog.ErrorContext(ctx, "failed to discard expired challenge", "device_id", deviceID, "error", err)
			} else {
				m.untrackPending(deviceID)
				discarded++
			}

		default:
			// A newer challenge was issued since the snapshot.
			m.trackPending(deviceID, ch.ExpiresAt)
		}

		m.release(deviceID, l)
	}

	return discarded
}

// SweepLoop runs Sweep every interval until ctx is cancelled.
func (m *Manager) SweepLoop(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(ctx); n > 0 {
				slog.InfoContext(ctx, "discarded expired challenges", "count", n)
			}
		}
	}
}

// generateCode draws a uniform 6-digit code in [100000, 999999]; the
// lower bound rules out leading-zero values.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(codeMin+n.Int64(), 10), nil
}
