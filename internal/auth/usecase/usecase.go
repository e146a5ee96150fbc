package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/krishg/billgate/internal/auth/challenge"
	"github.com/krishg/billgate/internal/auth/entity"
	"github.com/krishg/billgate/internal/auth/outbound/notifier"
	"github.com/krishg/billgate/internal/pkg/clock"
	"github.com/krishg/billgate/internal/pkg/goerror"
	"github.com/krishg/billgate/internal/pkg/instrument"
	"github.com/krishg/billgate/internal/pkg/uid"
	"github.com/krishg/billgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoStore interface {
	GetTrust(ctx context.Context, deviceID string) (*entity.TrustRecord, error)
	PutTrust(ctx context.Context, tr entity.TrustRecord) error
	DeleteTrust(ctx context.Context, deviceID string) error

	GetSession(ctx context.Context, deviceID string) (*entity.Session, error)
	PutSession(ctx context.Context, sess entity.Session) error
	DeleteSession(ctx context.Context, deviceID string) error
}

type challengeManager interface {
	Issue(ctx context.Context, in challenge.IssueInput) (*entity.Challenge, error)
	Verify(ctx context.Context, deviceID, submittedCode string) (*entity.Challenge, error)
	Cancel(ctx context.Context, deviceID string) error
	RestorePending(ctx context.Context, deviceID string) (*entity.Challenge, error)
}

type credentialValidator interface {
	Validate(username, password string) bool
}

type locationResolver interface {
	Lookup(ctx context.Context, ip string) string
}

type Usecase struct {
	repoStore  repoStore
	challenges challengeManager
	credential credentialValidator
	dispatcher notifier.Dispatcher
	location   locationResolver
	validator  validator.Validator
	clock      clock.Clocker
	uuid       uid.StringID
	ins        instrument.Instrumentation
}

type Dependency struct {
	RepoStore  repoStore
	Challenges challengeManager
	Credential credentialValidator
	Dispatcher notifier.Dispatcher
	Location   locationResolver
	Validator  validator.Validator
	Clock      clock.Clocker
	UUID       uid.StringID
	Instrument instrument.Instrumentation
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoStore:  dep.RepoStore,
		challenges: dep.Challenges,
		credential: dep.Credential,
		dispatcher: dep.Dispatcher,
		location:   dep.Location,
		validator:  dep.Validator,
		clock:      dep.Clock,
		uuid:       dep.UUID,
		ins:        dep.Instrument,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

// ensureTrusted makes the device permanently trusted. First trust wins:
// an existing record is returned untouched so FirstTrustedAt keeps its
// original meaning and the token is never rotated.
func (s *Usecase) ensureTrusted(ctx context.Context, deviceID string) (*entity.TrustRecord, error) {
	tr, err := s.repoStore.GetTrust(ctx, deviceID)
	if err == nil {
		return tr, nil
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get trust record", "device_id", deviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	rec := entity.TrustRecord{
		DeviceID:       deviceID,
		TrustToken:     s.uuid.Generate(),
		FirstTrustedAt: s.clock.Now(),
	}

	if err := s.repoStore.PutTrust(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "failed to repo put trust record", "device_id", deviceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &rec, nil
}
