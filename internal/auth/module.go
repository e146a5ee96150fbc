// Package auth implements device-trust login with one-time code
// verification for unknown devices.
package auth

import (
	"context"

	"github.com/krishg/billgate/internal/auth/challenge"
	"github.com/krishg/billgate/internal/auth/credential"
	"github.com/krishg/billgate/internal/auth/inbound"
	"github.com/krishg/billgate/internal/auth/outbound/geoip"
	"github.com/krishg/billgate/internal/auth/outbound/notifier"
	"github.com/krishg/billgate/internal/auth/outbound/store"
	"github.com/krishg/billgate/internal/auth/usecase"
	"github.com/krishg/billgate/internal/pkg/clock"
	"github.com/krishg/billgate/internal/pkg/config"
	"github.com/krishg/billgate/internal/pkg/goroutine"
	"github.com/krishg/billgate/internal/pkg/instrument"
	"github.com/krishg/billgate/internal/pkg/kvstore"
	"github.com/krishg/billgate/internal/pkg/router"
	"github.com/krishg/billgate/internal/pkg/uid"
	"github.com/krishg/billgate/internal/pkg/validator"
)

type Dependency struct {
	Ctx        context.Context
	KVStore    kvstore.Store              `validate:"required"`
	Dispatcher notifier.Dispatcher        `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repo := store.NewStore(dep.KVStore, dep.Instrument)

	challenges := challenge.NewManager(repo, dep.Clock,
		dep.Config.GetMinute("modules.auth.challenge_ttl_minutes"),
		dep.Config.GetSecond("modules.auth.issue_cooldown_seconds"))

	creds := credential.New(credential.Config{
		Username:         dep.Config.GetString("modules.auth.username"),
		Password:         dep.Config.GetString("modules.auth.password"),
		PasswordIsBcrypt: dep.Config.GetBool("modules.auth.password_is_bcrypt"),
	})

	location := geoip.NewResolver(
		dep.Config.GetString("modules.auth.geoip_endpoint"),
		dep.Config.GetSecond("modules.auth.geoip_timeout_seconds"))

	uc := usecase.New(usecase.Dependency{
		RepoStore:  repo,
		Challenges: challenges,
		Credential: creds,
		Dispatcher: dep.Dispatcher,
		Location:   location,
		Validator:  dep.Validator,
		Clock:      dep.Clock,
		UUID:       dep.UUID,
		Instrument: dep.Instrument,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	if dep.Ctx != nil {
		if interval := dep.Config.GetMinute("modules.auth.sweep_interval_minutes"); interval > 0 {
			dep.Goroutine.Go(dep.Ctx, func(ctx context.Context) error {
				return challenges.SweepLoop(ctx, interval)
			})
		}
	}

	return nil
}
