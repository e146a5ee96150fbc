package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/krishg/billgate/internal/auth/outbound/notifier"
	"github.com/krishg/billgate/internal/pkg/clock"
	"github.com/krishg/billgate/internal/pkg/config"
	"github.com/krishg/billgate/internal/pkg/goroutine"
	"github.com/krishg/billgate/internal/pkg/instrument"
	"github.com/krishg/billgate/internal/pkg/kvstore"
	"github.com/krishg/billgate/internal/pkg/mail"
	"github.com/krishg/billgate/internal/pkg/router"
	"github.com/krishg/billgate/internal/pkg/uid"
	"github.com/krishg/billgate/internal/pkg/validator"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID

	// resources
	dbConn     *pgxpool.Pool
	cacheConn  *redis.Client
	natsConn   *nats.Conn
	kvstore    kvstore.Store
	mail       mail.Mail
	dispatcher notifier.Dispatcher

	// server
	router     *router.Router
	httpServer *http.Server

	// shutdown hooks
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initKVStore()
	app.initNotifier()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
