package app

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

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
	"github.com/rs/cors"
)

func (a *App) initConfig() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "/config/config.yaml"
		if os.Getenv("LOCAL") == "true" {
			path = "./config/config.yaml"
		}
	}

	cfg, err := config.NewViper(path)
	if err != nil {
		slog.Error("failed to init config", "error", err)
		os.Exit(1)
	}

	//nolint:errcheck,gosec // ignore error
	os.Setenv("TZ", cfg.GetString("app.tz"))

	a.config = cfg
}

func (a *App) initInstrument() {
	ins, err := instrument.New(context.Background(), &instrument.Config{
		Enabled:          true,
		ServiceName:      a.config.GetString("instrument.service_name"),
		ServiceVersion:   a.config.GetString("instrument.service_version"),
		Environment:      a.config.GetString("instrument.env"),
		OTLPEndpoint:     a.config.GetString("instrument.otlp_endpoint"),
		OTLPSecure:       a.config.GetBool("instrument.otlp_secure"),
		TraceSampleRatio: a.config.GetFloat64("instrument.trace_sample_ratio"),
		MetricsInterval:  a.config.GetSecond("instrument.metric_interval_seconds"),
		MaskFields:       a.config.GetArray("instrument.log_mask_fields"),
	})
	if err != nil {
		slog.Error("failed to init instrumentation", "error", err)
		os.Exit(1)
	}
	a.ins = ins
}

func (a *App) initLibraries() {
	a.clock = clock.New()
	a.uuid = uid.NewUUID()
	a.goroutine = goroutine.NewManager(a.config.GetInt("app.server.max_goroutine"))

	validator, err := validator.NewV10Validator()
	if err != nil {
		slog.Error("failed to init validation v10 validator", "error", err)
		os.Exit(1)
	}
	a.validator = validator
}

func (a *App) initKVStore() {
	driver := strings.TrimSpace(a.config.GetString("kvstore.driver"))

	if driver == kvstore.DriverRedis {
		opt, err := redis.ParseURL(a.config.GetString("redis.url"))
		if err != nil {
			slog.Error("failed to parse redis url", "error", err)
			os.Exit(1)
		}

		rdb := redis.NewClient(opt)

		pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			slog.Error("failed to init redis", "error", err)
			os.Exit(1)
		}

		a.cacheConn = rdb
	}

	if driver == kvstore.DriverPostgres {
		config, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
		if err != nil {
			slog.Error("failed to parse DB connection string.", "error", err)
			os.Exit(1)
		}

		config.MaxConns = a.config.GetInt32("database.pool.max_conns")
		config.MinConns = a.config.GetInt32("database.pool.min_conns")
		config.MaxConnLifetime = a.config.GetSecond("database.pool.max_conn_lifetime_seconds")
		config.MaxConnIdleTime = a.config.GetSecond("database.pool.max_conn_idle_seconds")
		config.HealthCheckPeriod = a.config.GetSecond("database.pool.health_check_period_seconds")

		pool, err := pgxpool.NewWithConfig(a.ctx, config)
		if err != nil {
			slog.Error("failed to create DB connection pool", "error", err)
			os.Exit(1)
		}

		pingCtx, cancel := context.WithTimeout(a.ctx, 5*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			slog.Error("failed to ping DB", "error", err)
			os.Exit(1)
		}

		a.dbConn = pool
	}

	st, err := kvstore.NewFromDriver(a.ctx, driver, kvstore.FactoryOptions{
		RedisClient:   a.cacheConn,
		RedisPrefix:   a.config.GetString("kvstore.redis.prefix"),
		PostgresPool:  a.dbConn,
		PostgresTable: a.config.GetString("kvstore.postgres.table"),
	})
	if err != nil {
		slog.Error("failed to init kvstore", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.kvstore = st
}

func (a *App) initNotifier() {
	driver := strings.TrimSpace(a.config.GetString("notifier.driver"))

	if driver == notifier.DriverEmail {
		mail, err := mail.NewSMTP(mail.SMTPConfig{
			Host:     a.config.GetString("mail.host"),
			Port:     a.config.GetInt("mail.port"),
			Username: a.config.GetString("mail.username"),
			Password: a.config.GetString("mail.password"),
			From:     a.config.GetString("mail.from"),
		})
		if err != nil {
			slog.Error("failed to init mail", "error", err)
			os.Exit(1)
		}

		a.mail = mail
	}

	if driver == notifier.DriverNATS {
		conn, err := nats.Connect(a.config.GetString("nats.url"),
			nats.Name(a.config.GetString("nats.name")),
			nats.MaxReconnects(a.config.GetInt("nats.max_reconnects")),
			nats.Timeout(a.config.GetSecond("nats.timeout_seconds")),
			nats.ReconnectWait(a.config.GetSecond("nats.reconnect_wait_seconds")),
			nats.RetryOnFailedConnect(a.config.GetBool("nats.retry_on_failed_connect")),
		)
		if err != nil {
			slog.Error("failed to init nats", "error", err)
			os.Exit(1)
		}

		a.natsConn = conn
	}

	dispatcher, err := notifier.NewFromDriver(driver, notifier.FactoryOptions{
		Email: notifier.EmailOptions{
			Client:     a.mail,
			Recipient:  a.config.GetString("notifier.email.recipient"),
			Timeout:    a.config.GetSecond("notifier.email.timeout_seconds"),
			MaxRetries: a.config.GetUint64("notifier.email.max_retries"),
		},
		NATS: notifier.NATSOptions{
			Conn:    a.natsConn,
			Subject: a.config.GetString("notifier.nats.subject"),
		},
	})
	if err != nil {
		slog.Error("failed to init notifier", "error", err, "driver", driver)
		os.Exit(1)
	}

	a.dispatcher = dispatcher
}

func (a *App) initHTTPServer() {
	a.router = router.NewRouter(router.Config{
		Config:     a.config,
		UUID:       a.uuid,
		Instrument: a.ins,
	})

	routerWithCORS := cors.New(cors.Options{
		AllowedOrigins: a.config.GetArray("app.server.cors"),
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(a.router)

	a.httpServer = &http.Server{
		Addr:              a.config.GetString("app.server.http.address"),
		Handler:           routerWithCORS,
		ReadTimeout:       a.config.GetSecond("app.server.http.read_timeout_seconds"),
		ReadHeaderTimeout: a.config.GetSecond("app.server.http.read_header_timeout_seconds"),
		WriteTimeout:      a.config.GetSecond("app.server.http.write_timeout_seconds"),
		IdleTimeout:       a.config.GetSecond("app.server.http.idle_timeout_seconds"),
	}
}

func (a *App) initClosers() {
	a.closers = []struct {
		name string
		fn   func(context.Context) error
	}{
		{
			name: "Instrument",
			fn: func(ctx context.Context) error {
				return a.ins.Shutdown(ctx)
			},
		},
		{
			name: "KVStore",
			fn: func(context.Context) error {
				return a.kvstore.Close()
			},
		},
		{
			name: "NATS",
			fn: func(context.Context) error {
				if a.natsConn != nil {
					a.natsConn.Close()
				}

				return nil
			},
		},
		{
			name: "Redis",
			fn: func(context.Context) error {
				if a.cacheConn != nil {
					return a.cacheConn.Close()
				}

				return nil
			},
		},
		{
			name: "Database",
			fn: func(context.Context) error {
				if a.dbConn != nil {
					a.dbConn.Close()
				}

				return nil
			},
		},
		{
			name: "Config",
			fn: func(context.Context) error {
				return a.config.Close()
			},
		},
	}
}
