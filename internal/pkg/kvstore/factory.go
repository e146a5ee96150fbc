package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	// DriverMemory selects the in-process backend.
	DriverMemory = "memory"
	// DriverRedis selects the redis backend.
	DriverRedis = "redis"
	// DriverPostgres selects the postgres backend.
	DriverPostgres = "postgres"
)

// ErrUnknownDriver indicates an unsupported kvstore driver.
var ErrUnknownDriver = errors.New("kvstore: unknown driver")

// FactoryOptions groups configuration for kvstore drivers.
type FactoryOptions struct {
	// RedisClient backs the redis driver.
	RedisClient *redis.Client
	// RedisPrefix namespaces redis keys.
	RedisPrefix string
	// PostgresPool backs the postgres driver.
	PostgresPool *pgxpool.Pool
	// PostgresTable overrides the records table name.
	PostgresTable string
}

// NewFromDriver constructs a Store implementation by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Store, error) {
	switch strings.ToLower(driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverRedis:
		if opts.RedisClient == nil {
			return nil, errors.New("kvstore: redis driver requires a client")
		}
		return NewRedis(opts.RedisClient, opts.RedisPrefix), nil
	case DriverPostgres:
		if opts.PostgresPool == nil {
			return nil, errors.New("kvstore: postgres driver requires a pool")
		}
		return NewPostgres(ctx, opts.PostgresPool, WithTableName(opts.PostgresTable))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}
