// Package daemon wires the database, the capability service and the web service.
package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/isl-service/capcore/internal/capability"
	"github.com/isl-service/capcore/internal/config"
	"github.com/isl-service/capcore/internal/db/dsn"
	"github.com/isl-service/capcore/internal/logger/adapter/gormlogger"
	"github.com/isl-service/capcore/internal/web"
)

const redisPingTimeout = 2 * time.Second

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	db         *gorm.DB
	redis      redis.UniversalClient
	caps       *capability.Service
	webService *web.Service
}

// OpenDB connects to the configured database with gorm statements routed to zerolog.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dsn.Open(cfg)
	if err != nil {
		return nil, err
	}

	slow := time.Duration(cfg.Log.SlowQueryThreshold) * time.Millisecond

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.New(slow)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	return db, nil
}

// NewRedis returns the shared cache client, nil when redis is disabled.
// An unreachable server is logged and tolerated, the tiers degrade to misses.
func NewRedis(cfg *config.Config) redis.UniversalClient {
	if !cfg.Redis.Enabled {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis not reachable, shared cache tier degraded")
	}

	return client
}

// NewCapabilities builds the capability service on db.
func NewCapabilities(cfg *config.Config, db *gorm.DB, client redis.UniversalClient) (*capability.Service, error) {
	return capability.New(capability.Config{
		DB:          db,
		Options:     cfg.Capability,
		Redis:       client,
		RedisPrefix: cfg.Redis.Prefix,
	})
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}

	if cfg.DB.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	d := &Daemon{cfg: cfg, db: db, redis: NewRedis(cfg)}

	if d.caps, err = NewCapabilities(cfg, db, d.redis); err != nil {
		return nil, err
	}

	if d.webService, err = web.New(cfg, d.caps, nil); err != nil {
		return nil, err
	}

	return d, nil
}

// Capabilities returns the capability service of the daemon.
func (d *Daemon) Capabilities() *capability.Service {
	return d.caps
}

// Start serves HTTP until SIGINT or SIGTERM.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	addr := fmt.Sprintf(":%d", d.cfg.Webserver.Port)
	log.Info().Str("addr", addr).Str("engine", d.cfg.DB.GormEngine).Msg("starting capcore")

	err := d.webService.Start(addr)
	d.Close()

	return err
}

// Close releases the database and redis connections.
func (d *Daemon) Close() {
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			log.Warn().Err(err).Msg("closing redis client")
		}
	}

	if sqlDB, err := d.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Warn().Err(err).Msg("closing database")
		}
	}
}
