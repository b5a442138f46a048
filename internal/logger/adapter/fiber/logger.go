// Package fiber provides a zerolog based access log middleware for fiber v3.
package fiber

import (
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/isl-service/capcore/internal/logger"
)

// Config implements fiber middleware struct.
type Config struct {
	// Next defines a function to skip this middleware when returned true.
	//
	// Optional. Default: nil
	Next func(c fiber.Ctx) bool

	// Enrich adds request scoped fields (tenant, user) to the access log line.
	//
	// Optional. Default: nil
	Enrich func(c fiber.Ctx, e *zerolog.Event)

	// Output replaces the configured console/file writers, mainly for tests.
	Output io.Writer

	// Config of the logger.
	Config logger.Log

	// CacheControlError max-age caching on chain errors.
	CacheControlError string

	// CheckAliveURI for disabling logging of check alive http calls.
	CheckAliveURI string
}

// ConfigDefault is the default config for fiber.
var ConfigDefault = Config{
	Next:              nil,
	CacheControlError: "max-age=0",
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return ConfigDefault
	}

	cfg := config[0]

	if cfg.CacheControlError == "" {
		cfg.CacheControlError = ConfigDefault.CacheControlError
	}

	return cfg
}

func accessWriters(cfg Config) []io.Writer {
	if cfg.Output != nil {
		return []io.Writer{cfg.Output}
	}

	var writers []io.Writer

	if cfg.Config.File.Enabled {
		if err := os.MkdirAll(cfg.Config.File.Path, 0o750); err != nil { //nolint:mnd
			log.Error().Err(err).Str("path", cfg.Config.File.Path).Msg("can't create log directory")
		} else {
			writers = append(writers, logger.NewRollingFile(cfg.Config.File.Path, cfg.Config.File.Access))
		}
	}

	if cfg.Config.Console.Enabled && cfg.Config.EnableAccessLogToConsole {
		if cfg.Config.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				NoColor:      false,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{"level"},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	return writers
}

// New creates a new fiber access logging middleware using zerolog.
func New(config ...Config) fiber.Handler {
	var (
		cfg        = configDefault(config...)
		once       sync.Once
		errHandler fiber.ErrorHandler
	)

	accessLogger := zerolog.New(zerolog.MultiLevelWriter(accessWriters(cfg)...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(c fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		once.Do(func() {
			errHandler = c.App().ErrorHandler
		})

		start := time.Now()

		chainErr := c.Next()
		if chainErr != nil {
			if errH := errHandler(c, chainErr); errH != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError) //nolint:errcheck
				c.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		elapsed := time.Since(start).Seconds()
		c.Response().Header.Set("X-Performance", strconv.FormatFloat(elapsed, 'f', 6, 64))

		// fasthttp normalizes the path, log what the client sent.
		uri := c.OriginalURL()
		if cfg.Config.DisableCheckAlive && cfg.CheckAliveURI != "" && c.Path() == cfg.CheckAliveURI {
			return nil
		}

		e := accessLogger.Log().
			Str("IP", c.IP()).
			Int("status", c.Response().StatusCode()).
			Float64("X-Performance", elapsed).
			Str("URI", uri).
			Str("method", c.Method()).
			Str("host", hostOf(c)).
			Str(fiber.HeaderXForwardedFor, c.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, c.Get(fiber.HeaderUserAgent))

		if cfg.Enrich != nil {
			cfg.Enrich(c, e)
		}

		if chainErr != nil {
			e.Err(chainErr)
		}

		e.Send()

		return nil
	}
}

// hostOf prefers the parsed hostname and falls back to the raw Host header.
func hostOf(c fiber.Ctx) string {
	if host := c.Hostname(); host != "" {
		return host
	}

	return c.Get(fiber.HeaderHost)
}
