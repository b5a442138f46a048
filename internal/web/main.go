// Package web is the HTTP surface of capcore.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/isl-service/capcore/internal/capability"
	"github.com/isl-service/capcore/internal/config"
	fiberlog "github.com/isl-service/capcore/internal/logger/adapter/fiber"
	"github.com/isl-service/capcore/internal/web/handler"
	"github.com/isl-service/capcore/internal/web/handler/capacidades"
	"github.com/isl-service/capcore/internal/web/handler/permisosweb"
	"github.com/isl-service/capcore/internal/web/middleware/auth"
)

// MetricsPath exposes the prometheus registry when enabled.
const MetricsPath = "/metrics"

// ErrNilDependency is returned by New without config or capability service.
var ErrNilDependency = errors.New("config and capability service are required")

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start listens on addr until the app is shut down.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		err := s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and stops the app gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive answers 200 while serving and 503 during a graceful shutdown.
func (s *Service) CheckAlive(c fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// New creates the web service. gatherer backs /metrics and may be nil to
// use the default prometheus registry.
func New(cfg *config.Config, caps *capability.Service, gatherer prometheus.Gatherer) (*Service, error) {
	if cfg == nil || caps == nil {
		return nil, ErrNilDependency
	}

	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Immutable:      true,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recoverer.New())
	}

	app.Use(fiberlog.New(fiberlog.Config{
		Config:        cfg.Log,
		CheckAliveURI: cfg.Webserver.CheckAliveURI,
		Enrich: func(c fiber.Ctx, e *zerolog.Event) {
			if p, ok := auth.PrincipalFrom(c); ok {
				e.Str("tenant", strconv.Itoa(p.TenantID)).Str("user_id", p.UserID.String())
			}
		},
	}))

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	app.Get(cfg.Webserver.CheckAliveURI, service.CheckAlive)

	if cfg.Webserver.EnableMetrics {
		app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group(handler.APIPath, auth.Middleware)

	handlers := []handler.Service{new(capacidades.Service), new(permisosweb.Service)}
	for _, h := range handlers {
		if err := h.Init(api, caps); err != nil {
			return nil, err
		}
	}

	return service, nil
}
