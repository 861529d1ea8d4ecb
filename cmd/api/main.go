// Package main provides the entrypoint for the roadtrip API server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/breatheroute/roadtrip/internal/api"
	"github.com/breatheroute/roadtrip/internal/api/handler"
	"github.com/breatheroute/roadtrip/internal/api/middleware"
	"github.com/breatheroute/roadtrip/internal/config"
	"github.com/breatheroute/roadtrip/internal/metrics"
	"github.com/breatheroute/roadtrip/internal/overlay"
	"github.com/breatheroute/roadtrip/internal/planner"
	"github.com/breatheroute/roadtrip/internal/provider/resilience"
	"github.com/breatheroute/roadtrip/internal/session"
	"github.com/breatheroute/roadtrip/internal/telemetry"
	"github.com/breatheroute/roadtrip/internal/trip"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "roadtrip-api"

	cfg, err := config.Load()
	if err != nil {
		stderrLog := zerolog.New(os.Stderr)
		stderrLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	var out = zerolog.New(os.Stdout)
	if cfg.Log.Pretty {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	log := out.Level(cfg.LogLevel()).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Env).
		Msg("starting roadtrip API")

	// Initialize OpenTelemetry
	ctx := context.Background()
	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SampleRatio:    cfg.Telemetry.SampleRatio,
		ExportInterval: cfg.Telemetry.ExportInterval,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize HTTP metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	providerMetrics, err := telemetry.NewProviderMetrics(planner.ProviderName)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}
	promMetrics := metrics.New()

	styles, err := cfg.LoadStyles()
	if err != nil {
		log.Error().Err(err).Str("file", cfg.Overlay.StylesFile).Msg("failed to load marker styles")
		os.Exit(1)
	}

	registry := resilience.NewRegistry()
	plannerClient := planner.NewClient(planner.ClientConfig{
		BaseURL:      cfg.Planner.BaseURL,
		Timeout:      cfg.Planner.Timeout,
		MaxBodyBytes: cfg.Planner.MaxBodyBytes,
		CircuitBreaker: &resilience.CircuitBreakerConfig{
			MinRequests:  cfg.Planner.Breaker.MinRequests,
			FailureRatio: cfg.Planner.Breaker.FailureRatio,
			Timeout:      cfg.Planner.Breaker.OpenTimeout,
		},
		Registry: registry,
		Metrics:  providerMetrics,
		Logger:   log.With().Str("component", "planner").Logger(),
	})
	log.Info().Str("base_url", cfg.Planner.BaseURL).Msg("planning service client initialized")

	builder := trip.NewRequestBuilder(trip.BuilderConfig{
		Location:     cfg.Location(),
		MaxStopHours: cfg.Request.MaxStopHours,
	})
	normalizer := overlay.NewNormalizer(overlay.Config{
		Classifier:          overlay.NewClassifier(styles),
		RecommendationLimit: cfg.Overlay.RecommendationLimit,
	})

	sessionLog := log.With().Str("component", "session").Logger()
	store := session.NewStore(session.StoreConfig{
		Session: session.Config{
			Builder:    builder,
			Planner:    plannerClient,
			Normalizer: normalizer,
			Metrics:    promMetrics,
			Logger:     sessionLog,
		},
		IdleTTL:         cfg.Session.IdleTTL,
		CleanupInterval: cfg.Session.CleanupInterval,
		MaxSessions:     cfg.Session.MaxSessions,
		Metrics:         promMetrics,
		Logger:          sessionLog,
	})
	defer store.Close()

	router := api.NewRouter(api.RouterConfig{
		Version:     Version,
		BuildTime:   BuildTime,
		Logger:      log,
		ServiceName: serviceName,
		HTTPMetrics: httpMetrics,
		Metrics:     promMetrics,
		Registry:    registry,
		Trips: handler.TripHandlerConfig{
			Builder:        builder,
			Planner:        plannerClient,
			Normalizer:     normalizer,
			Metrics:        promMetrics,
			Logger:         log.With().Str("component", "trips").Logger(),
			MaxResultBytes: cfg.Planner.MaxBodyBytes,
		},
		Sessions:   store,
		RequireTLS: cfg.Server.RequireTLS,
		PlanRateLimit: middleware.RateLimitConfig{
			RequestLimit: cfg.RateLimit.PlanPerMinute,
			WindowLength: time.Minute,
		},
		StandardRateLimit: middleware.RateLimitConfig{
			RequestLimit: cfg.RateLimit.StandardPerMinute,
			WindowLength: time.Minute,
		},
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}
