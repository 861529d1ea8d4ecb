// Package api provides the HTTP API for the roadtrip overlay service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/breatheroute/roadtrip/internal/api/handler"
	"github.com/breatheroute/roadtrip/internal/api/middleware"
	"github.com/breatheroute/roadtrip/internal/metrics"
	"github.com/breatheroute/roadtrip/internal/overlay"
	"github.com/breatheroute/roadtrip/internal/provider/resilience"
	"github.com/breatheroute/roadtrip/internal/session"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string

	// HTTPMetrics records OpenTelemetry request metrics (optional).
	HTTPMetrics *middleware.Metrics

	// Metrics exposes the Prometheus registry on /metrics (optional).
	Metrics *metrics.Metrics

	// Registry reports provider circuit state on the readiness check (optional).
	Registry *resilience.Registry

	// Trips is the pipeline behind the stateless endpoints.
	Trips handler.TripHandlerConfig

	// Sessions holds display sessions. Nil creates a store over Trips.
	Sessions *session.Store

	RequireTLS        bool
	PlanRateLimit     middleware.RateLimitConfig
	StandardRateLimit middleware.RateLimitConfig
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "roadtrip-api"
	}
	if cfg.PlanRateLimit.RequestLimit == 0 {
		cfg.PlanRateLimit = middleware.ExpensiveRateLimit
	}
	if cfg.StandardRateLimit.RequestLimit == 0 {
		cfg.StandardRateLimit = middleware.StandardRateLimit
	}
	if cfg.Trips.Metrics == nil {
		cfg.Trips.Metrics = cfg.Metrics
	}

	sessions := cfg.Sessions
	if sessions == nil {
		sessions = session.NewStore(session.StoreConfig{
			Session: session.Config{
				Builder:    cfg.Trips.Builder,
				Planner:    cfg.Trips.Planner,
				Normalizer: cfg.Trips.Normalizer,
				Metrics:    cfg.Metrics,
				Logger:     cfg.Logger,
			},
			Metrics: cfg.Metrics,
			Logger:  cfg.Logger,
		})
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(middleware.Recovery(cfg.Logger, cfg.Metrics))
	} else {
		r.Use(middleware.Recovery(cfg.Logger, nil))
	}
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	var classifier *overlay.Classifier
	if cfg.Trips.Normalizer != nil {
		classifier = cfg.Trips.Normalizer.Classifier()
	}

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, sessions)
	metadataHandler := handler.NewMetadataHandler(classifier)
	tripHandler := handler.NewTripHandler(cfg.Trips)
	sessionHandler := handler.NewSessionHandler(sessions, cfg.Logger)

	planRateLimit := middleware.RateLimitByIP(cfg.PlanRateLimit)
	standardRateLimit := middleware.RateLimitByIP(cfg.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.Route("/metadata", func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/attraction-types", metadataHandler.ListAttractionTypes)
			r.Get("/marker-styles", metadataHandler.GetMarkerStyles)
		})

		// Calls the planning service: strict rate limiting
		r.With(planRateLimit, middleware.RequireJSON).Post("/trips:plan", tripHandler.PlanTrip)

		r.With(standardRateLimit, middleware.RequireJSON).Post("/overlays:normalize", tripHandler.NormalizeOverlay)

		r.Route("/sessions", func(r chi.Router) {
			r.With(standardRateLimit).Post("/", sessionHandler.CreateSession)
			r.Route("/{sessionId}", func(r chi.Router) {
				r.With(standardRateLimit).Get("/", sessionHandler.GetSession)
				r.With(standardRateLimit).Delete("/", sessionHandler.DeleteSession)
				r.With(planRateLimit, middleware.RequireJSON).Post("/submissions", sessionHandler.Submit)
				r.With(standardRateLimit).Get("/overlay", sessionHandler.GetOverlay)
			})
		})
	})

	return r
}
