package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prism-brain/prism/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr     string
	jwksURL  string
	issuer   string
	audience string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithJWKS enables JWT authentication on the API routes using the given
// JWKS endpoint
func WithJWKS(jwksURL, issuer, audience string) Option {
	return func(c *config) {
		c.jwksURL = jwksURL
		c.issuer = issuer
		c.audience = audience
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	repo interfaces.Repository,
	engine interfaces.ProbabilityEngine,
	calculator interfaces.ExposureCalculator,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr: "localhost:8080",
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	h := &handler{
		repo:       repo,
		engine:     engine,
		calculator: calculator,
	}

	var authMW func(http.Handler) http.Handler
	if cfg.jwksURL != "" {
		mw, err := NewAuthMiddleware(ctx, cfg.jwksURL, cfg.issuer, cfg.audience)
		if err != nil {
			return nil, err
		}
		authMW = mw
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(Recoverer)

	router.Get("/", h.handleRoot)
	router.Get("/metrics", promhttp.Handler().ServeHTTP)
	router.Get("/openapi.json", h.handleOpenAPISpec)
	router.Get("/docs", h.handleDocs)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)
		r.Get("/risks", h.handleLiveRisks)
		r.Get("/risks/live", h.handleLiveRisks)
		r.Get("/risks/{riskID}", h.handleRisk)
		r.Get("/risks/{riskID}/history", h.handleRiskHistory)
		r.Get("/signals/recent", h.handleRecentSignals)
		r.Get("/audit/{updateID}", h.handleAuditRecord)
		r.Get("/domains", h.handleDomains)

		// Mutating endpoints require a token when auth is configured
		r.Group(func(pr chi.Router) {
			if authMW != nil {
				pr.Use(authMW)
			}
			pr.Post("/probabilities/update", h.handleProbabilityUpdate)
			pr.Post("/calculate", h.handleCalculate)
			pr.Post("/upload", h.handleUpload)
		})
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}

// handler carries the dependencies shared by all API handlers
type handler struct {
	repo       interfaces.Repository
	engine     interfaces.ProbabilityEngine
	calculator interfaces.ExposureCalculator
}
