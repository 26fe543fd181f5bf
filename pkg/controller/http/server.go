package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
)

// config holds internal HTTP server configuration
type config struct {
	addr              string
	secrets           interfaces.SecretProvider
	readHeaderTimeout time.Duration
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithReadHeaderTimeout sets how long the server waits for request headers
func WithReadHeaderTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.readHeaderTimeout = d
		}
	}
}

// WithSecretProvider sets the source of the webhook secret
func WithSecretProvider(secrets interfaces.SecretProvider) Option {
	return func(c *config) {
		c.secrets = secrets
	}
}

// WithWebhookSecret sets a fixed webhook secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.secrets = staticSecret(secret)
	}
}

type staticSecret string

func (s staticSecret) WebhookSecret() string { return string(s) }

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	webhookUC interfaces.WebhookUseCase,
	coordinator interfaces.UpdateCoordinator,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr:              "localhost:8080",
		secrets:           staticSecret(""),
		readHeaderTimeout: 15 * time.Second,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(RecoverMiddleware)

	// Health check
	router.Get("/health", handleHealth(coordinator))

	// Webhook endpoint, other methods get 405 from the router
	webhookHandler := NewWebhookHandler(cfg.secrets, webhookUC)
	router.Post("/webhook", webhookHandler.Handle)
	router.Post("/hooks/github", webhookHandler.Handle)

	// Component API
	api := NewComponentHandler(coordinator)
	router.Route("/api/components", func(r chi.Router) {
		r.Get("/", api.List)
		r.Get("/{slug}/update", api.CheckUpdate)
		r.Get("/{slug}/details", api.Details)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: cfg.readHeaderTimeout,
		},
	}

	return server, nil
}
