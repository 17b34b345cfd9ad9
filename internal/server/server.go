package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/information-sharing-networks/license-server/internal/api"
	licensehandlers "github.com/information-sharing-networks/license-server/internal/api/handlers"
	"github.com/information-sharing-networks/license-server/internal/config"
	"github.com/information-sharing-networks/license-server/internal/crypto"
	"github.com/information-sharing-networks/license-server/internal/logger"
	"github.com/information-sharing-networks/license-server/internal/server/handlers"
	servermiddleware "github.com/information-sharing-networks/license-server/internal/server/middleware"
	"github.com/information-sharing-networks/license-server/internal/services"
	"github.com/information-sharing-networks/license-server/internal/version"
)

const (
	// LegacyPrefix is the path prefix used by clients of the serverless deployment
	LegacyPrefix = "/.netlify/functions"

	defaultRequestTimeout = 60 * time.Second
)

type Server struct {
	config   *config.ServerEnvironment
	logger   *slog.Logger
	router   *chi.Mux
	services *services.Services
	jwkSet   jwk.Set
}

// NewServer loads the signing key and marketplace client and registers the routes.
func NewServer(cfg *config.ServerEnvironment, logger *slog.Logger) (*Server, error) {
	svc, err := services.NewServices(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	jwkSet, err := crypto.PublicJWKSet(svc.Signer.PublicKey(), svc.Signer.KeyID())
	if err != nil {
		return nil, fmt.Errorf("failed to create JWK set: %w", err)
	}

	server := &Server{
		config:   cfg,
		logger:   logger,
		router:   chi.NewRouter(),
		services: svc,
		jwkSet:   jwkSet,
	}

	server.setupMiddleware()
	server.registerRoutes()

	return server, nil
}

// Router returns the HTTP handler (used by tests)
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.requestTimeout()))
	s.router.Use(servermiddleware.SecurityHeaders(s.config.Environment))
	s.router.Use(servermiddleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
}

// requestTimeout bounds handler execution (including marketplace calls) to the write timeout
func (s *Server) requestTimeout() time.Duration {
	if s.config.WriteTimeout <= 0 {
		return defaultRequestTimeout
	}
	return s.config.WriteTimeout
}

func (s *Server) registerRoutes() {
	// must be set before the subrouters are mounted so they inherit it
	s.router.MethodNotAllowed(api.HandleMethodNotAllowed)

	s.router.Get("/health/live", handlers.HandleHealth)
	s.router.Get("/health/ready", handlers.HandleReadiness(s.services.Signer))
	s.router.Get("/version", handlers.HandleVersion(version.Get()))
	s.router.Get("/.well-known/jwks.json", handlers.HandleJWKS(s.jwkSet))
	s.router.Get("/docs/openapi.json", handlers.HandleOpenAPI)

	licenseHandler := licensehandlers.NewLicenseHandler(s.services.License)
	licenseRoutes := func(r chi.Router) {
		r.Use(servermiddleware.RequestSizeLimit(s.config.MaxRequestSize))

		r.Post("/activate-license", licenseHandler.HandleActivateLicense)
		r.Post("/verify-license", licenseHandler.HandleActivateLicense)
		r.Post("/activate-trial", licenseHandler.HandleActivateTrial)
	}

	s.router.Group(licenseRoutes)
	s.router.Route(LegacyPrefix, licenseRoutes)
}

func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.config.Environment),
			slog.String("address", serverAddr),
			slog.String("scheme", s.services.License.Scheme().String()),
		)

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}
