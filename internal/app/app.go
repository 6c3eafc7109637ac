package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"chainpulse/internal/config"
	apierrors "chainpulse/internal/errors"
	"chainpulse/internal/infrastructure"
	custommw "chainpulse/internal/middleware"
	"chainpulse/internal/providers"
	"chainpulse/internal/services"
	handlers "chainpulse/internal/transport/http"
	ws "chainpulse/internal/websocket"
	"chainpulse/pkg/contracts"
)

const serviceName = "chainpulse"

// Application is the assembled server with all its dependencies.
type Application struct {
	Config       *config.Config
	Router       *chi.Mux
	Server       *http.Server
	Hub          *ws.Hub
	ChainService *services.ChainService
	Refresher    *services.Refresher
	Telemetry    *infrastructure.Telemetry
	Logger       *slog.Logger
}

// NewApplication loads configuration and wires every component together.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", serviceName),
		slog.String("version", contracts.Version),
		slog.String("provider", cfg.Provider.Name))

	telemetry, err := infrastructure.InitTelemetry(serviceName, contracts.Version, cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	app := &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: telemetry,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the provider, chain service, hub and refresher.
func (a *Application) initializeServices() error {
	provider, err := providers.New(a.Config.Provider, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize provider: %w", err)
	}

	chainService, err := services.NewChainService(provider, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize chain service: %w", err)
	}
	a.ChainService = chainService

	a.Hub = ws.NewHub(a.Logger)

	if a.Config.Refresh.Enabled {
		a.Refresher = services.NewRefresher(chainService, a.Hub, a.Config.Refresh, a.Logger)
	}

	return nil
}

// setupRouter configures the HTTP router with all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware first so the websocket upgrade is not wrapped by
	// anything that buffers the ResponseWriter.
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)

	r.HandleFunc("/ws", ws.Handler(a.Hub, a.Config.WebSocket, a.Logger))

	// Prometheus endpoint stays outside the API middleware group.
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(custommw.Tracing(serviceName))
		r.Use(custommw.StructuredLogger(a.Logger))
		r.Use(custommw.Recoverer(a.Logger))
		r.Use(custommw.SecurityHeaders)
		r.Use(custommw.Compress(5))

		if a.Config.Security.EnableCORS {
			r.Use(custommw.CORS(custommw.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodOptions},
				AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
				MaxAge:         300,
			}))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(custommw.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures API endpoints.
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger)
	chainHandler := handlers.NewChainHandler(a.ChainService, a.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(a.ChainService.Provider(), a.Hub, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/version", healthHandler.Version)
		r.Mount("/chain", chainHandler.Routes())
	})
}

// createServer creates the HTTP server.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start launches the hub, the refresher and the HTTP listener.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Hub.Start()

	if a.Refresher != nil {
		if err := a.Refresher.Start(); err != nil {
			return fmt.Errorf("failed to start refresher: %w", err)
		}
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.Refresher != nil {
		a.Refresher.Stop(shutdownCtx)
	}
	a.Hub.Stop()

	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down telemetry", slog.String("error", err.Error()))
		}
	}

	infrastructure.CloseLogger()

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
