package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"github.com/phetchalermchai/it-inventory/internal/config"
	apierrors "github.com/phetchalermchai/it-inventory/internal/errors"
	"github.com/phetchalermchai/it-inventory/internal/infrastructure"
	"github.com/phetchalermchai/it-inventory/internal/inventory"
	customMiddleware "github.com/phetchalermchai/it-inventory/internal/middleware"
	"github.com/phetchalermchai/it-inventory/internal/services"
	handlers "github.com/phetchalermchai/it-inventory/internal/transport/http"
	"github.com/phetchalermchai/it-inventory/internal/validation"
	ws "github.com/phetchalermchai/it-inventory/internal/websocket"
)

var (
	// Version is set at build time with -ldflags
	Version = config.AppVersion
	// BuildTime is set at build time with -ldflags
	BuildTime = "unknown"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	WebSocketHub  *ws.Hub
	Inventory     *services.InventoryService
	HealthService *services.HealthService
	ErrorHandler  *apierrors.ErrorHandler
	Validator     *customMiddleware.Validator
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Logger        *slog.Logger
}

// NewApplication loads configuration, initializes the global logger and
// builds the application.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds an application from an explicit configuration and logger
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", Version),
		slog.String("addr", cfg.Server.Addr()))

	otelProviders, err := infrastructure.InitializeOTel(
		infrastructure.OTelConfigFrom(cfg.Telemetry, Version), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Logger:        logger,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
		Validator:     customMiddleware.NewValidator(logger),
	}

	app.initializeServices()
	app.setupRouter()
	app.createServer()

	return app, nil
}

// ParserConfig maps the dataset section of the configuration
func ParserConfig(cfg config.DatasetConfig) inventory.ParserConfig {
	pc := inventory.DefaultParserConfig()
	pc.HeaderRows = cfg.HeaderRows
	pc.Delimiter = cfg.DelimiterRune()
	pc.MaxBytes = cfg.MaxUploadBytes
	pc.LegacyEncoding = cfg.LegacyEncoding
	return pc
}

// initializeServices wires the hub, the inventory service and health checks
func (a *Application) initializeServices() {
	hub := ws.NewHub(a.Logger, ws.OptionsFrom(a.Config.WebSocket)).WithMetrics(a.Metrics)
	hub.Start()
	a.WebSocketHub = hub

	parser := inventory.NewParser(a.Logger, ParserConfig(a.Config.Dataset))
	a.Inventory = services.NewInventoryService(parser, a.Logger).
		WithTelemetry(a.OTelProviders.Tracer, a.Metrics)
	a.Inventory.Subscribe(services.NewWebSocketDatasetListener(hub))

	a.HealthService = services.NewHealthService(Version, BuildTime, a.Inventory, hub, a.Logger)
}

// Preload loads the configured startup dataset. A failing preload file
// falls back to the sample when the sample is enabled.
func (a *Application) Preload(ctx context.Context) error {
	cfg := a.Config.Dataset

	if cfg.PreloadFile != "" {
		err := validation.NewFileValidator(a.Logger, cfg.MaxUploadBytes).ValidateInventoryFile(cfg.PreloadFile)
		if err == nil {
			_, err = a.Inventory.LoadFile(ctx, cfg.PreloadFile)
		}
		if err == nil {
			return nil
		}
		if !cfg.LoadSample {
			return fmt.Errorf("failed to preload %s: %w", cfg.PreloadFile, err)
		}
		a.Logger.WarnContext(ctx, "Preload failed, serving sample dataset",
			slog.String("file", cfg.PreloadFile),
			slog.String("error", err.Error()))
	}

	if cfg.LoadSample {
		if _, err := a.Inventory.LoadSample(ctx); err != nil {
			return fmt.Errorf("failed to load sample dataset: %w", err)
		}
		return nil
	}

	a.Logger.InfoContext(ctx, "No startup dataset configured, waiting for upload")
	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Minimal middleware that leaves the ResponseWriter hijackable
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	wsHandler := handlers.NewWebSocketHandler(a.WebSocketHub, a.Config.WebSocket,
		a.Config.Security.AllowedOrigins, a.Logger)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", wsHandler)

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → headers
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(a.ErrorHandler.Middleware)
		r.Use(customMiddleware.DefaultSecureHeaders(a.Config.Logging.Development).Handler)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfigFrom(a.Config.Security, a.Logger)))
		}

		a.setupAPIRoutes(r)

		metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub)
		r.Get("/metrics", metricsHandler.GetMetrics)
	})

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(middleware.Timeout(a.Config.Server.WriteTimeout))
		r.Use(customMiddleware.Compress(5, "application/json", "text/csv"))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		metricsHandler := handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.WebSocketHub)
		r.Mount("/metrics", metricsHandler.Routes())

		inventoryHandler := handlers.NewInventoryHandler(a.Inventory, a.Validator,
			a.ErrorHandler, a.Logger, a.Config.Dataset.MaxUploadBytes).
			WithUploadMiddleware(a.uploadMiddleware())
		r.Mount("/inventory", inventoryHandler.Routes())

		r.With(customMiddleware.ContentTypeValidator(a.ErrorHandler, "application/json")).
			Post("/logs", handlers.NewClientLogHandler(a.Validator, a.ErrorHandler, a.Logger).Handle)
	})
}

// uploadMiddleware applies the configured rate limit to dataset replacement
func (a *Application) uploadMiddleware() func(http.Handler) http.Handler {
	if !a.Config.Security.RateLimit.Enabled {
		return nil
	}
	return customMiddleware.NewRateLimiter(
		a.Config.Security.RateLimit.RPS,
		a.Config.Security.RateLimit.Burst,
		a.Logger,
	).Handler
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
		ErrorLog:       slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Serve preloads the startup dataset and serves on ln until ctx is done,
// then shuts down gracefully.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if err := a.Preload(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "Application started successfully",
			slog.String("address", ln.Addr().String()))
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Start listens on the configured address and serves until ctx is done
func (a *Application) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.Start(ctx)
}
