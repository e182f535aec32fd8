package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"keksindex/internal/config"
	"keksindex/internal/dataprocessing"
	apierrors "keksindex/internal/errors"
	"keksindex/internal/infrastructure"
	customMiddleware "keksindex/internal/middleware"
	"keksindex/internal/recipes"
	"keksindex/internal/services"
	handlers "keksindex/internal/transport/http"
	ws "keksindex/internal/websocket"
	"keksindex/pkg/contracts"
)

// AppName is logged at startup.
const AppName = "Keksindex - Preisindex für Plätzchenrezepte"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Catalog       *recipes.Catalog
	Loader        *dataprocessing.Loader
	WebSocketHub  *ws.Hub // nil when websocket is disabled
	ErrorHandler  *apierrors.ErrorHandler
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Dashboard *services.DashboardService
	Store     *services.StoreService
	Export    *services.ExportService
	Chart     *services.ChartService
	Health    *services.HealthService
}

// NewApplication loads the configuration and logger, then builds the application.
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

// New wires every component for cfg without starting anything.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.GetVersionInfo().String()),
		slog.String("source", cfg.Data.SourcePath))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  handlers.NewErrorHandler(logger, cfg.Logging.Level == "debug"),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	catalog, err := a.loadCatalog()
	if err != nil {
		return err
	}
	a.Catalog = catalog

	source, err := a.newSource()
	if err != nil {
		return err
	}
	a.Loader = dataprocessing.NewLoader(source,
		dataprocessing.DiagnosticsSinkFunc(a.Metrics.RecordStoreBuild), a.Logger)

	var broadcaster services.Broadcaster
	var clients services.ClientCounter
	if a.Config.WebSocket.Enabled {
		a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics)
		broadcaster = a.WebSocketHub
		clients = a.WebSocketHub
	}

	dashboard := services.NewDashboardService(catalog, a.Loader, a.Metrics, a.Logger)
	store := services.NewStoreService(a.Loader, broadcaster, source.Name(), a.Logger)
	if a.WebSocketHub != nil {
		a.WebSocketHub.SetStatusFunc(store.Status)
	}

	a.Services = &ServiceContainer{
		Dashboard: dashboard,
		Store:     store,
		Export:    services.NewExportService(dashboard, a.Metrics, a.Logger),
		Chart:     services.NewChartService(dashboard, a.Metrics, a.Logger),
		Health:    services.NewHealthService(contracts.Version, a.Loader, clients, a.Logger),
	}

	a.Logger.Info("Services initialized",
		slog.Int("recipes", catalog.Len()),
		slog.String("source", source.Name()),
		slog.Bool("websocket", a.WebSocketHub != nil))
	return nil
}

func (a *Application) loadCatalog() (*recipes.Catalog, error) {
	if a.Config.Data.RecipesFile == "" {
		return recipes.Default(), nil
	}
	catalog, err := recipes.LoadFile(a.Config.Data.RecipesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	return catalog, nil
}

func (a *Application) newSource() (dataprocessing.Source, error) {
	format, err := a.Config.Data.Format()
	if err != nil {
		return nil, err
	}
	comma, err := a.Config.Data.Comma()
	if err != nil {
		return nil, err
	}
	return dataprocessing.NewSource(a.Config.Data.SourcePath, format, a.Config.Data.Sheet, comma)
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Safe for websocket upgrades: these do not wrap the ResponseWriter
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StripSlashes)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	if a.WebSocketHub != nil {
		r.Handle("/ws", ws.NewHandler(a.WebSocketHub, ws.HandlerConfig{
			ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
			WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
			AllowedOrigins:  a.Config.Security.AllowedOrigins,
			Timing: ws.Timing{
				PingPeriod: a.Config.WebSocket.PingPeriod,
				PongWait:   a.Config.WebSocket.PongWait,
			},
		}, a.Logger))
	}

	// Scrapes stay out of the request metrics and rate limit
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	r.Group(func(r chi.Router) {
		// RequestID → RealIP → OTel → Logger → Recoverer → Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
				Logger:         a.Logger,
			}))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

// setupAPIRoutes configures the /api/v1 endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	validator := customMiddleware.NewRequestValidator(a.Logger)

	r.Route("/api/"+contracts.APIVersion, func(r chi.Router) {
		r.Mount("/recipes", handlers.NewRecipeHandler(a.Services.Dashboard, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/export", handlers.NewExportHandler(a.Services.Export, validator, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/charts", handlers.NewChartHandler(a.Services.Chart, validator, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/store", handlers.NewStoreHandler(a.Services.Store, a.Logger, a.ErrorHandler).Routes())
		r.Mount("/", handlers.NewIndexHandler(a.Services.Dashboard, validator, a.Logger, a.ErrorHandler).Routes())
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the hub, preloads the store if configured and begins serving.
// A failed preload is logged and leaves the service not ready; the next request retries.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("address", a.Server.Addr),
		slog.String("level", a.Config.Logging.Level))

	if a.WebSocketHub != nil {
		a.WebSocketHub.Start()
	}

	if a.Config.Data.Preload {
		if err := a.Services.Store.Preload(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Series store preload failed",
				slog.String("source", a.Loader.Source().Name()),
				slog.String("error", err.Error()))
		}
	}

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://%s", a.Server.Addr)))
	return nil
}

// Stop gracefully stops the server and background services
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.WebSocketHub != nil {
		a.WebSocketHub.Stop()
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}
	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped unexpectedly")
	}

	return a.Stop(context.Background())
}
