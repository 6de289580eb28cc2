package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/eyecrackcodes/agentsummary/internal/analytics"
	"github.com/eyecrackcodes/agentsummary/internal/config"
	"github.com/eyecrackcodes/agentsummary/internal/dataprocessing"
	apierrors "github.com/eyecrackcodes/agentsummary/internal/errors"
	"github.com/eyecrackcodes/agentsummary/internal/infrastructure"
	customMiddleware "github.com/eyecrackcodes/agentsummary/internal/middleware"
	"github.com/eyecrackcodes/agentsummary/internal/services"
	transport "github.com/eyecrackcodes/agentsummary/internal/transport/http"
	ws "github.com/eyecrackcodes/agentsummary/internal/websocket"
	"github.com/eyecrackcodes/agentsummary/pkg/contracts"
)

// Application holds the wired service graph
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders

	Hub      *ws.Hub
	Loader   *dataprocessing.Loader
	Analysis *services.AnalysisService
	Health   *services.HealthService

	Router chi.Router
	Server *http.Server

	errorHandler *apierrors.ErrorHandler
}

// NewApplication builds the application from the configuration at configPath.
// An empty path falls back to the default config file locations and the
// environment.
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := infrastructure.InitializeLogger(cfg.Logging)

	otelCfg := infrastructure.DefaultOTelConfig()
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("initialize observability: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
		errorHandler:  apierrors.NewErrorHandler(logger, false),
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	if err := app.setupRouter(); err != nil {
		return nil, err
	}
	app.createServer()

	return app, nil
}

func (a *Application) initializeServices() error {
	a.Hub = ws.NewHub(a.Logger)
	a.Loader = dataprocessing.NewLoader(a.Logger)

	analyzer, err := analytics.NewAnalyzer(a.Config.Analytics.Pipeline(), a.Logger)
	if err != nil {
		return fmt.Errorf("build analytics pipeline: %w", err)
	}

	analysis, err := services.NewAnalysisService(analyzer, a.Hub, a.Logger)
	if err != nil {
		return fmt.Errorf("build analysis service: %w", err)
	}
	a.Analysis = analysis

	a.Health = services.NewHealthService(contracts.Version, contracts.BuildTime, analysis, a.Hub, a.Logger)

	return nil
}

func (a *Application) setupRouter() error {
	r := chi.NewRouter()

	// Minimal middleware that never wraps the ResponseWriter, so the
	// WebSocket upgrade keeps working.
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// WebSocket route stays outside the full middleware group
	wsHandler := transport.NewWSHandler(a.Hub, a.Config.WebSocket, a.Config.Security.AllowedOrigins, a.Logger)
	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).Handle("/ws", wsHandler)

	otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("create otel middleware: %w", err)
	}

	// Wire the shared instruments into the hub and the analysis service
	metrics := otelMiddleware.Metrics()
	a.Hub.SetClientGauge(metrics.WSClientsConnected)
	a.Analysis.SetMetrics(metrics)

	validation := customMiddleware.NewValidationMiddleware(a.Logger, a.errorHandler)

	r.Group(func(r chi.Router) {
		r.Use(otelMiddleware.Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
		r.Use(customMiddleware.SecurityHeaders)
		r.Use(validation.ValidateRequest)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
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

		a.setupAPIRoutes(r)
	})

	// Prometheus exposition outside the middleware group
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
	return nil
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	analysisHandler := transport.NewAnalysisHandler(a.Analysis, a.Logger, a.errorHandler)
	datasetHandler := transport.NewDatasetHandler(a.Analysis, a.Loader, a.Config.Server.MaxUploadBytes, a.Logger, a.errorHandler)
	healthHandler := transport.NewHealthHandler(a.Health, a.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/dataset", datasetHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Mount("/", analysisHandler.Routes())
	})

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// LoadDatasetFile loads a production workbook from disk and installs it as
// the current dataset. Used at startup when a dataset path is configured.
func (a *Application) LoadDatasetFile(ctx context.Context, path string) error {
	table, err := a.Loader.LoadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", path, err)
	}
	info, err := a.Analysis.SetDataset(ctx, table)
	if err != nil {
		return fmt.Errorf("install dataset %s: %w", path, err)
	}
	a.Logger.InfoContext(ctx, "startup dataset installed",
		slog.String("path", path),
		slog.String("dataset_id", info.ID),
		slog.Int("agents", info.AgentCount))
	return nil
}

// Start launches the WebSocket hub and the HTTP server. Server errors cancel
// the supplied context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("version", contracts.Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	a.Hub.Start()

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

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Hub.Stop()

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.WarnContext(ctx, "Observability shutdown error", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application stopped")
	return nil
}

// Run starts the application and blocks until an interrupt
func (a *Application) Run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	<-ctx.Done()

	return a.Stop(context.Background())
}
