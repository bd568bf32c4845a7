package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	_ "github.com/ghuser/ordermgmt/docs/swagger"
	"github.com/ghuser/ordermgmt/pkg/app"
	"github.com/ghuser/ordermgmt/pkg/auth"
	"github.com/ghuser/ordermgmt/pkg/cache"
	"github.com/ghuser/ordermgmt/pkg/config"
	"github.com/ghuser/ordermgmt/pkg/database"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/events"
	"github.com/ghuser/ordermgmt/pkg/httpx"
	"github.com/ghuser/ordermgmt/pkg/logger"
	"github.com/ghuser/ordermgmt/pkg/notify"
	"github.com/ghuser/ordermgmt/pkg/telemetry"
	"github.com/ghuser/ordermgmt/pkg/workflows"
	accountApi "github.com/ghuser/ordermgmt/services/account/application/api"
	catalogApi "github.com/ghuser/ordermgmt/services/catalog/application/api"
	orderApi "github.com/ghuser/ordermgmt/services/order/application/api"
)

// @title					Order Management API
// @version				1.0
// @description			Catalog, orders and buyer accounts with transactional stock reservation.
// @host					localhost:8080
// @BasePath				/
// @schemes				http https
// @securityDefinitions.apikey	SessionCookie
// @in							cookie
// @name						ordermgmt_session
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if err := config.ValidateForProduction(cfg); err != nil {
		slog.Error("production config validation failed", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg)

	// Telemetry: OTel tracing + metrics
	ctx := context.Background()
	otelShutdown, metricsHandler, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(ctx) //nolint:errcheck

	// Crash reporting: Sentry (optional, log and continue on failure)
	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log,
		database.WithMaxOpenConns(cfg.DBMaxOpenConns),
		database.WithLockTimeout(cfg.DBLockTimeout),
		database.WithRetryBackoff(cfg.DBTxRetryBackoff),
	)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBusWithForwarder(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	if err := eventBus.StartForwarder(ctx); err != nil {
		log.Error("failed to start event forwarder", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic // intentional: startup failure
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	var temporalClient *workflows.TemporalClient
	if cfg.TemporalEnabled {
		temporalClient, err = workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic // intentional: startup failure
		}
		defer temporalClient.Close()
	}

	sessionStore := auth.NewSessionStore(
		redisClient.Client(),
		[]byte(cfg.SessionAuthKey),
		[]byte(cfg.SessionEncryptionKey),
		cfg.Environment == config.EnvProduction,
		cfg.SessionMaxAge,
	)
	log.Info("session store initialized", "backend", "redis", "max_age", cfg.SessionMaxAge)

	notifyMetrics := notify.NewMetrics(otel.Meter(notify.MeterName))
	notifier, closeNotifier := newNotifier(cfg, eventBus, log, notifyMetrics)
	defer closeNotifier()

	appConfig := &app.Application{
		Config:         cfg,
		Db:             pool,
		Logger:         log,
		EventBus:       eventBus,
		Redis:          redisClient,
		TemporalClient: temporalClient,
		SessionStore:   sessionStore,
		Notifier:       notifier,
		NotifyMetrics:  notifyMetrics,
		Errors:         errhttp.New(log, cfg.Environment == config.EnvProduction),
	}

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	checks := httpx.HealthChecks{
		Database: pool,
		Redis:    redisClient,
		EventBus: eventBus,
	}
	if temporalClient != nil {
		checks.Temporal = temporalClient
	}
	r.Get("/health", httpx.HealthHandler(checks))
	r.Get("/metrics", metricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	registerRoutes(r, appConfig)

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// registerRoutes mounts all service routes. Each service owns its /api/... paths.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) {
	catalogApi.CatalogRoutes(r, a)
	orderApi.OrderRoutes(r, a)
	accountApi.AccountRoutes(r, a)
}

// newNotifier selects the notification transport. The returned func flushes
// and stops it on shutdown.
func newNotifier(cfg *config.Config, bus *events.EventBus, log logger.Logger, m *notify.Metrics) (notify.Dispatcher, func()) {
	if cfg.NotifyTransport == config.TransportKafka {
		d := notify.NewKafkaDispatcher(cfg.KafkaBrokerList(), 0, log, m)
		log.Info("notifications enabled", "transport", config.TransportKafka, "brokers", cfg.KafkaBrokerList())
		return notify.Safe(d, log, m), d.Close
	}
	log.Info("notifications enabled", "transport", config.TransportEventBus)
	return notify.Safe(notify.NewEventBusDispatcher(bus, log, m), log, m), func() {}
}
