package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"

	"github.com/ghuser/ordermgmt/pkg/app"
	"github.com/ghuser/ordermgmt/pkg/cache"
	"github.com/ghuser/ordermgmt/pkg/config"
	"github.com/ghuser/ordermgmt/pkg/database"
	"github.com/ghuser/ordermgmt/pkg/events"
	"github.com/ghuser/ordermgmt/pkg/logger"
	"github.com/ghuser/ordermgmt/pkg/notify"
	"github.com/ghuser/ordermgmt/pkg/telemetry"
	"github.com/ghuser/ordermgmt/pkg/workflows"
	accountsvcs "github.com/ghuser/ordermgmt/services/account/application/services"
	accountflows "github.com/ghuser/ordermgmt/services/account/application/workflows"
	catalogEvents "github.com/ghuser/ordermgmt/services/catalog/domain/events"
)

const emailConsumerGroup = "ordermgmt-mailer"

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelShutdown, _, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer otelShutdown(context.Background()) //nolint:errcheck

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
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	redisClient, err := cache.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer redisClient.Close() //nolint:errcheck
	log.Info("redis connected")

	notifyMetrics := notify.NewMetrics(otel.Meter(notify.MeterName))
	notifier, closeNotifier := newNotifier(cfg, eventBus, log, notifyMetrics)
	defer closeNotifier()

	appConfig := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
		Redis:    redisClient,
		Notifier:      notifier,
		NotifyMetrics: notifyMetrics,
	}

	if cfg.TemporalEnabled {
		temporalClient, err := workflows.NewTemporalClient(ctx, cfg.TemporalHostPort, cfg.TemporalNamespace, log)
		if err != nil {
			log.Error("failed to initialize temporal client", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer temporalClient.Close()
		appConfig.TemporalClient = temporalClient
	}

	if err := registerSubscribers(ctx, appConfig, newMailer(cfg, log)); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	stopSweep, err := startVerificationSweep(ctx, appConfig)
	if err != nil {
		log.Error("failed to start verification sweep", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer stopSweep()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires the worker's event routes. With the kafka
// transport email comes from a kafka consumer instead of the bus.
func registerSubscribers(ctx context.Context, a *app.Application, mailer notify.Mailer) error {
	routes := []events.Route{{
		Topic:   catalogEvents.TopicProductChanged,
		Handler: events.JSON(evictProduct(cache.NewProductCache(a.Redis), a.Logger)),
	}}

	if a.Config.NotifyTransport == config.TransportKafka {
		consumer := notify.NewKafkaConsumer(a.Config.KafkaBrokerList(), emailConsumerGroup, a.Logger, a.NotifyMetrics)
		go func() {
			if err := consumer.Run(ctx, mailer.Send); err != nil {
				a.Logger.ErrorContext(ctx, "kafka email consumer stopped", "error", err)
			}
		}()
		a.Logger.Info("kafka email consumer started", "group", emailConsumerGroup)
	} else {
		deliver := notify.Deliver(mailer)
		routes = append(routes, events.Route{
			Topic: notify.TopicEmail,
			Handler: func(ctx context.Context, msg *message.Message) error {
				return deliver(ctx, msg.Payload)
			},
		})
	}

	topics, err := events.SubscribeAll(ctx, a.EventBus, a.Logger, routes...)
	if err != nil {
		return err
	}
	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// evictProduct drops the cached product so the next read loads the new
// price, or a 404 once the product is deleted.
func evictProduct(c *cache.ProductCache, log logger.Logger) func(context.Context, catalogEvents.ProductChangedEvent) error {
	return func(ctx context.Context, evt catalogEvents.ProductChangedEvent) error {
		if err := c.Delete(ctx, evt.ProductID); err != nil {
			return err
		}
		log.InfoContext(ctx, "product cache evicted",
			"product_id", evt.ProductID, "price", evt.Price, "deleted", evt.Deleted)
		return nil
	}
}

// startVerificationSweep schedules the account verification sweep on Temporal
// when enabled, or runs it on a ticker in this process.
func startVerificationSweep(ctx context.Context, a *app.Application) (func(), error) {
	svc := accountsvcs.New(a).Account
	interval := a.Config.VerificationSweepInterval

	if a.TemporalClient == nil {
		go accountflows.RunSweepLoop(ctx, svc.Sweep, interval, a.Logger)
		a.Logger.Info("verification sweep running in process", "interval", interval)
		return func() {}, nil
	}

	w := a.TemporalClient.NewWorker(a.Config.TemporalTaskQueue)
	accountflows.RegisterWorker(w, svc)
	if err := w.Start(); err != nil {
		return nil, err
	}
	if err := accountflows.StartSweepSchedule(ctx, a.TemporalClient.Client, a.Config.TemporalTaskQueue, interval, a.Logger); err != nil {
		w.Stop()
		return nil, err
	}
	return w.Stop, nil
}

func newMailer(cfg *config.Config, log logger.Logger) notify.Mailer {
	if cfg.SMTPAddr == "" {
		log.Info("mail delivery disabled, logging messages instead")
		return notify.NewLogMailer(log)
	}
	log.Info("mail delivery via smtp", "addr", cfg.SMTPAddr)
	return notify.NewSMTPMailer(cfg.SMTPAddr, cfg.MailFrom, cfg.SMTPUser, cfg.SMTPPassword)
}

// newNotifier selects the notification transport for verification reminders.
func newNotifier(cfg *config.Config, bus *events.EventBus, log logger.Logger, m *notify.Metrics) (notify.Dispatcher, func()) {
	if cfg.NotifyTransport == config.TransportKafka {
		d := notify.NewKafkaDispatcher(cfg.KafkaBrokerList(), 0, log, m)
		return notify.Safe(d, log, m), d.Close
	}
	return notify.Safe(notify.NewEventBusDispatcher(bus, log, m), log, m), func() {}
}
