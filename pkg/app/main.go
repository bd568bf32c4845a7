package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/ordermgmt/pkg/cache"
	"github.com/ghuser/ordermgmt/pkg/config"
	"github.com/ghuser/ordermgmt/pkg/database"
	"github.com/ghuser/ordermgmt/pkg/errhttp"
	"github.com/ghuser/ordermgmt/pkg/events"
	"github.com/ghuser/ordermgmt/pkg/logger"
	"github.com/ghuser/ordermgmt/pkg/notify"
	"github.com/ghuser/ordermgmt/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to all service Routes calls during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "order created", "order_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient      // nil when Redis is unavailable; caches and idempotency are skipped
	TemporalClient *workflows.TemporalClient // nil unless TEMPORAL_ENABLED
	SessionStore   sessions.Store            // Redis-backed session store; nil in worker process
	Notifier       notify.Dispatcher
	NotifyMetrics  *notify.Metrics // counts lost notifications; nil records nothing
	Errors         *errhttp.Writer
}
