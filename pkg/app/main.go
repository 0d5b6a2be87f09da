package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/lendingdesk/pkg/cache"
	"github.com/ghuser/lendingdesk/pkg/config"
	"github.com/ghuser/lendingdesk/pkg/database"
	"github.com/ghuser/lendingdesk/pkg/events"
	"github.com/ghuser/lendingdesk/pkg/logger"
	"github.com/ghuser/lendingdesk/pkg/workflows"
)

// Application holds shared infrastructure dependencies for all services.
// Pass it to each bounded context's route and worker registration.
//
// Logging: app.Logger is backed by a trace-aware handler. Use slog's context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "borrow approved", "borrow_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient // nil unless SWEEP_SCHEDULER=temporal
	SessionStore   sessions.Store            // Redis-backed session store; nil in worker process
}
