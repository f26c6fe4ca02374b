package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/crochestock/pkg/cache"
	"github.com/ghuser/crochestock/pkg/config"
	"github.com/ghuser/crochestock/pkg/database"
	"github.com/ghuser/crochestock/pkg/events"
	"github.com/ghuser/crochestock/pkg/logger"
	"github.com/ghuser/crochestock/pkg/rpc"
	"github.com/ghuser/crochestock/pkg/telemetry"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to every bounded context's Routes call during server initialization.
//
// Db and EventBus are nil when the file store backend is selected; Redis is
// nil when it is disabled. Services must check before use.
//
// Logging: app.Logger is backed by a trace-aware handler; use slog's context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "item created", "item_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
type Application struct {
	Config       *config.Config
	Db           *database.Database
	Logger       logger.Logger
	EventBus     *events.EventBus
	Redis        *cache.RedisClient
	SessionStore sessions.Store // nil in the worker process
	RPC          *rpc.Router
	Metrics      *telemetry.InventoryMetrics
}

// IsProduction reports whether client-facing errors must hide internals.
func (a *Application) IsProduction() bool {
	return a.Config != nil && a.Config.Environment == config.EnvProduction
}
