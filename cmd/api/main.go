package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"

	_ "github.com/ghuser/crochestock/docs/swagger"
	accountmigrations "github.com/ghuser/crochestock/migrations/account"
	itemmigrations "github.com/ghuser/crochestock/migrations/item"
	"github.com/ghuser/crochestock/pkg/app"
	"github.com/ghuser/crochestock/pkg/auth"
	"github.com/ghuser/crochestock/pkg/cache"
	"github.com/ghuser/crochestock/pkg/config"
	"github.com/ghuser/crochestock/pkg/database"
	"github.com/ghuser/crochestock/pkg/errhttp"
	"github.com/ghuser/crochestock/pkg/events"
	"github.com/ghuser/crochestock/pkg/httpx"
	"github.com/ghuser/crochestock/pkg/jsonfile"
	"github.com/ghuser/crochestock/pkg/logger"
	"github.com/ghuser/crochestock/pkg/migrator"
	"github.com/ghuser/crochestock/pkg/rpc"
	"github.com/ghuser/crochestock/pkg/telemetry"
	accountApi "github.com/ghuser/crochestock/services/account/application/api"
	itemApi "github.com/ghuser/crochestock/services/item/application/api"
	itemEvents "github.com/ghuser/crochestock/services/item/domain/events"
)

// @title					Crochestock API
// @version				1.0
// @description			Crochet supply inventory: item CRUD, account sessions and an RPC batch endpoint.
// @license.name			MIT
// @license.url			https://opensource.org/licenses/MIT
// @host					localhost:8080
// @BasePath				/api
// @schemes				http https
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

	ctx := context.Background()
	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1)
	}
	defer tel.Shutdown(ctx) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	production := cfg.Environment == config.EnvProduction
	a := &app.Application{Config: cfg, Logger: log}
	var checks []httpx.Check

	if cfg.StoreBackend == config.StorePostgres {
		if cfg.AutoMigrate {
			if err := migrator.RunAll(cfg.DatabaseURL,
				migrator.Set{Name: "item", FS: itemmigrations.FS, VersionTable: itemmigrations.VersionTable},
				migrator.Set{Name: "account", FS: accountmigrations.FS, VersionTable: accountmigrations.VersionTable},
			); err != nil {
				log.Error("failed to run migrations", "error", err)
				os.Exit(1) //nolint:gocritic // intentional: startup failure, deferred flushes are best-effort
			}
			log.Info("migrations applied")
		}

		pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Error("failed to connect to database", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer pool.Close()
		log.Info("database pool connected")

		eventBus, err := events.NewEventBusWithForwarder(pool, cfg, log)
		if err != nil {
			log.Error("failed to setup event bus", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer eventBus.Close() //nolint:errcheck

		if err := eventBus.InitializeTopics(itemEvents.TopicItemCreated, itemEvents.TopicItemDeleted); err != nil {
			log.Error("failed to initialize event topics", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		if err := eventBus.StartForwarder(ctx); err != nil {
			log.Error("failed to start event forwarder", "error", err)
			os.Exit(1) //nolint:gocritic
		}

		a.Db, a.EventBus = pool, eventBus
		checks = append(checks,
			httpx.Check{Name: "database", Checker: pool},
			httpx.Check{Name: "event_bus", Checker: eventBus},
		)
	} else {
		log.Info("using file store", "dir", cfg.DataDir)
		checks = append(checks, httpx.Check{Name: "store", Checker: jsonfile.Dir(cfg.DataDir)})
	}

	var sessionStore sessions.Store
	if cfg.RedisEnabled {
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer redisClient.Close() //nolint:errcheck
		redisClient.LogSlowCommands(log, 50*time.Millisecond)
		log.Info("redis connected")

		sessionStore = auth.NewSessionStore(
			redisClient.Client(),
			[]byte(cfg.SessionAuthKey),
			[]byte(cfg.SessionEncryptionKey),
			production,
		)
		a.Redis = redisClient
		checks = append(checks, httpx.Check{Name: "redis", Checker: redisClient})
		log.Info("session store initialized", "backend", "redis")
	} else {
		sessionStore = auth.NewCookieStore([]byte(cfg.SessionAuthKey), []byte(cfg.SessionEncryptionKey), production)
		log.Info("session store initialized", "backend", "cookie")
	}
	a.SessionStore = sessionStore

	metrics, err := telemetry.NewInventoryMetrics(otel.Meter(cfg.ServiceName))
	if err != nil {
		log.Error("failed to register inventory metrics", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	a.Metrics = metrics

	a.RPC = rpc.NewRouter(log, rpc.Options{
		StatusFor:    errhttp.StatusFor,
		Production:   production,
		SuperJSON:    cfg.RPCSuperJSON,
		CaptureError: telemetry.CaptureError,
	})

	r := httpx.NewRouter(
		httpx.ServerConfig{
			ServiceName:        cfg.ServiceName,
			IsDevelopment:      cfg.Environment == config.EnvDevelopment,
			CORSAllowedOrigins: cfg.CORSAllowedOrigins,
			RequestsPerMinute:  cfg.RateLimitPerMinute,
			UnlimitedPaths:     []string{"/health", "/metrics"},
			DocsPrefix:         "/swagger/",
		},
		logger.Middleware(log),
		logger.Recovery(log),
		telemetry.SentryMiddleware(),
		otelhttp.NewMiddleware(cfg.ServiceName),
	)

	r.Get("/health", httpx.HealthHandler(checks...))
	r.Get("/metrics", tel.MetricsHandler.ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var routeErr error
	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Authenticate(sessionStore, cfg.AnonymousUserID(), log))
		routeErr = registerRoutes(r, a)
	})
	if routeErr != nil {
		log.Error("failed to register routes", "error", routeErr)
		os.Exit(1) //nolint:gocritic
	}

	srv := httpx.NewServer(cfg.HTTPAddr, r)

	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.Environment, "store", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// registerRoutes mounts all service routes under /api.
// Add each new service's route function here.
func registerRoutes(r chi.Router, a *app.Application) error {
	if err := itemApi.ItemRoutes(r, a); err != nil {
		return err
	}
	if err := accountApi.AccountRoutes(r, a); err != nil {
		return err
	}
	r.Handle("/trpc/{procedures}", a.RPC)
	return nil
}
