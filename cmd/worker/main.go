package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/ghuser/crochestock/pkg/app"
	"github.com/ghuser/crochestock/pkg/cache"
	"github.com/ghuser/crochestock/pkg/config"
	"github.com/ghuser/crochestock/pkg/database"
	"github.com/ghuser/crochestock/pkg/events"
	"github.com/ghuser/crochestock/pkg/logger"
	"github.com/ghuser/crochestock/pkg/telemetry"
	itemEvents "github.com/ghuser/crochestock/services/item/domain/events"
)

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

	if cfg.StoreBackend != config.StorePostgres {
		log.Error("the worker consumes the postgres outbox; set STORE_BACKEND=postgres")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tel, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		log.Error("failed to setup otel", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer tel.Shutdown(context.Background()) //nolint:errcheck

	if err := telemetry.SetupSentry(cfg); err != nil {
		log.Warn("failed to setup sentry, continuing without crash reporting", "error", err)
	}
	defer telemetry.SentryFlush()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer pool.Close()
	log.Info("database pool connected")

	eventBus, err := events.NewEventBus(pool, cfg, log)
	if err != nil {
		log.Error("failed to setup event bus", "error", err)
		os.Exit(1) //nolint:gocritic
	}
	defer eventBus.Close() //nolint:errcheck

	a := &app.Application{
		Config:   cfg,
		Db:       pool,
		Logger:   log,
		EventBus: eventBus,
	}

	if cfg.RedisEnabled {
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1) //nolint:gocritic
		}
		defer redisClient.Close() //nolint:errcheck
		redisClient.LogSlowCommands(log, 50*time.Millisecond)
		a.Redis = redisClient
		log.Info("redis connected")
	} else {
		log.Warn("redis disabled; item events are consumed but no cache is maintained")
	}

	if err := registerSubscribers(ctx, a); err != nil {
		log.Error("failed to register subscribers", "error", err)
		os.Exit(1) //nolint:gocritic
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	// EventBus.Close() (via defer) waits up to 30s for in-flight handlers.
	log.Info("worker stopped")
}

// registerSubscribers wires all domain event handlers.
// Add new topics here as more services publish events.
func registerSubscribers(ctx context.Context, a *app.Application) error {
	itemCache := cache.NewItemCache(a.Redis)
	handlers := map[string]func(context.Context, *message.Message) error{
		itemEvents.TopicItemCreated: handleItemCreated(a.Logger),
		itemEvents.TopicItemDeleted: handleItemDeleted(a.Logger, itemCache),
	}

	topics := make([]string, 0, len(handlers))
	for topic, handler := range handlers {
		errCh, err := a.EventBus.Subscribe(ctx, topic, handler)
		if err != nil {
			return err
		}
		go drain(ctx, a.Logger, topic, errCh)
		topics = append(topics, topic)
	}

	a.Logger.Info("event subscribers registered", "topics", topics)
	return nil
}

// drain logs subscriber errors so the channel never blocks.
func drain(ctx context.Context, log logger.Logger, topic string, errCh <-chan error) {
	for err := range errCh {
		if errors.Is(err, context.Canceled) {
			continue
		}
		log.ErrorContext(ctx, "subscriber error", "topic", topic, "error", err)
	}
}

// handleItemCreated only records the creation. The cache is filled by the
// api's read-through on first Get; writing the event payload here could
// overwrite the eviction of a later update.
func handleItemCreated(log logger.Logger) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.DecodeJSON[itemEvents.ItemCreatedEvent](msg)
		if err != nil {
			return err
		}
		log.InfoContext(ctx, "item created", "item_id", evt.ItemID, "owner_id", evt.OwnerID)
		return nil
	}
}

// handleItemDeleted evicts the item. A failed eviction is returned so the
// bus retries it; a stale entry would otherwise outlive the record.
func handleItemDeleted(log logger.Logger, itemCache *cache.ItemCache) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		evt, err := events.DecodeJSON[itemEvents.ItemDeletedEvent](msg)
		if err != nil {
			return err
		}
		if err := itemCache.Delete(ctx, evt.OwnerID, evt.ItemID); err != nil {
			return err
		}
		log.InfoContext(ctx, "item deleted", "item_id", evt.ItemID, "owner_id", evt.OwnerID)
		return nil
	}
}
