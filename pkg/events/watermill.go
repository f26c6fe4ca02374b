// Package events provides a PostgreSQL-backed pub/sub EventBus built on Watermill.
//
// Messages are load-balanced across every instance sharing a consumer group,
// so each event is handled once. Handlers must be idempotent: a failing
// handler is retried with exponential backoff, and a message that still fails
// is moved to "<topic>.poison" and acknowledged so it cannot block the topic.
//
// Trace context is injected into message metadata on publish and restored on
// subscribe.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/crochestock/pkg/config"
	"github.com/ghuser/crochestock/pkg/database"
	"github.com/ghuser/crochestock/pkg/logger"
)

const (
	shutdownTimeout = 30 * time.Second
	forwarderTopic  = "_forwarder_queue" // internal outbox topic for the Forwarder daemon

	// PoisonSuffix is appended to a topic to name where undeliverable messages go.
	PoisonSuffix = ".poison"

	metadataPoisonReason = "poison_reason"
	metadataPoisonTopic  = "poison_topic"
)

// RetryPolicy controls how often a failing handler is retried per message.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// DefaultRetryPolicy tries a handler 3 times, waiting 1 s then 2 s.
var DefaultRetryPolicy = RetryPolicy{Attempts: 3, BaseDelay: time.Second}

// EventBus publishes and consumes events stored in PostgreSQL through
// Watermill's SQL transport (FOR UPDATE SKIP LOCKED delivery).
type EventBus struct {
	publisher  message.Publisher // forwarder-decorated in forwarder mode
	direct     message.Publisher // always the plain SQL publisher
	subscriber message.Subscriber
	fwd        *forwarder.Forwarder
	db         *sql.DB
	log        logger.Logger
	wlog       watermill.LoggerAdapter
	retry      RetryPolicy
	wg         sync.WaitGroup

	useForwarder bool
}

// NewEventBus builds a bus on the shared pool. The pool stays owned by the
// caller; Close does not close it.
func NewEventBus(pool *database.Database, cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(pool.DB(), cfg, log, false)
}

// NewEventBusWithForwarder is NewEventBus for publishers whose events must
// survive until a relay picks them up: every publish lands in a durable
// forwarder queue, and the daemon started by StartForwarder moves it to its
// target topic. The API uses it so a committed item write always yields its event.
func NewEventBusWithForwarder(pool *database.Database, cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(pool.DB(), cfg, log, true)
}

func newEventBus(db *sql.DB, cfg *config.Config, log logger.Logger, useForwarder bool) (*EventBus, error) {
	wlog := &slogAdapter{log: log}

	pub, err := watermillsql.NewPublisher(db, publisherConfig(true), wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}

	sub, err := watermillsql.NewSubscriber(db, subscriberConfig(cfg.ServiceName+"-consumer"), wlog)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}

	return &EventBus{
		publisher:    wrapForwarder(pub, useForwarder),
		direct:       pub,
		subscriber:   sub,
		db:           db,
		log:          log,
		wlog:         wlog,
		retry:        DefaultRetryPolicy,
		useForwarder: useForwarder,
	}, nil
}

func wrapForwarder(pub message.Publisher, useForwarder bool) message.Publisher {
	if !useForwarder {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
}

// StartForwarder runs the daemon relaying the forwarder queue to target
// topics and returns once it is running. Only valid once, and only on a bus
// built with NewEventBusWithForwarder.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.useForwarder {
		return errors.New("events: StartForwarder called on non-forwarder EventBus")
	}
	if q.fwd != nil {
		return errors.New("events: forwarder already started")
	}

	fwdSub, err := watermillsql.NewSubscriber(q.db, subscriberConfig("forwarder-consumer"), q.wlog)
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}
	fwd, err := forwarder.NewForwarder(fwdSub, q.direct, q.wlog, forwarder.Config{
		ForwarderTopic: forwarderTopic,
	})
	if err != nil {
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: forwarder started")
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: context cancelled waiting for forwarder: %w", ctx.Err())
	}
}

// InitializeTopics creates the storage tables of topics and of their poison
// topics up front. Transactional publishers do not create tables, so every
// topic published inside a transaction must be initialized at startup.
func (q *EventBus) InitializeTopics(topics ...string) error {
	init, ok := q.subscriber.(message.SubscribeInitializer)
	if !ok {
		return nil
	}
	for _, topic := range topics {
		for _, t := range []string{topic, topic + PoisonSuffix} {
			if err := init.SubscribeInitialize(t); err != nil {
				return fmt.Errorf("events: initialize %s: %w", t, err)
			}
		}
	}
	return nil
}

// NewTxPublisher returns a Publisher bound to tx, so the event row commits or
// rolls back together with the caller's writes.
func (q *EventBus) NewTxPublisher(tx *sql.Tx) (message.Publisher, error) {
	pub, err := watermillsql.NewPublisher(tx, publisherConfig(false), q.wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new tx publisher: %w", err)
	}
	return wrapForwarder(pub, q.useForwarder), nil
}

// PublishTx publishes msgs to topic inside tx.
func (q *EventBus) PublishTx(ctx context.Context, tx *sql.Tx, topic string, msgs ...*message.Message) error {
	pub, err := q.NewTxPublisher(tx)
	if err != nil {
		return err
	}
	injectTrace(ctx, msgs)
	if err := pub.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s in tx: %w", topic, err)
	}
	return nil
}

// Publish sends msgs to topic outside any transaction.
func (q *EventBus) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	injectTrace(ctx, msgs)
	if err := q.publisher.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers handler for topic. The handler's context carries the
// publisher's trace. Handler failures that outlive the retry policy are sent
// on the returned channel (buffered, capacity 100), which callers must drain.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, 100)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)

		for msg := range ch {
			msgCtx := extractTrace(ctx, msg)
			if err := q.deliver(msgCtx, topic, msg, handler); err != nil {
				select {
				case errCh <- err:
				default:
					q.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
						"error", err, "topic", topic)
				}
			}
		}
	}()

	return errCh, nil
}

// deliver runs handler under the retry policy and settles msg. A message
// that keeps failing is moved to the poison topic and acked; it is nacked
// for redelivery only when that move fails or ctx is done.
func (q *EventBus) deliver(ctx context.Context, topic string, msg *message.Message, handler func(context.Context, *message.Message) error) error {
	err := retryWithBackoff(ctx, msg, handler, q.retry, q.log)
	if err == nil {
		msg.Ack()
		return nil
	}
	if ctx.Err() != nil {
		msg.Nack()
		return err
	}

	if perr := q.poison(topic, msg, err); perr != nil {
		msg.Nack()
		return errors.Join(err, perr)
	}
	q.log.ErrorContext(ctx, "events: message moved to poison topic",
		"topic", topic, "message_uuid", msg.UUID, "error", err)
	msg.Ack()
	return err
}

func (q *EventBus) poison(topic string, msg *message.Message, cause error) error {
	p := msg.Copy()
	p.Metadata.Set(metadataPoisonTopic, topic)
	p.Metadata.Set(metadataPoisonReason, cause.Error())
	if err := q.direct.Publish(topic+PoisonSuffix, p); err != nil {
		return fmt.Errorf("events: publish to %s%s: %w", topic, PoisonSuffix, err)
	}
	return nil
}

// retryWithBackoff calls handler up to policy.Attempts times, doubling the
// delay after each failure. It returns the last error once attempts run out.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler func(context.Context, *message.Message) error,
	policy RetryPolicy,
	log logger.Logger,
) error {
	attempts := max(policy.Attempts, 1)
	delay := policy.BaseDelay
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("events: handler failed after %d attempts: %w", attempts, err)
}

// Ping checks the connection the bus polls through.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and the forwarder, waits up to 30 s for
// in-flight handlers, then closes the publisher. The shared pool stays open.
func (q *EventBus) Close() error {
	var errs []error
	if err := q.subscriber.Close(); err != nil {
		errs = append(errs, fmt.Errorf("events: close subscriber: %w", err))
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			errs = append(errs, fmt.Errorf("events: close forwarder: %w", err))
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers to complete")
	}

	if err := q.direct.Close(); err != nil {
		errs = append(errs, fmt.Errorf("events: close publisher: %w", err))
	}
	return errors.Join(errs...)
}

func publisherConfig(autoInit bool) watermillsql.PublisherConfig {
	return watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: autoInit,
	}
}

func subscriberConfig(group string) watermillsql.SubscriberConfig {
	return watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}
}

func injectTrace(ctx context.Context, msgs []*message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
}

func extractTrace(ctx context.Context, msg *message.Message) context.Context {
	carrier := propagation.MapCarrier{}
	for k, v := range msg.Metadata {
		carrier[k] = v
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// slogAdapter bridges logger.Logger to watermill.LoggerAdapter. Watermill's
// trace level maps to debug.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}

func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}

func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}

func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}

func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
