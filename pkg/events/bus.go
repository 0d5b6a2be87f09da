// Package events carries lending domain events through PostgreSQL with
// Watermill's SQL transport.
//
// Events are written inside the business transaction (PublishTx), so a
// borrow transition and its event commit or roll back together. The API runs
// in ModeForwarder: writes land in a single outbox topic and a forwarder
// relays them to their real topics. The worker runs in ModeDirect and
// consumes those topics with a shared consumer group, so each event is
// handled by one worker instance.
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

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ghuser/lendingdesk/pkg/config"
	"github.com/ghuser/lendingdesk/pkg/logger"
)

// Mode selects how PublishTx routes messages.
type Mode int

const (
	// ModeDirect writes messages straight into their topic table.
	ModeDirect Mode = iota
	// ModeForwarder writes messages into the outbox topic; StartForwarder
	// relays them.
	ModeForwarder
)

const (
	outboxTopic      = "lending_outbox"
	drainTimeout     = 30 * time.Second
	errChannelBuffer = 100
)

// Options configures Open. Zero values take defaults.
type Options struct {
	Mode Mode
	// ConsumerGroup defaults to "<service>-consumer".
	ConsumerGroup string
	Retry         RetryPolicy
}

// EventBus owns the Watermill subscriber, the optional forwarder and the
// database handle they share.
type EventBus struct {
	db         *sql.DB
	subscriber *watermillsql.Subscriber
	fwd        *forwarder.Forwarder
	mode       Mode
	retry      RetryPolicy
	log        logger.Logger
	wlog       watermill.LoggerAdapter
	wg         sync.WaitGroup
}

var schema = watermillsql.DefaultPostgreSQLSchema{}

// Open connects to cfg.DatabaseURL and prepares the subscriber. Topic
// tables are created on first subscribe, or up front with EnsureTopics.
func Open(cfg *config.Config, log logger.Logger, opts Options) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}
	if opts.ConsumerGroup == "" {
		opts.ConsumerGroup = cfg.ServiceName + "-consumer"
	}

	wlog := newLogAdapter(log)
	sub, err := newSubscriber(db, opts.ConsumerGroup, wlog)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &EventBus{
		db:         db,
		subscriber: sub,
		mode:       opts.Mode,
		retry:      opts.Retry.withDefaults(),
		log:        log,
		wlog:       wlog,
	}, nil
}

func newSubscriber(db *sql.DB, group string, wlog watermill.LoggerAdapter) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(db, watermillsql.SubscriberConfig{
		SchemaAdapter:    schema,
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    group,
	}, wlog)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber (%s): %w", group, err)
	}
	return sub, nil
}

// EnsureTopics creates the message and offset tables for topics. PublishTx
// never creates tables itself, since DDL inside a business transaction
// would take locks on the hot path.
func (b *EventBus) EnsureTopics(topics ...string) error {
	if b.mode == ModeForwarder {
		topics = append(topics, outboxTopic)
	}
	for _, topic := range topics {
		if err := b.subscriber.SubscribeInitialize(topic); err != nil {
			return fmt.Errorf("events: initialize %s: %w", topic, err)
		}
	}
	return nil
}

// StartForwarder runs the outbox relay until ctx is cancelled or Close is
// called. It returns once the relay is consuming.
func (b *EventBus) StartForwarder(ctx context.Context) error {
	if b.mode != ModeForwarder {
		return errors.New("events: StartForwarder requires ModeForwarder")
	}
	if b.fwd != nil {
		return errors.New("events: forwarder already started")
	}

	outboxSub, err := newSubscriber(b.db, "lending-forwarder", b.wlog)
	if err != nil {
		return err
	}
	target, err := watermillsql.NewPublisher(b.db, watermillsql.PublisherConfig{
		SchemaAdapter:        schema,
		AutoInitializeSchema: true,
	}, b.wlog)
	if err != nil {
		_ = outboxSub.Close()
		return fmt.Errorf("events: new relay publisher: %w", err)
	}
	fwd, err := forwarder.NewForwarder(outboxSub, target, b.wlog, forwarder.Config{ForwarderTopic: outboxTopic})
	if err != nil {
		_ = target.Close()
		_ = outboxSub.Close()
		return fmt.Errorf("events: new forwarder: %w", err)
	}
	b.fwd = fwd

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		if err := fwd.Run(ctx); err != nil {
			b.log.ErrorContext(ctx, "events: forwarder stopped", "error", err)
			return
		}
		b.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		b.log.InfoContext(ctx, "events: forwarder running", "outbox", outboxTopic)
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: waiting for forwarder: %w", ctx.Err())
	}
}

// PublishTx writes msgs for topic inside tx. Subscribers see them only
// after tx commits.
func (b *EventBus) PublishTx(tx *sql.Tx, topic string, msgs ...*message.Message) error {
	pub, err := watermillsql.NewPublisher(tx, watermillsql.PublisherConfig{SchemaAdapter: schema}, b.wlog)
	if err != nil {
		return fmt.Errorf("events: tx publisher: %w", err)
	}
	var p message.Publisher = pub
	if b.mode == ModeForwarder {
		p = forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: outboxTopic})
	}
	if err := p.Publish(topic, msgs...); err != nil {
		return fmt.Errorf("events: publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe consumes topic in the background. Each message is handled with
// the publisher's trace restored into ctx and retried per the bus
// RetryPolicy; a message that still fails is nacked and its error sent on
// the returned channel, which the caller must drain. The channel closes when
// the subscription ends.
func (b *EventBus) Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error) {
	msgs, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe %s: %w", topic, err)
	}

	errCh := make(chan error, errChannelBuffer)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer close(errCh)
		for msg := range msgs {
			b.handle(ExtractTrace(ctx, msg), topic, msg, handler, errCh)
		}
	}()
	return errCh, nil
}

func (b *EventBus) handle(ctx context.Context, topic string, msg *message.Message, handler func(context.Context, *message.Message) error, errCh chan<- error) {
	err := b.retry.Do(ctx, func() error { return handler(ctx, msg) }, func(attempt int, next time.Duration, err error) {
		b.log.WarnContext(ctx, "events: handler failed, retrying",
			"topic", topic, "event_id", EventID(msg), "attempt", attempt, "next_delay", next, "error", err)
	})
	if err == nil {
		msg.Ack()
		return
	}
	msg.Nack()
	err = fmt.Errorf("events: %s event %s: %w", topic, EventID(msg), err)
	select {
	case errCh <- err:
	default:
		b.log.ErrorContext(ctx, "events: error channel full", "topic", topic, "error", err)
	}
}

// Ping reports whether the event database is reachable.
func (b *EventBus) Ping(ctx context.Context) error {
	if err := b.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping: %w", err)
	}
	return nil
}

// Close stops consuming, waits up to 30s for in-flight handlers and closes
// the database handle.
func (b *EventBus) Close() error {
	err := b.subscriber.Close()
	if b.fwd != nil {
		err = errors.Join(err, b.fwd.Close())
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(drainTimeout):
		b.log.Error("events: in-flight handlers still running at shutdown")
	}

	if err = errors.Join(err, b.db.Close()); err != nil {
		return fmt.Errorf("events: close: %w", err)
	}
	return nil
}
