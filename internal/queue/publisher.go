package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// defaultDialTimeout caps the TCP dial and AMQP handshake when ctx carries
// no deadline of its own.
const defaultDialTimeout = 3 * time.Second

// Publisher sends domain events to RabbitMQ.  Each publish dials a fresh
// connection; escalations are rare enough that pooling is not worth the
// reconnect handling.
type Publisher struct {
	url string
	log *slog.Logger
}

// NewPublisher returns a publisher for url.  A nil *Publisher is valid and
// drops every event, which is how the service runs without a broker.
func NewPublisher(url string, log *slog.Logger) *Publisher {
	if url == "" {
		return nil
	}
	return &Publisher{url: url, log: log}
}

// PublishEscalation publishes ev to the escalation queue as a persistent
// JSON message.  The dial honours the deadline of ctx.
func (p *Publisher) PublishEscalation(ctx context.Context, ev PrescriptionEscalatedEvent) error {
	if p == nil {
		return nil
	}
	if err := p.publish(ctx, EscalationQueue, ev); err != nil {
		return err
	}
	p.log.Debug("rabbitmq: published",
		slog.String("queue", EscalationQueue),
		slog.Uint64("prescription_id", ev.PrescriptionID))
	return nil
}

// dialTimeout is the time left on ctx, or defaultDialTimeout.
func dialTimeout(ctx context.Context) time.Duration {
	d := defaultDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		d = time.Until(deadline)
	}
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}

func (p *Publisher) publish(ctx context.Context, queue string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout(ctx)),
	})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	return ch.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key = queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}
