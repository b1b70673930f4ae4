package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
)

// AMQPBridge shares change events between API instances through a RabbitMQ
// fanout exchange. Local subscribers are notified directly; each instance
// consumes from its own exclusive queue and ignores events it published.
type AMQPBridge struct {
	hub      *Hub
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	queue    string
	origin   string

	pubMu sync.Mutex
}

var _ Publisher = (*AMQPBridge)(nil)

// DialAMQP connects to url and declares the fanout exchange plus a private
// queue bound to it.
func DialAMQP(url, exchange string, hub *Hub) (*AMQPBridge, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	b := &AMQPBridge{
		hub:      hub,
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		origin:   uuid.NewString(),
	}
	if err := b.setup(); err != nil {
		b.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}
	return b, nil
}

func (b *AMQPBridge) setup() error {
	err := b.channel.ExchangeDeclare(
		b.exchange, // name
		"fanout",   // type
		true,       // durable
		false,      // auto-deleted
		false,      // internal
		false,      // no-wait
		nil,        // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	q, err := b.channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	b.queue = q.Name

	if err := b.channel.QueueBind(b.queue, "", b.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}
	return nil
}

// Origin is the id stamped on events published by this bridge.
func (b *AMQPBridge) Origin() string { return b.origin }

// Publish notifies local subscribers and forwards ev to the exchange.
func (b *AMQPBridge) Publish(ctx context.Context, ev Event) error {
	ev.Origin = b.origin
	b.hub.deliver(ev)

	body, err := encodeEvent(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	err = b.channel.PublishWithContext(
		ctx,
		b.exchange, // exchange
		"",         // routing key, ignored by fanout
		false,      // mandatory
		false,      // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Run consumes events from other instances into the local hub until ctx is
// cancelled or the delivery channel closes.
func (b *AMQPBridge) Run(ctx context.Context) error {
	msgs, err := b.channel.Consume(
		b.queue, // queue
		"",      // consumer
		false,   // auto-ack
		true,    // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "consuming change events", "exchange", b.exchange, "queue", b.queue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}
			ev, err := decodeEvent(delivery.Body)
			if err != nil {
				slog.WarnContext(ctx, "dropping malformed change event", "error", err)
				delivery.Nack(false, false)
				continue
			}
			if ev.Origin != b.origin {
				b.hub.deliver(ev)
			}
			delivery.Ack(false)
		}
	}
}

func (b *AMQPBridge) Close() error {
	if b.channel != nil {
		b.channel.Close()
	}
	if b.conn != nil {
		return b.conn.Close()
	}
	return nil
}

func encodeEvent(ev Event) ([]byte, error) {
	return json.Marshal(ev)
}

func decodeEvent(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, err
	}
	if ev.OwnerID == "" {
		return Event{}, fmt.Errorf("event without owner")
	}
	return ev, nil
}
