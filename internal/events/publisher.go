package events

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 3 * time.Second

// Message is one event ready for the broker.
type Message struct {
	RoutingKey string
	MessageID  string
	Type       string
	Body       []byte
	Timestamp  time.Time
}

// Publisher sends events to the broker.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Ping(ctx context.Context) error
	Close() error
}

// AMQPPublisher publishes to a durable topic exchange.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// Dial connects to url and declares exchange.
func Dial(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch, exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare %s: %w", exchange, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, msg Message) error {
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return p.ch.PublishWithContext(
		pubCtx,
		p.exchange,
		msg.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.MessageID,
			Type:         msg.Type,
			Timestamp:    ts,
			Body:         msg.Body,
		},
	)
}

// Ping reports whether the connection is still open.
func (p *AMQPPublisher) Ping(context.Context) error {
	if p.conn == nil || p.conn.IsClosed() {
		return fmt.Errorf("amqp connection closed")
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	if err := p.ch.Close(); err != nil {
		_ = p.conn.Close()
		return err
	}
	return p.conn.Close()
}

// LogPublisher stands in for the broker when none is configured. Events are logged and dropped.
type LogPublisher struct {
	Log func(ctx context.Context, msg Message)
}

func (p LogPublisher) Publish(ctx context.Context, msg Message) error {
	if p.Log != nil {
		p.Log(ctx, msg)
	}
	return nil
}

func (LogPublisher) Ping(context.Context) error { return nil }

func (LogPublisher) Close() error { return nil }
