package events

import (
	"fmt"

	"github.com/angelmondragon/webmarket/pkg/enums"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	OrderCreatedRoutingKey       = "order.created.v1"
	OrderStatusChangedRoutingKey = "order.status_changed.v1"
)

// RoutingKeyFor maps an outbox event type to its broker routing key.
func RoutingKeyFor(eventType enums.OutboxEventType) (string, error) {
	switch eventType {
	case enums.EventOrderCreated:
		return OrderCreatedRoutingKey, nil
	case enums.EventOrderStatusChanged:
		return OrderStatusChangedRoutingKey, nil
	default:
		return "", fmt.Errorf("no routing key for event type %q", eventType)
	}
}

func declareEventsExchange(ch *amqp.Channel, exchange string) error {
	return ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}
