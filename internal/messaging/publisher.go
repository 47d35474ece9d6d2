package messaging

import (
	"context"
	"fmt"

	"cartify/internal/config"
)

const (
	TopicOrderCreated   = "order.created"
	TopicPaymentWebhook = "payment.webhook"
)

// Publisher sends JSON-encoded events to a broker.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

// New builds the publisher selected by cfg.EventBroker.
func New(cfg config.Config) (Publisher, error) {
	switch cfg.EventBroker {
	case "", "none":
		return NopPublisher{}, nil
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokers), nil
	case "rabbitmq", "amqp":
		return DialAMQP(cfg.AMQPURL, TopicOrderCreated, TopicPaymentWebhook)
	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.EventBroker)
	}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
