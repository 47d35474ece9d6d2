package messaging

import (
	"context"
	"testing"

	"cartify/internal/config"
	"github.com/segmentio/kafka-go"
)

func TestNew_SelectsPublisher(t *testing.T) {
	p, err := New(config.Config{EventBroker: "none"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := p.(NopPublisher); !ok {
		t.Fatalf("expected NopPublisher, got %T", p)
	}
	if err := p.Publish(context.Background(), TopicOrderCreated, "k", map[string]string{}); err != nil {
		t.Fatalf("nop publish: %v", err)
	}

	p, err = New(config.Config{EventBroker: "kafka", KafkaBrokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}
	if _, ok := p.(*KafkaPublisher); !ok {
		t.Fatalf("expected KafkaPublisher, got %T", p)
	}
	_ = p.Close()

	if _, err := New(config.Config{EventBroker: "carrier-pigeon"}); err == nil {
		t.Fatalf("expected unknown broker error")
	}
}

func TestMessageCarrier(t *testing.T) {
	msg := kafka.Message{}
	c := NewMessageCarrier(&msg)
	c.Set("traceparent", "a")
	c.Set("traceparent", "b")
	c.Set("baggage", "x=1")

	if got := c.Get("traceparent"); got != "b" {
		t.Fatalf("expected overwrite, got %q", got)
	}
	if len(c.Keys()) != 2 {
		t.Fatalf("expected 2 headers, got %v", c.Keys())
	}
	if c.Get("missing") != "" {
		t.Fatalf("expected empty value for missing key")
	}
}
