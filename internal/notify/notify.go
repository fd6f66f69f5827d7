// Package notify delivers templated customer notifications. Delivery is
// handed off to Kafka; a mail worker outside this service renders and sends.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/mykafka"
)

const TemplateOrderConfirmation = "order_confirmation"

type Notification struct {
	Template string         `json:"template"`
	To       string         `json:"to"`
	Subject  string         `json:"subject"`
	Data     map[string]any `json:"data,omitempty"`
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type KafkaNotifier struct {
	Publisher Publisher
	Topic     string
}

func NewKafkaNotifier(p Publisher) *KafkaNotifier {
	return &KafkaNotifier{Publisher: p, Topic: mykafka.TopicNotifications}
}

func (n *KafkaNotifier) Send(ctx context.Context, msg Notification) error {
	if msg.To == "" {
		return fmt.Errorf("notify: recipient is empty")
	}
	if err := n.Publisher.PublishEvent(ctx, n.Topic, msg.To, msg); err != nil {
		return fmt.Errorf("notify: %s to %s: %w", msg.Template, msg.To, err)
	}
	return nil
}

// LogNotifier writes notifications to the request logger. Used when no
// broker is configured.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, msg Notification) error {
	logging.FromContext(ctx).LogAttrs(ctx, slog.LevelInfo, "notification",
		slog.String("template", msg.Template),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
