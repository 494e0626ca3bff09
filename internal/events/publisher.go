package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"astro-server/internal/shared/config"
)

// Publisher emits computed forecasts and timelines onto a Kafka topic
// for downstream personalization consumers. A nil Publisher is valid
// and publishes nothing, mirroring the disabled-redis convention.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher returns nil when Kafka is disabled.
func NewPublisher(logger *slog.Logger) *Publisher {
	cfg := config.GlobalConfig.Kafka
	if !cfg.Enabled {
		logger.Info("Kafka disabled, events will not be published")
		return nil
	}

	logger.Info("Kafka publisher configured", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{}, // partition by cache key
			RequiredAcks: kafka.RequireOne,
			Async:        false,
		},
		logger: logger.With("component", "events"),
	}
}

// envelope wraps every published payload with its kind and timestamp.
type envelope struct {
	Kind        string    `json:"kind"`
	Key         string    `json:"key"`
	PublishedAt time.Time `json:"published_at"`
	Payload     any       `json:"payload"`
}

func (p *Publisher) publish(ctx context.Context, kind, key string, payload any) {
	if p == nil {
		return
	}
	value, err := json.Marshal(envelope{
		Kind:        kind,
		Key:         key,
		PublishedAt: time.Now().UTC(),
		Payload:     payload,
	})
	if err != nil {
		p.logger.Warn("Event payload not serializable", "kind", kind, "error", err)
		return
	}
	msg := kafka.Message{Key: []byte(key), Value: value}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		// publishing is best-effort; the HTTP response already carries
		// the result
		p.logger.Warn("Failed to publish event", "kind", kind, "error", err)
	}
}

// PublishForecast emits a computed five-year forecast.
func (p *Publisher) PublishForecast(ctx context.Context, key string, forecast any) {
	p.publish(ctx, "forecast", key, forecast)
}

// PublishTimeline emits a computed transit timeline.
func (p *Publisher) PublishTimeline(ctx context.Context, key string, timeline any) {
	p.publish(ctx, "timeline", key, timeline)
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
