// Package events publishes user activity to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/prohmpiriya/sportify-web/pkg/logger"
	"github.com/prohmpiriya/sportify-web/pkg/retry"
)

// Publisher defines the interface for publishing activity events
type Publisher interface {
	// Publish writes one event
	Publish(ctx context.Context, e *Event) error

	// Close flushes and closes the publisher
	Close() error
}

// producer is the part of *kgo.Client the publisher uses
type producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// Config contains configuration for the Kafka publisher
type Config struct {
	Brokers     []string
	Topic       string
	ClientID    string
	ServiceName string
}

// KafkaPublisher implements Publisher using franz-go
type KafkaPublisher struct {
	producer    producer
	topic       string
	serviceName string
}

// NewKafkaPublisher connects to the brokers and returns a publisher
func NewKafkaPublisher(ctx context.Context, cfg *Config) (*KafkaPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "sportify-activity"
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "sportify-web-producer"
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "sportify-web"
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(clientID),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(10*time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	pingCfg := retry.DefaultConfig()
	err = retry.Do(ctx, pingCfg, func(ctx context.Context) error {
		return client.Ping(ctx)
	}, func(attempt int, err error, wait time.Duration) {
		logger.Warn("kafka not reachable, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach kafka: %w", err)
	}

	return newKafkaPublisher(client, topic, serviceName), nil
}

func newKafkaPublisher(p producer, topic, serviceName string) *KafkaPublisher {
	return &KafkaPublisher{producer: p, topic: topic, serviceName: serviceName}
}

// Publish writes e synchronously so failures reach the caller
func (p *KafkaPublisher) Publish(ctx context.Context, e *Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(e.Key()),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "event_type", Value: []byte(e.Type)},
			{Key: "event_id", Value: []byte(e.ID)},
			{Key: "source", Value: []byte(p.serviceName)},
			{Key: "content_type", Value: []byte("application/json")},
		},
		Timestamp: e.OccurredAt,
	}

	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", e.Type, err)
	}
	return nil
}

// Close closes the underlying client
func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// NoOpPublisher drops every event; used when Kafka is disabled
type NoOpPublisher struct{}

// NewNoOpPublisher creates a new no-op publisher
func NewNoOpPublisher() *NoOpPublisher {
	return &NoOpPublisher{}
}

// Publish is a no-op
func (p *NoOpPublisher) Publish(ctx context.Context, e *Event) error {
	return nil
}

// Close is a no-op
func (p *NoOpPublisher) Close() error {
	return nil
}
