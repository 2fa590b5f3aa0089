package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"corpfood-backend/pkg/logkey"

	"github.com/twmb/franz-go/pkg/kgo"
)

type Conf struct {
	client *kgo.Client
}

// NewConf creates a producer-only client.
func NewConf(brokers []string) (*Conf, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	return &Conf{client: client}, nil
}

// NewConsumerConf creates a client subscribed to the given topics as part of
// a consumer group.
func NewConsumerConf(brokers []string, group string, topics ...string) (*Conf, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topics...),
	)
	if err != nil {
		return nil, fmt.Errorf("creating kafka consumer client: %w", err)
	}
	return &Conf{client: client}, nil
}

func (c *Conf) Close() {
	c.client.Close()
}

// ProduceMessage synchronously publishes one record.
func (c *Conf) ProduceMessage(topic string, key, value []byte) error {
	record := &kgo.Record{
		Topic: topic,
		Key:   key,
		Value: value,
	}
	if err := c.client.ProduceSync(context.Background(), record).FirstErr(); err != nil {
		return fmt.Errorf("producing to %s: %w", topic, err)
	}
	return nil
}

// ConsumeMessages polls until ctx is cancelled, invoking handler per record.
// Handler errors are logged and the record is skipped; consumption continues.
func (c *Conf) ConsumeMessages(ctx context.Context, handler func(topic string, key, value []byte) error) error {
	for {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			slog.Error("kafka fetch error", slog.String(logkey.Topic, topic),
				slog.Int("Partition", int(partition)), slog.String(logkey.ERROR, err.Error()))
		})
		fetches.EachRecord(func(record *kgo.Record) {
			if err := handler(record.Topic, record.Key, record.Value); err != nil {
				slog.Error("kafka handler failed", slog.String(logkey.Topic, record.Topic),
					slog.String(logkey.ERROR, err.Error()))
			}
		})
	}
}
