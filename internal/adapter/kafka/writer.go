// Package kafka publishes observations to a topic for downstream consumers.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/davidjcox/birdcast-collector/internal/domain"
)

// Writer publishes observations to a Kafka topic. Publishing is an optional
// side channel; the CSV/JSON files remain the durable record and a publish
// failure never fails the target.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the observation topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes one observation and writes it to the topic, keyed by
// region code so a region's observations stay in partition order.
func (w *Writer) Publish(ctx context.Context, obs domain.Observation) error {
	msg, err := serializeToMessage(obs)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Observation into a Kafka message.
func serializeToMessage(obs domain.Observation) (kafkago.Message, error) {
	data, err := json.Marshal(obs)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize observation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(obs.RegionCode),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "region_code", Value: []byte(obs.RegionCode)},
			{Key: "scraped_at", Value: []byte(obs.ScrapeTimestamp.Format(time.RFC3339))},
		},
	}, nil
}
