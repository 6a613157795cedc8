// Package kafka publishes newly ingested alert records to a feed topic for
// downstream consumers (notifiers, archivers). The feed is optional and
// feature-flagged; the pipeline works without it.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/pinemarten/campus-alert-service/internal/domain"
)

// Publisher produces alert records to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the alert feed topic.
func NewPublisher(brokers []string, topic string, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishRecords serializes and publishes the records in a single
// WriteMessages call. Records of one incident share a message key so
// consumers see an incident's postings in order.
func (p *Publisher) PublishRecords(ctx context.Context, records []domain.IncidentRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an IncidentRecord into a Kafka message.
func serializeToMessage(rec domain.IncidentRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize alert record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(rec.IncidentID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_kind", Value: []byte(rec.Kind)},
			{Key: "alert_id", Value: []byte(strconv.Itoa(rec.AlertID))},
		},
	}, nil
}
