package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/sentra-ops/incident-triage/internal/config"
	"github.com/sentra-ops/incident-triage/internal/domain"
)

// Writer produces messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes the triaged incidents to the sink
// topic in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, incidents []domain.TriagedIncident) error {
	if len(incidents) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(incidents))
	for i := range incidents {
		msg, err := serializeToMessage(incidents[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a triaged incident into a Kafka message.
// The incident ID keys the message so re-triaged revisions of the same
// incident land on the same partition.
func serializeToMessage(inc domain.TriagedIncident) (kafkago.Message, error) {
	data, err := json.Marshal(inc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize triaged incident: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(inc.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "incident_type", Value: []byte(inc.Type)},
			{Key: "triaged_at", Value: []byte(inc.TriagedAt.Format(time.RFC3339))},
		},
	}, nil
}
