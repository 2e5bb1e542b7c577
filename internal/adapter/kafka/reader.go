package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/sentra-ops/incident-triage/internal/config"
	"github.com/sentra-ops/incident-triage/internal/domain"
)

// Reader consumes raw report messages from the source topic as part of a
// consumer group. It implements pipeline.BatchExtractor.
type Reader struct {
	reader        *kafkago.Reader
	flushInterval time.Duration
	logger        *slog.Logger
}

// NewReader creates a consumer-group reader for the configured source topic.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaSourceTopic,
		GroupID:     cfg.KafkaGroupID,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
	})
	return &Reader{
		reader:        r,
		flushInterval: cfg.BatchFlushInterval,
		logger:        logger,
	}
}

// ExtractBatch fetches up to batchSize messages. The first fetch blocks
// until a message arrives or the context is cancelled; subsequent fetches
// stop at the flush interval so a partially filled batch still flows
// through triage promptly. Offsets are committed lazily via the per-message
// Commit callback, after the batch has been loaded downstream.
func (r *Reader) ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error) {
	batch := make([]domain.RawEvent, 0, batchSize)

	for len(batch) < batchSize {
		fetchCtx := ctx
		var cancel context.CancelFunc
		if len(batch) > 0 {
			fetchCtx, cancel = context.WithTimeout(ctx, r.flushInterval)
		}

		msg, err := r.reader.FetchMessage(fetchCtx)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			// A flush-interval deadline with messages in hand is a full
			// enough batch, not a failure.
			if len(batch) > 0 && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return batch, nil
			}
			if ctx.Err() != nil {
				return batch, nil
			}
			return nil, err
		}

		batch = append(batch, mapMessageToRawEvent(r.reader, msg))
	}

	return batch, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToRawEvent converts a Kafka message into the transport-neutral
// RawEvent, carrying a commit closure bound to this reader's group offsets.
func mapMessageToRawEvent(reader *kafkago.Reader, msg kafkago.Message) domain.RawEvent {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}

	return domain.RawEvent{
		Key:       msg.Key,
		Value:     msg.Value,
		Headers:   headers,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Timestamp: msg.Time,
		Commit: func(ctx context.Context) error {
			return reader.CommitMessages(ctx, msg)
		},
	}
}
