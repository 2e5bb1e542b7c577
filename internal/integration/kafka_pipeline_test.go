//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/sentra-ops/incident-triage/internal/adapter/kafka"
	"github.com/sentra-ops/incident-triage/internal/config"
	"github.com/sentra-ops/incident-triage/internal/domain"
	"github.com/sentra-ops/incident-triage/internal/observability"
	"github.com/sentra-ops/incident-triage/internal/pipeline"
)

const (
	testSourceTopic = "test-reports"
	testSinkTopic   = "test-triaged"
)

// --- container and broker helpers ---

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(broker, group string) *config.Config {
	return &config.Config{
		KafkaBrokers:       []string{broker},
		KafkaSourceTopic:   testSourceTopic,
		KafkaSinkTopic:     testSinkTopic,
		KafkaGroupID:       fmt.Sprintf("%s-%d", group, time.Now().UnixNano()),
		BatchFlushInterval: 5 * time.Second,
	}
}

// mockReports builds a fixed batch of raw citizen reports: two Fire reports
// close in time and space (a duplicate pair), one Medical, one resolved
// Accident.
func mockReports(base time.Time) []map[string]any {
	return []map[string]any{
		{
			"id":        "rep-fire-1",
			"type":      "Fire",
			"severity":  "Critical",
			"status":    "Reported",
			"createdAt": base.Format(time.RFC3339),
			"location":  map[string]float64{"lat": 28.61, "lng": 77.23},
		},
		{
			"id":        "rep-fire-2",
			"type":      "Fire",
			"severity":  "Medium",
			"status":    "Reported",
			"createdAt": base.Add(3 * time.Minute).Format(time.RFC3339),
			"location":  map[string]float64{"lat": 28.612, "lng": 77.233},
		},
		{
			"id":             "rep-medical-1",
			"type":           "Medical",
			"severity":       "Critical",
			"status":         "Verified",
			"createdAt":      base.Add(time.Minute).Format(time.RFC3339),
			"location":       map[string]float64{"lat": 19.07, "lng": 72.87},
			"sensorVerified": true,
		},
		{
			"id":        "rep-accident-1",
			"type":      "Accident",
			"severity":  "Low",
			"status":    "Resolved",
			"createdAt": base.Format(time.RFC3339),
			"location":  map[string]float64{"lat": 12.97, "lng": 77.59},
		},
	}
}

// triagedMessage holds a deserialized message read from the sink topic.
type triagedMessage struct {
	Incident domain.TriagedIncident
	Key      string
	Headers  map[string]string
}

// readTriaged reads a single message from the sink consumer and deserializes it.
func readTriaged(ctx context.Context, t *testing.T, consumer *kafkago.Reader) triagedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var inc domain.TriagedIncident
	require.NoError(t, json.Unmarshal(msg.Value, &inc), "unmarshal sink message")

	return triagedMessage{
		Incident: inc,
		Key:      string(msg.Key),
		Headers:  headers,
	}
}

func newSinkConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testSinkTopic,
		GroupID:     fmt.Sprintf("test-sink-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

// --- tests ---

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (Extractor)
// and kafka.Writer (Loader) correctly round-trip a message through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-reader")

	reports := mockReports(time.Now().UTC().Add(-2 * time.Minute))
	payload, err := json.Marshal(reports[0])
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("rep-fire-1"),
		Value: payload,
	}))

	// Extract via kafka.Reader.
	// Retry because the consumer group may need time to rebalance before
	// partitions are assigned and messages become available.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	var batch []domain.RawEvent
	for {
		var err error
		batch, err = reader.ExtractBatch(ctx, 1)
		require.NoError(t, err)
		if len(batch) > 0 {
			break
		}
		if ctx.Err() != nil {
			t.Fatal("timed out waiting for message from source topic")
		}
	}
	require.Len(t, batch, 1)
	raw := batch[0]
	assert.Equal(t, []byte("rep-fire-1"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")

	require.NoError(t, raw.Commit(ctx))

	// Transform and triage the raw report.
	transformer := pipeline.NewTransformer(discardLogger())
	inc, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	triager := pipeline.NewTriager(nil, discardLogger(), nil, time.Hour)
	triaged := triager.TriageBatch(ctx, []domain.Incident{inc})
	require.Len(t, triaged, 1)

	// Load via kafka.Writer.
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.LoadBatch(ctx, triaged))

	// Read from the sink topic and verify headers + value.
	consumer := newSinkConsumer(t, broker)

	tm := readTriaged(ctx, t, consumer)
	assert.Equal(t, "rep-fire-1", tm.Key)
	assert.Equal(t, "Fire", tm.Headers["incident_type"])
	require.Contains(t, tm.Headers, "triaged_at")
	_, err = time.Parse(time.RFC3339, tm.Headers["triaged_at"])
	assert.NoError(t, err, "triaged_at should be valid RFC3339")

	assert.Equal(t, domain.TypeFire, tm.Incident.Type)
	assert.Equal(t, domain.SeverityCritical, tm.Incident.Severity)
	assert.Positive(t, tm.Incident.PriorityScore)
	assert.NotEmpty(t, tm.Incident.Reasons)
	assert.Equal(t, "Delhi NCR", tm.Incident.RegionLabel)
}

// TestPipelineEndToEnd wires the full pipeline (Reader -> Transformer ->
// Triager -> Writer) with real Kafka and verifies that the reports come out
// scored, labeled, and duplicate-flagged.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-pipeline")

	reports := mockReports(time.Now().UTC().Add(-10 * time.Minute))

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(reports))
	for _, rep := range reports {
		payload, err := json.Marshal(rep)
		require.NoError(t, err)
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(rep["id"].(string)),
			Value: payload,
		})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	// Wire up the pipeline.
	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	transformer := pipeline.NewTransformer(discardLogger())
	triager := pipeline.NewTriager(nil, discardLogger(), nil, time.Hour)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, transformer, triager, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)

	received := make(map[string]triagedMessage, len(reports))
	for len(received) < len(reports) {
		tm := readTriaged(ctx, t, consumer)
		received[tm.Incident.ID] = tm
	}

	pipelineCancel()
	require.NoError(t, <-errCh)

	require.Len(t, received, len(reports))
	for id, tm := range received {
		assert.NotEmpty(t, tm.Headers["incident_type"], "missing incident_type header for %s", id)
		assert.Contains(t, tm.Headers, "triaged_at", "missing triaged_at header for %s", id)
		assert.NotEmpty(t, tm.Incident.Reasons, "missing reasons for %s", id)
		assert.NotEmpty(t, tm.Incident.RegionLabel, "missing region label for %s", id)
	}

	// The second Fire report is close in time and space to the first, so it
	// gets flagged. The first may be triaged before the second arrives, so
	// its flag depends on batch boundaries and is not asserted.
	assert.True(t, received["rep-fire-2"].Incident.IsDuplicate, "rep-fire-2 should be flagged")
	assert.Equal(t, domain.DuplicateMarkerReason, received["rep-fire-2"].Incident.Reasons[0])

	// The sensor-verified critical medical report outranks everything else.
	medical := received["rep-medical-1"].Incident
	assert.False(t, medical.IsDuplicate)
	assert.Equal(t, "Mumbai Metropolitan", medical.RegionLabel)
	for id, tm := range received {
		if id == "rep-medical-1" {
			continue
		}
		assert.Greater(t, medical.PriorityScore, tm.Incident.PriorityScore, "medical should outrank %s", id)
	}

	// The resolved accident is scored with the resolution penalty applied.
	accident := received["rep-accident-1"].Incident
	assert.Equal(t, domain.StatusResolved, accident.Status)
	assert.Equal(t, "Bengaluru Urban", accident.RegionLabel)
}

// TestPipelineTransformError verifies that an invalid message (poison pill)
// is skipped and the pipeline continues processing valid messages.
func TestPipelineTransformError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-poison")

	reports := mockReports(time.Now().UTC())
	validPayload, err := json.Marshal(reports[2])
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("good"), Value: validPayload},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	transformer := pipeline.NewTransformer(discardLogger())
	triager := pipeline.NewTriager(nil, discardLogger(), nil, time.Hour)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(reader, transformer, triager, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	// Only the valid message should appear on the sink topic.
	consumer := newSinkConsumer(t, broker)

	tm := readTriaged(ctx, t, consumer)
	assert.Equal(t, "rep-medical-1", tm.Incident.ID)
	assert.Equal(t, domain.TypeMedical, tm.Incident.Type)

	// Verify no second message arrives (the poison pill was skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
