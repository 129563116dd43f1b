//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/fg-probability-service/internal/adapter/kafka"
	"github.com/couchcryptid/fg-probability-service/internal/config"
	"github.com/couchcryptid/fg-probability-service/internal/domain"
	"github.com/couchcryptid/fg-probability-service/internal/observability"
	"github.com/couchcryptid/fg-probability-service/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSourceTopic = "test-attempt-requests"
	testSinkTopic   = "test-attempt-probabilities"
)

// scoredMessage holds a deserialized message read from the sink topic.
type scoredMessage struct {
	Result  domain.ScoredAttempt
	Key     string
	Headers map[string]string
}

// readScored reads a single message from the sink consumer and deserializes it.
func readScored(ctx context.Context, t *testing.T, consumer *kafkago.Reader) scoredMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from sink topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var result domain.ScoredAttempt
	require.NoError(t, json.Unmarshal(msg.Value, &result), "unmarshal sink message")

	return scoredMessage{
		Result:  result,
		Key:     string(msg.Key),
		Headers: headers,
	}
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

func newModel(t *testing.T) *domain.Model {
	t.Helper()
	model, err := domain.DefaultModel()
	require.NoError(t, err)
	return model
}

// TestKafkaReaderWriter verifies the adapter layer: kafka.Reader (extractor) and
// kafka.Writer (loader) correctly round-trip a request through Kafka.
func TestKafkaReaderWriter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-reader")

	requests := loadMockData(t)
	request := requests[0]
	payload, err := json.Marshal(request)
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte("test-key"),
		Value: payload,
	}))

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
	assert.Equal(t, []byte("test-key"), raw.Key)
	assert.Equal(t, payload, raw.Value)
	assert.Equal(t, testSourceTopic, raw.Topic)
	require.NotNil(t, raw.Commit, "commit callback should be set")

	require.NoError(t, raw.Commit(ctx))

	transformer := pipeline.NewTransformer(newModel(t), observability.NewMetricsForTesting(), discardLogger())
	event, err := transformer.Transform(ctx, raw)
	require.NoError(t, err)

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	require.NoError(t, writer.LoadBatch(ctx, []domain.OutputEvent{event}))

	sm := readScored(ctx, t, newSinkConsumer(t, broker))
	assert.Equal(t, request.ID, sm.Key)
	assert.Equal(t, request.ID, sm.Result.ID)
	_, err = time.Parse(time.RFC3339, sm.Headers["scored_at"])
	assert.NoError(t, err, "scored_at should be valid RFC3339")

	p, err := strconv.ParseFloat(sm.Headers["probability"], 64)
	require.NoError(t, err)
	assert.Equal(t, sm.Result.Probability, p)

	want, err := newModel(t).Probability(request.Attempt)
	require.NoError(t, err)
	assert.Equal(t, want, sm.Result.Probability)
	require.NotNil(t, sm.Result.Resolved.IsDome)
	require.NotNil(t, sm.Result.Resolved.KickerCode)
}

// TestPipelineEndToEnd wires the full pipeline (Reader → Transformer → Writer)
// with real Kafka and verifies every mock request is scored once.
func TestPipelineEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-pipeline")
	requests := loadMockData(t)
	model := newModel(t)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	msgs := make([]kafkago.Message, 0, len(requests))
	for _, req := range requests {
		payload, err := json.Marshal(req)
		require.NoError(t, err)
		msgs = append(msgs, kafkago.Message{Key: []byte(req.ID), Value: payload})
	}
	require.NoError(t, producer.WriteMessages(ctx, msgs...))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(model, metrics, discardLogger())
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	received := make(map[string]scoredMessage, len(requests))
	for len(received) < len(requests) {
		sm := readScored(ctx, t, consumer)
		received[sm.Key] = sm
	}

	pipelineCancel()
	require.NoError(t, <-errCh)
	assert.True(t, p.Ready())

	indoor := 0
	for _, req := range requests {
		sm, ok := received[req.ID]
		if !assert.True(t, ok, "missing result for %s", req.ID) {
			continue
		}
		var overrides []domain.Attempt
		if req.Overrides != nil {
			overrides = append(overrides, *req.Overrides)
		}
		want, err := model.Probability(req.Attempt, overrides...)
		require.NoError(t, err)
		assert.Equal(t, want, sm.Result.Probability, req.ID)
		assert.GreaterOrEqual(t, sm.Result.Probability, 0.0)
		assert.LessOrEqual(t, sm.Result.Probability, 1.0)

		if *sm.Result.Resolved.IsDome {
			indoor++
			assert.Zero(t, sm.Result.Terms.Temperature, req.ID)
			assert.Zero(t, sm.Result.Terms.Wind, req.ID)
			assert.Zero(t, sm.Result.Terms.Rain, req.ID)
		}
	}
	assert.Positive(t, indoor, "fixture should include indoor venues")
}

// TestPipelineScoringError verifies that unscorable messages (malformed JSON
// and an unknown team) are skipped and the pipeline continues with valid ones.
func TestPipelineScoringError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)

	createTopic(t, broker, testSourceTopic)
	createTopic(t, broker, testSinkTopic)

	cfg := testConfig(broker, "test-poison")

	requests := loadMockData(t)
	validPayload, err := json.Marshal(requests[0])
	require.NoError(t, err)

	producer := &kafkago.Writer{
		Addr:  kafkago.TCP(broker),
		Topic: testSourceTopic,
	}
	t.Cleanup(func() { _ = producer.Close() })

	require.NoError(t, producer.WriteMessages(ctx,
		kafkago.Message{Key: []byte("bad"), Value: []byte("not-json{{{")},
		kafkago.Message{Key: []byte("unknown-team"), Value: []byte(`{"attempt":{"home":"XYZ","temp":40,"wind":0,"yfog":67,"chanceOfRain":0}}`)},
		kafkago.Message{Key: []byte(requests[0].ID), Value: validPayload},
	))

	reader := kafka.NewReader(cfg, discardLogger())
	t.Cleanup(func() { _ = reader.Close() })

	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	transformer := pipeline.NewTransformer(newModel(t), metrics, discardLogger())
	p := pipeline.New(reader, transformer, writer, discardLogger(), metrics, 50)

	pipelineCtx, pipelineCancel := context.WithCancel(ctx)
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(pipelineCtx) }()

	consumer := newSinkConsumer(t, broker)
	sm := readScored(ctx, t, consumer)
	assert.Equal(t, requests[0].ID, sm.Key)

	// Verify no second message arrives (the bad requests were skipped).
	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	_, err = consumer.ReadMessage(readCtx)
	readCancel()
	assert.Error(t, err, "expected no second message on sink topic")

	pipelineCancel()
	require.NoError(t, <-errCh)
}
