//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/sf-incident-map/internal/adapter/kafka"
	"github.com/couchcryptid/sf-incident-map/internal/adapter/socrata"
	"github.com/couchcryptid/sf-incident-map/internal/config"
	"github.com/couchcryptid/sf-incident-map/internal/domain"
	"github.com/couchcryptid/sf-incident-map/internal/observability"
	"github.com/couchcryptid/sf-incident-map/internal/pipeline"
)

const testTopic = "test-sf-incidents"

const socrataBody = `[
	{"row_id":"118744907041","incident_id":"1187449","incident_category":"Larceny Theft",
	 "incident_date":"2023-05-01T00:00:00.000","latitude":"37.785788","longitude":"-122.406518",
	 "analysis_neighborhood":"Financial District/South Beach"},
	{"row_id":"118745006244","incident_id":"1187450","incident_category":"Assault",
	 "incident_date":"2023-05-01T00:00:00.000","latitude":"37.759946","longitude":"-122.414835",
	 "analysis_neighborhood":"Mission"},
	{"row_id":"118745171000","incident_id":"1187451","incident_category":"Non-Criminal",
	 "incident_date":"2023-05-02T00:00:00.000"}
]`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("sf-incident-map"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type feedMessage struct {
	Key     string
	Headers map[string]string
	Feature struct {
		ID         string         `json:"id"`
		Properties map[string]any `json:"properties"`
		Geometry   struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	}
}

func readFeed(ctx context.Context, t *testing.T, consumer *kafkago.Reader) feedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from incident topic")

	fm := feedMessage{Key: string(msg.Key), Headers: make(map[string]string, len(msg.Headers))}
	for _, h := range msg.Headers {
		fm.Headers[h.Key] = string(h.Value)
	}
	require.NoError(t, json.Unmarshal(msg.Value, &fm.Feature), "unmarshal feature")
	return fm
}

// TestIncidentFeed runs a query against a fake SODA endpoint and verifies
// that every incident with coordinates lands on the Kafka topic.
func TestIncidentFeed(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	soda := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1000", r.URL.Query().Get("$limit"))
		_, _ = w.Write([]byte(socrataBody))
	}))
	t.Cleanup(soda.Close)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	client := socrata.NewClient(soda.URL, "", 10*time.Second, metrics, discardLogger())
	initial := domain.QueryParams{
		Start: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, 5, 31, 0, 0, 0, 0, time.UTC),
		Limit: 1000,
	}
	p := pipeline.New(client, pipeline.NewTransformer(discardLogger()), nil,
		discardLogger(), metrics, initial, writer)

	snap, err := p.Update(ctx, domain.QueryRequest{})
	require.NoError(t, err)
	require.Len(t, snap.Incidents, 2)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	got := map[string]feedMessage{}
	for range 2 {
		fm := readFeed(ctx, t, consumer)
		got[fm.Key] = fm
	}

	theft, ok := got["118744907041"]
	require.True(t, ok)
	assert.Equal(t, "Larceny Theft", theft.Headers["incident_category"])
	_, err = time.Parse(time.RFC3339, theft.Headers["fetched_at"])
	assert.NoError(t, err, "fetched_at should be valid RFC3339")
	assert.Equal(t, "118744907041", theft.Feature.ID)
	assert.Equal(t, []float64{-122.406518, 37.785788}, theft.Feature.Geometry.Coordinates)
	assert.Equal(t, "Financial District/South Beach", theft.Feature.Properties["analysis_neighborhood"])

	assault, ok := got["118745006244"]
	require.True(t, ok)
	assert.Equal(t, "Assault", assault.Headers["incident_category"])
	assert.Equal(t, "Mission", assault.Feature.Properties["analysis_neighborhood"])
}

// TestIncidentFeed_ProviderFailure verifies a failed query publishes nothing.
func TestIncidentFeed_ProviderFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	soda := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":true,"message":"Query timeout"}`))
	}))
	t.Cleanup(soda.Close)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	client := socrata.NewClient(soda.URL, "", 10*time.Second, metrics, discardLogger())
	p := pipeline.New(client, pipeline.NewTransformer(discardLogger()), nil,
		discardLogger(), metrics, domain.DefaultQueryParams(24*time.Hour, 1000), writer)

	_, err := p.Update(ctx, domain.QueryRequest{})
	require.ErrorIs(t, err, domain.ErrResponseNotList)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 5*time.Second)
	defer readCancel()
	_, err = consumer.ReadMessage(readCtx)
	require.Error(t, err, "topic should be empty")
}
