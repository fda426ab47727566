package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/sf-incident-map/internal/domain"
)

type recordingWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (r *recordingWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	r.msgs = append(r.msgs, msgs...)
	return r.err
}

func (r *recordingWriter) Close() error {
	r.closed = true
	return nil
}

func testPoint(rowID, category string) domain.GeoPoint {
	return domain.NewGeoPoint(domain.Incident{
		RowID:     rowID,
		Category:  category,
		Latitude:  37.7858,
		Longitude: -122.4065,
	})
}

func testWriter(rw *recordingWriter) *Writer {
	return &Writer{writer: rw, topic: "sf-incidents", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSerializeToMessage(t *testing.T) {
	fetchedAt := time.Date(2023, 6, 1, 12, 30, 0, 0, time.UTC)

	msg, err := serializeToMessage(testPoint("123456", "Robbery"), fetchedAt)
	require.NoError(t, err)

	assert.Equal(t, []byte("123456"), msg.Key)

	var feature struct {
		Type     string `json:"type"`
		ID       string `json:"id"`
		Geometry struct {
			Type        string    `json:"type"`
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &feature))
	assert.Equal(t, "Feature", feature.Type)
	assert.Equal(t, "123456", feature.ID)
	assert.Equal(t, "Point", feature.Geometry.Type)
	assert.Equal(t, []float64{-122.4065, 37.7858}, feature.Geometry.Coordinates)
	assert.Equal(t, "Robbery", feature.Properties["incident_category"])

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, headerCategory, msg.Headers[0].Key)
	assert.Equal(t, []byte("Robbery"), msg.Headers[0].Value)
	assert.Equal(t, headerFetchedAt, msg.Headers[1].Key)
	assert.Equal(t, []byte("2023-06-01T12:30:00Z"), msg.Headers[1].Value)
}

func TestWriter_Publish(t *testing.T) {
	rw := &recordingWriter{}
	w := testWriter(rw)

	err := w.Publish(context.Background(), domain.SnapshotEvent{
		FetchedAt: time.Now(),
		Points:    []domain.GeoPoint{testPoint("1", "Assault"), testPoint("2", "Arson")},
	})
	require.NoError(t, err)
	require.Len(t, rw.msgs, 2)
	assert.Equal(t, []byte("1"), rw.msgs[0].Key)
	assert.Equal(t, []byte("2"), rw.msgs[1].Key)
}

func TestWriter_Publish_Empty(t *testing.T) {
	rw := &recordingWriter{}
	require.NoError(t, testWriter(rw).Publish(context.Background(), domain.SnapshotEvent{}))
	assert.Empty(t, rw.msgs)
}

func TestWriter_Publish_Error(t *testing.T) {
	rw := &recordingWriter{err: errors.New("leader not available")}
	err := testWriter(rw).Publish(context.Background(), domain.SnapshotEvent{
		Points: []domain.GeoPoint{testPoint("1", "Assault")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sf-incidents")
}

func TestWriter_Close(t *testing.T) {
	rw := &recordingWriter{}
	require.NoError(t, testWriter(rw).Close())
	assert.True(t, rw.closed)
}
