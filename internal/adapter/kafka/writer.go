// Package kafka publishes incident snapshots to a Kafka topic for downstream
// consumers.
package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/sf-incident-map/internal/config"
	"github.com/couchcryptid/sf-incident-map/internal/domain"
)

const (
	headerCategory  = "incident_category"
	headerFetchedAt = "fetched_at"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer produces one message per incident of every new snapshot.
// It implements pipeline.Publisher.
type Writer struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured incident topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &Writer{writer: w, topic: cfg.KafkaTopic, logger: logger}
}

// Publish writes every point of the snapshot as a GeoJSON Feature keyed by
// row id, so a compacted topic keeps the latest version of each report.
func (w *Writer) Publish(ctx context.Context, event domain.SnapshotEvent) error {
	if len(event.Points) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(event.Points))
	for i := range event.Points {
		msg, err := serializeToMessage(event.Points[i], event.FetchedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d incidents to %s: %w", len(msgs), w.topic, err)
	}
	w.logger.Info("published incident snapshot", "topic", w.topic, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one geo point into a Kafka message.
func serializeToMessage(p domain.GeoPoint, fetchedAt time.Time) (kafkago.Message, error) {
	data, err := p.Feature().MarshalJSON()
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident %s: %w", p.Incident.RowID, err)
	}
	return kafkago.Message{
		Key:   []byte(p.Incident.RowID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: headerCategory, Value: []byte(p.Incident.Category)},
			{Key: headerFetchedAt, Value: []byte(fetchedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
