package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// batchSize caps the number of messages per WriteMessages call.
const batchSize = 500

// Writer publishes joined climate records to a Kafka topic.
// It implements pipeline.Exporter.
type Writer struct {
	writer *kafkago.Writer
	runID  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for topic. runID is attached to every
// message as a header.
func NewWriter(brokers []string, topic, runID string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, runID: runID, logger: logger}
}

// Name identifies the exporter in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Export serializes and publishes records keyed by station, so every row of a
// station lands on the same partition in table order.
func (w *Writer) Export(ctx context.Context, records []domain.JoinedRecord) error {
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		msgs := make([]kafkago.Message, 0, end-start)
		for _, r := range records[start:end] {
			msg, err := serializeToMessage(r, w.runID)
			if err != nil {
				return err
			}
			msgs = append(msgs, msg)
		}
		if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("publish records %d-%d: %w", start, end, err)
		}
	}
	w.logger.Info("records published", "topic", w.writer.Topic, "count", len(records))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a JoinedRecord into a Kafka message.
func serializeToMessage(r domain.JoinedRecord, runID string) (kafkago.Message, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize climate record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(r.Station),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "variable", Value: []byte(r.Variable)},
			{Key: "run_id", Value: []byte(runID)},
		},
	}, nil
}
