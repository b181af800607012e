package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/snowtam-watch/internal/config"
	"github.com/couchcryptid/snowtam-watch/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer used here.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes status records to a Kafka topic, one message per site.
// It implements pipeline.StatusLoader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured status topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// LoadStatus publishes every record of the payload in a single WriteMessages
// call. Messages are keyed by ICAO code so a site's history stays on one partition.
func (w *Writer) LoadStatus(ctx context.Context, payload domain.StatusPayload) error {
	if len(payload.Airports) == 0 {
		return nil
	}

	sites := make([]string, 0, len(payload.Airports))
	for icao := range payload.Airports {
		sites = append(sites, icao)
	}
	slices.Sort(sites)

	msgs := make([]kafkago.Message, len(sites))
	for i, icao := range sites {
		msg, err := serializeToMessage(payload.Airports[icao], payload.GeneratedUTC)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish status records: %w", err)
	}
	w.logger.Debug("published status records", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a StatusRecord into a Kafka message.
func serializeToMessage(rec domain.StatusRecord, generatedUTC string) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize status record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ICAO),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "severity", Value: []byte(rec.Severity)},
			{Key: "hash", Value: []byte(rec.Hash)},
			{Key: "generated_utc", Value: []byte(generatedUTC)},
		},
	}, nil
}
