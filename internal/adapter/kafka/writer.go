package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/metar-archive-etl/internal/config"
	"github.com/couchcryptid/metar-archive-etl/internal/domain"
	"github.com/couchcryptid/metar-archive-etl/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes every report of a saved month as one message.
// It implements pipeline.Loader.
type Writer struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, topic: cfg.KafkaTopic, logger: logger}
}

// ReportMessage is the JSON value of a published report.
type ReportMessage struct {
	Station    string            `json:"station"`
	ReportType domain.ReportType `json:"report_type"`
	Period     string            `json:"period"`
	Timestamp  string            `json:"timestamp"`
	Text       string            `json:"text"`
}

// Load publishes the reports of a month in a single WriteMessages call and
// returns the topic as the location.
func (w *Writer) Load(ctx context.Context, a pipeline.Artifact) (string, error) {
	msgs, err := buildMessages(a)
	if err != nil {
		return "", err
	}
	if len(msgs) == 0 {
		return "", nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return "", fmt.Errorf("publish %s: %w", a.Unit.Key(), err)
	}

	w.logger.Debug("reports published", "unit", a.Unit.Key(), "topic", w.topic, "messages", len(msgs))
	return "kafka:" + w.topic, nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func buildMessages(a pipeline.Artifact) ([]kafkago.Message, error) {
	var msgs []kafkago.Message
	for _, line := range strings.Split(a.Text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		msg, err := serializeToMessage(a.Unit, line)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// serializeToMessage marshals one canonical report line into a Kafka message
// keyed by station and issue time.
func serializeToMessage(unit domain.FetchUnit, text string) (kafkago.Message, error) {
	period := unit.Year + "-" + unit.Month
	ts := domain.ReportTimestamp(text)
	data, err := json.Marshal(ReportMessage{
		Station:    unit.Station,
		ReportType: unit.ReportType,
		Period:     period,
		Timestamp:  ts,
		Text:       text,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(unit.Station + "-" + ts),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "report_type", Value: []byte(unit.ReportType)},
			{Key: "station", Value: []byte(unit.Station)},
			{Key: "period", Value: []byte(period)},
		},
	}, nil
}
