// Package kafka publishes converted dictionary records to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/heartmarshall/pinyin-dict/internal/config"
	"github.com/heartmarshall/pinyin-dict/internal/domain"
	"github.com/heartmarshall/pinyin-dict/pkg/ctxutil"
)

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Event is the JSON payload of one published record.
type Event struct {
	ID        string   `json:"id"`
	RunID     string   `json:"run_id"`
	Line      int      `json:"line"`
	Key       string   `json:"key"`
	Entry     string   `json:"entry"`
	Syllables []string `json:"syllables"`
	Pinyin    string   `json:"pinyin"`
	Weight    int      `json:"weight"`
	Mode      string   `json:"mode"`
	Segmented bool     `json:"segmented"`
	Fallback  bool     `json:"fallback"`
}

// Publisher writes one message per record, keyed by the pinyin key so all
// entries of a key land in the same partition.
type Publisher struct {
	log     *slog.Logger
	writer  messageWriter
	topic   string
	enabled bool
}

// New creates a Publisher. When Kafka is disabled it runs in log-only mode.
func New(log *slog.Logger, cfg config.KafkaConfig) *Publisher {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		log.Info("kafka disabled, using log-only mode")
		return &Publisher{log: log, topic: cfg.Topic}
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}

	log.Info("kafka publisher initialized",
		slog.Any("brokers", cfg.Brokers),
		slog.String("topic", cfg.Topic),
	)

	return newWithWriter(log, writer, cfg.Topic)
}

func newWithWriter(log *slog.Logger, w messageWriter, topic string) *Publisher {
	return &Publisher{log: log, writer: w, topic: topic, enabled: true}
}

// Name identifies the sink in logs and metrics.
func (p *Publisher) Name() string { return "kafka" }

// Write publishes records in one WriteMessages call.
func (p *Publisher) Write(ctx context.Context, records []domain.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	source := []byte(ctxutil.SourceFromCtx(ctx))
	msgs := make([]kafka.Message, 0, len(records))
	for _, r := range records {
		payload, err := json.Marshal(toEvent(r))
		if err != nil {
			return 0, fmt.Errorf("marshal event %q: %w", r.Entry, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(r.Key),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "mode", Value: []byte(r.Mode)},
				{Key: "source", Value: source},
			},
		})
	}

	if !p.enabled {
		p.log.Debug("kafka disabled, dropping events",
			slog.String("topic", p.topic),
			slog.Int("count", len(msgs)),
		)
		return 0, nil
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return 0, fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	return len(msgs), nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

func toEvent(r domain.Record) Event {
	syllables := r.Syllables
	if !r.Segmented || syllables == nil {
		syllables = []string{}
	}
	return Event{
		ID:        r.ID.String(),
		RunID:     r.RunID.String(),
		Line:      r.Line,
		Key:       r.Key,
		Entry:     r.Entry,
		Syllables: syllables,
		Pinyin:    r.Pinyin(),
		Weight:    r.Weight,
		Mode:      string(r.Mode),
		Segmented: r.Segmented,
		Fallback:  r.Fallback,
	}
}
