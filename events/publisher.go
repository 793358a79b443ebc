package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/logger"
	"github.com/kbukum/transcriptkit/meeting"
)

// Writer is the subset of *kafka.Writer used by Publisher.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher implements meeting.Publisher on Kafka.
type Publisher struct {
	writer  Writer
	topic   string
	retries int
	log     *logger.Logger
	mu      sync.RWMutex
	closed  bool
}

var _ meeting.Publisher = (*Publisher)(nil)

// NewPublisher creates a Kafka-backed publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled {
		return nil, errors.ServiceUnavailable("event publisher").WithDetail("reason", "disabled")
	}

	transport, err := newTransport(&cfg)
	if err != nil {
		return nil, err
	}

	log := logger.Get("events")
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Transport:    transport,
		Balancer:     &kafkago.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:  compression(cfg.Compression),
		WriteTimeout: cfg.WriteTimeout,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			log.Error("writer: "+fmt.Sprintf(msg, args...))
		}),
	}

	log.Info("event publisher initialized", logger.Fields(
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
		"compression", cfg.Compression,
	))
	return NewPublisherWithWriter(w, cfg), nil
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w Writer, cfg Config) *Publisher {
	cfg.ApplyDefaults()
	return &Publisher{
		writer:  w,
		topic:   cfg.Topic,
		retries: cfg.Retries,
		log:     logger.Get("events"),
	}
}

// Publish writes ev, retrying with a linear backoff.
func (p *Publisher) Publish(ctx context.Context, ev meeting.Event) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return errors.PublishFailed(p.topic, fmt.Errorf("publisher is closed"))
	}

	msg, err := encode(ev)
	if err != nil {
		return errors.PublishFailed(p.topic, err)
	}

	var lastErr error
	for attempt := 1; attempt <= p.retries; attempt++ {
		if lastErr = p.writer.WriteMessages(ctx, msg); lastErr == nil {
			p.log.Debug("event published", logger.Fields(
				"event", string(ev.Type),
				logger.FieldMeetingID, ev.MeetingID,
			))
			return nil
		}
		if attempt < p.retries {
			select {
			case <-ctx.Done():
				return errors.PublishFailed(p.topic, ctx.Err())
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
	}
	return errors.PublishFailed(p.topic, lastErr).WithDetail(logger.FieldAttempt, p.retries)
}

func encode(ev meeting.Event) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("marshal event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(ev.MeetingID),
		Value: data,
		Time:  ev.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	}, nil
}

// Close flushes pending messages and shuts the writer down.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.log.Info("event publisher closing")
	return p.writer.Close()
}
