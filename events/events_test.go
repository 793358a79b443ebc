package events

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/meeting"
	"github.com/kbukum/transcriptkit/transcript"
)

type fakeWriter struct {
	mu       sync.Mutex
	msgs     []kafkago.Message
	failures int
	calls    int
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	if w.failures > 0 {
		w.failures--
		return stderrors.New("leader not available")
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func sampleEvent() meeting.Event {
	return meeting.Event{
		ID:         "ev-1",
		Type:       meeting.EventTranscriptReady,
		MeetingID:  "m-42",
		Status:     meeting.StatusCompleted,
		Previous:   meeting.StatusProcessing,
		Summary:    &transcript.Summary{Segments: 7, Speakers: 2},
		OccurredAt: time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestPublishEncodesEvent(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisherWithWriter(w, Config{Topic: "meetings"})

	if err := p.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "m-42" {
		t.Errorf("expected key m-42, got %q", msg.Key)
	}
	if msg.Topic != "" {
		t.Error("topic belongs to the writer, not the message")
	}
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers["event-type"] != "meeting.transcript_ready" || headers["content-type"] != "application/json" {
		t.Errorf("unexpected headers %v", headers)
	}

	var decoded map[string]any
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["status"] != "completed" || decoded["previous"] != "processing" {
		t.Errorf("unexpected payload %v", decoded)
	}
	summary, _ := decoded["summary"].(map[string]any)
	if summary["segments"] != float64(7) {
		t.Errorf("unexpected summary %v", summary)
	}
}

func TestPublishRetries(t *testing.T) {
	w := &fakeWriter{failures: 1}
	p := NewPublisherWithWriter(w, Config{Retries: 3})

	if err := p.Publish(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if w.calls != 2 {
		t.Errorf("expected 2 calls, got %d", w.calls)
	}
}

func TestPublishGivesUp(t *testing.T) {
	w := &fakeWriter{failures: 10}
	p := NewPublisherWithWriter(w, Config{Topic: "meetings", Retries: 2})

	err := p.Publish(context.Background(), sampleEvent())
	if !errors.IsCode(err, errors.ErrCodePublishFailed) {
		t.Fatalf("expected PUBLISH_FAILED, got %v", err)
	}
	appErr, _ := errors.AsAppError(err)
	if appErr.Details["topic"] != "meetings" {
		t.Errorf("expected topic detail, got %v", appErr.Details)
	}
	if w.calls != 2 {
		t.Errorf("expected 2 calls, got %d", w.calls)
	}
}

func TestPublishCancelledDuringBackoff(t *testing.T) {
	w := &fakeWriter{failures: 10}
	p := NewPublisherWithWriter(w, Config{Retries: 5})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := p.Publish(ctx, sampleEvent())
	if !errors.IsCode(err, errors.ErrCodePublishFailed) || !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled publish failure, got %v", err)
	}
}

func TestPublishAfterClose(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisherWithWriter(w, Config{})
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal("second close must be a no-op")
	}
	if !w.closed {
		t.Error("expected writer to be closed")
	}
	if err := p.Publish(context.Background(), sampleEvent()); !errors.IsCode(err, errors.ErrCodePublishFailed) {
		t.Errorf("expected PUBLISH_FAILED after close, got %v", err)
	}
}

func TestPublisherWithService(t *testing.T) {
	w := &fakeWriter{}
	p := NewPublisherWithWriter(w, Config{})
	repo := &stubRepo{}
	svc := meeting.NewService(repo, meeting.WithPublisher(p))

	if _, err := svc.Create(context.Background(), meeting.CreateRequest{Title: "demo"}); err != nil {
		t.Fatal(err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected created event, got %d messages", len(w.msgs))
	}
	var ev meeting.Event
	if err := json.Unmarshal(w.msgs[0].Value, &ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != meeting.EventCreated || ev.Status != meeting.StatusRecording {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{Enabled: true}
	cfg.ApplyDefaults()
	if cfg.Topic != "meeting-events" || cfg.Compression != "snappy" || cfg.RequiredAcks != -1 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad compression", func(c *Config) { c.Compression = "brotli" }},
		{"sasl without user", func(c *Config) { c.EnableSASL = true; c.SASLMechanism = "PLAIN" }},
		{"bad mechanism", func(c *Config) { c.SASLMechanism = "GSSAPI" }},
		{"cert without key", func(c *Config) { c.TLSCertFile = "/tmp/cert.pem" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Config{Enabled: true}
			c.ApplyDefaults()
			tc.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := (&Config{Compression: "brotli"}).Validate(); err != nil {
		t.Errorf("disabled config must validate, got %v", err)
	}
}

func TestNewPublisherDisabled(t *testing.T) {
	if _, err := NewPublisher(Config{}); err == nil {
		t.Error("expected error for disabled publisher")
	}
}

func TestNewPublisherBuildsWriter(t *testing.T) {
	p, err := NewPublisher(Config{Enabled: true, Brokers: []string{"127.0.0.1:1"}, Topic: "t"})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestSASLMechanism(t *testing.T) {
	tests := []struct {
		mech    string
		wantErr bool
	}{
		{"PLAIN", false},
		{"SCRAM-SHA-256", false},
		{"SCRAM-SHA-512", false},
		{"OAUTHBEARER", true},
	}
	for _, tc := range tests {
		t.Run(tc.mech, func(t *testing.T) {
			m, err := saslMechanism(&Config{SASLMechanism: tc.mech, Username: "u", Password: "p"})
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err == nil && m.Name() != tc.mech {
				t.Errorf("mechanism name %q, want %q", m.Name(), tc.mech)
			}
		})
	}
}

func TestTransportTLS(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "ca.pem")
	if err := os.WriteFile(bad, []byte("not a cert"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := newTransport(&Config{EnableTLS: true, TLSCAFile: bad}); err == nil {
		t.Error("expected error for an invalid CA file")
	}
	if _, err := newTransport(&Config{EnableTLS: true, TLSCAFile: filepath.Join(dir, "missing.pem")}); err == nil {
		t.Error("expected error for a missing CA file")
	}
	tr, err := newTransport(&Config{EnableTLS: true, TLSSkipVerify: true})
	if err != nil {
		t.Fatal(err)
	}
	if tr.TLS == nil || !tr.TLS.InsecureSkipVerify {
		t.Error("expected TLS config with skip verify")
	}
}

func TestCompression(t *testing.T) {
	tests := map[string]kafkago.Compression{
		"gzip":   kafkago.Gzip,
		"lz4":    kafkago.Lz4,
		"zstd":   kafkago.Zstd,
		"snappy": kafkago.Snappy,
		"none":   0,
		"":       kafkago.Snappy,
	}
	for name, want := range tests {
		if got := compression(name); got != want {
			t.Errorf("compression(%q) = %v, want %v", name, got, want)
		}
	}
}

type stubRepo struct {
	meeting.Repository
	created *meeting.Meeting
}

func (r *stubRepo) Create(_ context.Context, m *meeting.Meeting) error {
	r.created = m
	return nil
}
