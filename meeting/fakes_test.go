package meeting

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/transcriptkit/engine"
	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/transcript"
)

type memRepo struct {
	mu          sync.Mutex
	meetings    map[string]Meeting
	transcripts map[string]*transcript.Result
}

func newMemRepo() *memRepo {
	return &memRepo{
		meetings:    make(map[string]Meeting),
		transcripts: make(map[string]*transcript.Result),
	}
}

func (r *memRepo) Create(_ context.Context, m *Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[m.ID]; ok {
		return errors.Conflict("duplicate meeting")
	}
	r.meetings[m.ID] = *m
	return nil
}

func (r *memRepo) Get(_ context.Context, id string) (*Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, errors.NotFound("meeting", id)
	}
	return &m, nil
}

func (r *memRepo) Update(_ context.Context, m *Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meetings[m.ID]; !ok {
		return errors.NotFound("meeting", m.ID)
	}
	r.meetings[m.ID] = *m
	return nil
}

func (r *memRepo) List(_ context.Context, status Status, limit int) ([]*Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Meeting
	for _, m := range r.meetings {
		if status == "" || m.Status == status {
			out = append(out, &m)
		}
	}
	slices.SortFunc(out, func(a, b *Meeting) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) SaveTranscript(_ context.Context, id string, res *transcript.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcripts[id] = res
	return nil
}

func (r *memRepo) Transcript(_ context.Context, id string) (*transcript.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.transcripts[id]
	if !ok {
		return nil, errors.NotFound("transcript", id)
	}
	return res, nil
}

func (r *memRepo) status(t *testing.T, id string) Status {
	t.Helper()
	m, err := r.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return m.Status
}

type memCache struct {
	mu    sync.Mutex
	items map[string]*transcript.Result
	gets  int
}

func newMemCache() *memCache { return &memCache{items: make(map[string]*transcript.Result)} }

func (c *memCache) Put(_ context.Context, id string, res *transcript.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = res
	return nil
}

func (c *memCache) Get(_ context.Context, id string) (*transcript.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.items[id], nil
}

func (c *memCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

func (p *recordingPublisher) last() Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type stubTranscriber struct {
	chunks []transcript.TimedText
	err    error
	calls  atomic.Int32
	hook   func(ctx context.Context)
}

func (s *stubTranscriber) Name() string                     { return "stub-asr" }
func (s *stubTranscriber) IsAvailable(context.Context) bool { return true }
func (s *stubTranscriber) Transcribe(ctx context.Context, _ engine.Audio) ([]transcript.TimedText, error) {
	s.calls.Add(1)
	if s.hook != nil {
		s.hook(ctx)
	}
	return s.chunks, s.err
}

type stubDiarizer struct {
	intervals []transcript.SpeakerInterval
	err       error
	calls     atomic.Int32
	mu        sync.Mutex
	opts      engine.DiarizeOptions
}

func (s *stubDiarizer) Name() string                     { return "stub-diar" }
func (s *stubDiarizer) IsAvailable(context.Context) bool { return true }
func (s *stubDiarizer) Diarize(_ context.Context, _ engine.Audio, opts engine.DiarizeOptions) ([]transcript.SpeakerInterval, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.opts = opts
	s.mu.Unlock()
	return s.intervals, s.err
}

func newEngines(t *testing.T, tr engine.Transcriber, d engine.Diarizer) Engines {
	t.Helper()
	ts := engine.NewTranscribers(nil)
	ts.Register("stub", func(map[string]any) (engine.Transcriber, error) { return tr, nil })
	if err := ts.Initialize("stub", nil); err != nil {
		t.Fatalf("init transcriber: %v", err)
	}
	ds := engine.NewDiarizers(nil)
	ds.Register("stub", func(map[string]any) (engine.Diarizer, error) { return d, nil })
	if err := ds.Initialize("stub", nil); err != nil {
		t.Fatalf("init diarizer: %v", err)
	}
	return Engines{
		Transcribers: ts,
		Diarizers:    ds,
		Pool:         engine.NewPool(engine.PoolConfig{Slots: 2, MaxWait: time.Second}),
	}
}
