package meeting

import (
	"context"
	"time"

	"github.com/kbukum/transcriptkit/logger"
	"github.com/kbukum/transcriptkit/transcript"
)

// Service applies lifecycle operations to stored meetings.
type Service struct {
	repo   Repository
	cache  Cache
	events Publisher
	log    *logger.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the transcript cache.
func WithCache(c Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithPublisher sets the event publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service. Without options, transcripts are not cached
// and events are discarded.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		cache:  nopCache{},
		events: nopPublisher{},
		log:    logger.Get("meeting"),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a new recording.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Meeting, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	m := New(req, now)
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.log.WithMeeting(m.ID).Info("meeting created", logger.Fields("title", m.Title))
	s.publish(ctx, NewEvent(EventCreated, m, now))
	return m, nil
}

// Get returns a meeting by ID.
func (s *Service) Get(ctx context.Context, id string) (*Meeting, error) {
	return s.repo.Get(ctx, id)
}

// List returns meetings, newest first.
func (s *Service) List(ctx context.Context, status Status, limit int) ([]*Meeting, error) {
	return s.repo.List(ctx, status, limit)
}

// Pause suspends a recording.
func (s *Service) Pause(ctx context.Context, id string) (*Meeting, error) {
	return s.transition(ctx, id, StatusPaused, nil)
}

// Resume continues a paused recording.
func (s *Service) Resume(ctx context.Context, id string) (*Meeting, error) {
	return s.transition(ctx, id, StatusRecording, nil)
}

// Stop ends the recording and queues it for processing. It also reprocesses
// a meeting that previously failed.
func (s *Service) Stop(ctx context.Context, id string, rec Recording) (*Meeting, error) {
	return s.transition(ctx, id, StatusProcessing, func(m *Meeting) {
		if rec.AudioPath != "" {
			m.AudioPath = rec.AudioPath
		}
		if rec.Duration > 0 {
			m.Duration = rec.Duration
		}
	})
}

// Cancel abandons the meeting. A running Processor discards its result.
func (s *Service) Cancel(ctx context.Context, id string) (*Meeting, error) {
	m, err := s.transition(ctx, id, StatusCancelled, nil)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.WithMeeting(id).Warn("cache invalidation failed", logger.ErrorFields("invalidate", err))
	}
	return m, nil
}

// Transcript returns the stored transcript, preferring the cache.
func (s *Service) Transcript(ctx context.Context, id string) (*transcript.Result, error) {
	log := s.log.WithMeeting(id)
	cached, err := s.cache.Get(ctx, id)
	if err != nil {
		log.Warn("cache read failed", logger.ErrorFields("cache_get", err))
	}
	if cached != nil {
		return cached, nil
	}

	res, err := s.repo.Transcript(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Put(ctx, id, res); err != nil {
		log.Warn("cache write failed", logger.ErrorFields("cache_put", err))
	}
	return res, nil
}

func (s *Service) transition(ctx context.Context, id string, next Status, mutate func(*Meeting)) (*Meeting, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := m.Status
	now := s.now()
	if err := m.Transition(next, now); err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(m)
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	s.log.WithMeeting(id).Info("meeting status changed", logger.Fields(
		"from", string(prev),
		logger.FieldStatus, string(next),
	))
	ev := NewEvent(EventStatusChanged, m, now)
	ev.Previous = prev
	s.publish(ctx, ev)
	return m, nil
}

// publish delivers ev; failures are logged and never fail the caller.
func (s *Service) publish(ctx context.Context, ev Event) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WithMeeting(ev.MeetingID).Warn("event publish failed", logger.MergeWithError(
			logger.Fields("event", string(ev.Type)), err,
		))
	}
}
