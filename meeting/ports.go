package meeting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/transcriptkit/transcript"
)

// Repository persists meetings and their transcripts.
type Repository interface {
	// Create stores a new meeting.
	Create(ctx context.Context, m *Meeting) error
	// Get returns the meeting or a NOT_FOUND AppError.
	Get(ctx context.Context, id string) (*Meeting, error)
	// Update overwrites the stored meeting.
	Update(ctx context.Context, m *Meeting) error
	// List returns meetings, newest first. An empty status matches all.
	List(ctx context.Context, status Status, limit int) ([]*Meeting, error)
	// SaveTranscript replaces the stored transcript of a meeting.
	SaveTranscript(ctx context.Context, meetingID string, res *transcript.Result) error
	// Transcript returns the stored transcript or a NOT_FOUND AppError.
	Transcript(ctx context.Context, meetingID string) (*transcript.Result, error)
}

// Cache holds assembled transcripts for fast reads.
type Cache interface {
	Put(ctx context.Context, meetingID string, res *transcript.Result) error
	// Get returns (nil, nil) on a miss.
	Get(ctx context.Context, meetingID string) (*transcript.Result, error)
	Invalidate(ctx context.Context, meetingID string) error
}

// Publisher announces lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// EventType names a lifecycle event.
type EventType string

// Lifecycle events.
const (
	EventCreated         EventType = "meeting.created"
	EventStatusChanged   EventType = "meeting.status_changed"
	EventTranscriptReady EventType = "meeting.transcript_ready"
	EventFailed          EventType = "meeting.failed"
)

// Event is published on every lifecycle change.
type Event struct {
	ID         string              `json:"id"`
	Type       EventType           `json:"type"`
	MeetingID  string              `json:"meeting_id"`
	Status     Status              `json:"status"`
	Previous   Status              `json:"previous,omitempty"`
	Summary    *transcript.Summary `json:"summary,omitempty"`
	Error      string              `json:"error,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// NewEvent builds an event for the meeting's current state.
func NewEvent(typ EventType, m *Meeting, now time.Time) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		MeetingID:  m.ID,
		Status:     m.Status,
		Error:      m.Error,
		OccurredAt: now,
	}
}

type nopCache struct{}

func (nopCache) Put(context.Context, string, *transcript.Result) error { return nil }
func (nopCache) Get(context.Context, string) (*transcript.Result, error) {
	return nil, nil
}
func (nopCache) Invalidate(context.Context, string) error { return nil }

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) error { return nil }
