package meeting

import (
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/transcriptkit/engine"
	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/validation"
)

// Status is the lifecycle state of a meeting.
type Status string

// Meeting statuses.
const (
	StatusRecording  Status = "recording"
	StatusPaused     Status = "paused"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
	StatusCancelled  Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusRecording:  {StatusPaused, StatusProcessing, StatusCancelled},
	StatusPaused:     {StatusRecording, StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusError, StatusCancelled},
	StatusError:      {StatusProcessing},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusRecording, StatusPaused, StatusProcessing, StatusCompleted, StatusError, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a meeting in status s may move to next.
func (s Status) CanTransition(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// Meeting is one recorded session and its processing state.
type Meeting struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Language        string     `json:"language,omitempty"`
	Status          Status     `json:"status"`
	AudioPath       string     `json:"audio_path,omitempty"`
	Duration        float64    `json:"duration,omitempty"`
	Profile         string     `json:"diarization_profile,omitempty"`
	MinSpeakers     int        `json:"min_speakers,omitempty"`
	MaxSpeakers     int        `json:"max_speakers,omitempty"`
	SkipDiarization bool       `json:"skip_diarization"`
	Error           string     `json:"error,omitempty"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateRequest describes a new recording.
type CreateRequest struct {
	Title           string  `json:"title" mapstructure:"title" validate:"max=255"`
	Language        string  `json:"language" mapstructure:"language" validate:"omitempty,min=2,max=8"`
	AudioPath       string  `json:"audio_path" mapstructure:"audio_path"`
	Duration        float64 `json:"duration" mapstructure:"duration" validate:"gte=0"`
	Profile         string  `json:"diarization_profile" mapstructure:"diarization_profile" validate:"omitempty,oneof=auto high_quality podcast_interview noisy_meeting aggressive"`
	MinSpeakers     int     `json:"min_speakers" mapstructure:"min_speakers" validate:"gte=0"`
	MaxSpeakers     int     `json:"max_speakers" mapstructure:"max_speakers" validate:"gte=0"`
	SkipDiarization bool    `json:"skip_diarization" mapstructure:"skip_diarization"`
}

// Validate checks the request.
func (r *CreateRequest) Validate() error {
	if err := validation.Validate(r); err != nil {
		return err
	}
	return validation.New().
		Check(r.MaxSpeakers == 0 || r.MaxSpeakers >= r.MinSpeakers, "max_speakers", "must not be less than min_speakers").
		Err()
}

// Recording carries the finalized audio handed over when a meeting stops.
// Zero fields keep what the meeting already has.
type Recording struct {
	AudioPath string  `json:"audio_path"`
	Duration  float64 `json:"duration"`
}

// New creates a meeting in the recording state.
func New(req CreateRequest, now time.Time) *Meeting {
	title := req.Title
	if title == "" {
		title = "Meeting " + now.Format("2006-01-02 15:04")
	}
	return &Meeting{
		ID:              uuid.NewString(),
		Title:           title,
		Language:        req.Language,
		Status:          StatusRecording,
		AudioPath:       req.AudioPath,
		Duration:        req.Duration,
		Profile:         req.Profile,
		MinSpeakers:     req.MinSpeakers,
		MaxSpeakers:     req.MaxSpeakers,
		SkipDiarization: req.SkipDiarization,
		StartedAt:       now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Transition moves the meeting to next, or returns a CONFLICT AppError.
// Leaving the recording phase stamps EndedAt once.
func (m *Meeting) Transition(next Status, now time.Time) error {
	if !m.Status.CanTransition(next) {
		return errors.InvalidTransition(string(m.Status), string(next))
	}
	if m.EndedAt == nil && (next == StatusProcessing || next == StatusCancelled) {
		ended := now
		m.EndedAt = &ended
	}
	if next != StatusError {
		m.Error = ""
	}
	m.Status = next
	m.UpdatedAt = now
	return nil
}

// Fail moves a processing meeting to the error state, keeping the reason.
func (m *Meeting) Fail(reason error, now time.Time) error {
	if err := m.Transition(StatusError, now); err != nil {
		return err
	}
	if reason != nil {
		m.Error = reason.Error()
	}
	return nil
}

// Audio describes the meeting's recording for the inference engines.
func (m *Meeting) Audio() engine.Audio {
	return engine.Audio{Path: m.AudioPath, Duration: m.Duration, Language: m.Language}
}

// DiarizeOptions returns the diarization hints stored on the meeting.
func (m *Meeting) DiarizeOptions() engine.DiarizeOptions {
	return engine.DiarizeOptions{
		Profile:     m.Profile,
		MinSpeakers: m.MinSpeakers,
		MaxSpeakers: m.MaxSpeakers,
	}
}
