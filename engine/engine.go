package engine

import (
	"context"

	"github.com/kbukum/transcriptkit/transcript"
)

// Engine is the base interface every inference engine implements.
type Engine interface {
	// Name returns the engine's unique name.
	Name() string
	// IsAvailable checks if the engine is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// Factory creates an engine instance from configuration.
type Factory[T Engine] func(cfg map[string]any) (T, error)

// Audio describes a preprocessed recording handed to an engine.
type Audio struct {
	// Path is the location of the audio file on local disk.
	Path string `json:"path"`
	// Duration is the recording length in seconds. Zero means unknown,
	// in which case the whole file is decoded in one request.
	Duration float64 `json:"duration,omitempty"`
	// Language is the expected spoken language (e.g. "tr", "en").
	Language string `json:"language,omitempty"`
}

// Transcriber turns audio into timed text chunks.
type Transcriber interface {
	Engine

	// Transcribe decodes the audio and returns timed chunks in absolute
	// recording time. Chunks from neighbouring windows may overlap.
	Transcribe(ctx context.Context, audio Audio) ([]transcript.TimedText, error)
}

// Diarization profiles understood by the diarization sidecar.
const (
	ProfileAuto             = "auto"
	ProfileHighQuality      = "high_quality"
	ProfilePodcastInterview = "podcast_interview"
	ProfileNoisyMeeting     = "noisy_meeting"
	ProfileAggressive       = "aggressive"
)

// Profiles lists every accepted diarization profile.
var Profiles = []string{ProfileAuto, ProfileHighQuality, ProfilePodcastInterview, ProfileNoisyMeeting, ProfileAggressive}

// DiarizeOptions tunes a single diarization call.
type DiarizeOptions struct {
	Profile     string `json:"profile,omitempty" mapstructure:"profile" validate:"omitempty,oneof=auto high_quality podcast_interview noisy_meeting aggressive"`
	NumSpeakers int    `json:"num_speakers,omitempty" mapstructure:"num_speakers" validate:"gte=0"`
	MinSpeakers int    `json:"min_speakers,omitempty" mapstructure:"min_speakers" validate:"gte=0"`
	MaxSpeakers int    `json:"max_speakers,omitempty" mapstructure:"max_speakers" validate:"gte=0"`
}

// Diarizer turns audio into raw speaker intervals.
type Diarizer interface {
	Engine

	// Diarize returns unsmoothed speaker intervals in recording time.
	Diarize(ctx context.Context, audio Audio, opts DiarizeOptions) ([]transcript.SpeakerInterval, error)
}
