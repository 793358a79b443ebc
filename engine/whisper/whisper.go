// Package whisper adapts a faster-whisper HTTP sidecar to engine.Transcriber.
//
// The recording is decoded in overlapping windows. For each window the
// sidecar receives the whole file plus the window offset and duration, and
// answers either with decoded text carrying <|t|> timestamp tokens or with
// pre-split segments. Both are converted to chunks in recording time.
package whisper

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/transcriptkit/engine"
	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/transcript"
)

const (
	// EngineName is the registered name for the Whisper engine.
	EngineName = "whisper"

	defaultURL     = "http://localhost:8387"
	defaultModel   = "base"
	defaultTimeout = 120 * time.Second
)

// Config holds configuration for the Whisper engine.
type Config struct {
	URL           string        `json:"url" yaml:"url" mapstructure:"url"`
	Model         string        `json:"model" yaml:"model" mapstructure:"model"`
	Language      string        `json:"language,omitempty" yaml:"language" mapstructure:"language"`
	Device        string        `json:"device,omitempty" yaml:"device" mapstructure:"device"`
	ComputeType   string        `json:"compute_type,omitempty" yaml:"compute_type" mapstructure:"compute_type"`
	Timeout       time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	WindowSeconds float64       `json:"window_seconds" yaml:"window_seconds" mapstructure:"window_seconds"`
	StrideSeconds float64       `json:"stride_seconds" yaml:"stride_seconds" mapstructure:"stride_seconds"`
}

// Option configures a Provider.
type Option func(*Provider)

// WithParseConfig sets the thresholds used when splitting decoded text.
func WithParseConfig(cfg transcript.Config) Option {
	return func(p *Provider) {
		cfg.ApplyDefaults()
		p.parse = cfg
	}
}

// Provider implements engine.Transcriber using a faster-whisper HTTP sidecar.
type Provider struct {
	cfg     Config
	sidecar *engine.Sidecar
	parse   transcript.Config
}

// NewProvider creates a new Whisper engine.
func NewProvider(cfg Config, opts ...Option) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.WindowSeconds == 0 {
		cfg.WindowSeconds = engine.DefaultConfig().WindowSeconds
	}
	if cfg.StrideSeconds == 0 {
		cfg.StrideSeconds = engine.DefaultConfig().StrideSeconds
	}
	p := &Provider{
		cfg:     cfg,
		sidecar: engine.NewSidecar(EngineName, strings.TrimRight(cfg.URL, "/"), cfg.Timeout),
		parse:   transcript.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Factory returns an engine.Factory that creates Whisper engines from a
// generic config map.
func Factory(opts ...Option) engine.Factory[engine.Transcriber] {
	return func(raw map[string]any) (engine.Transcriber, error) {
		var cfg Config
		if err := engine.DecodeConfig(raw, &cfg); err != nil {
			return nil, err
		}
		return NewProvider(cfg, opts...), nil
	}
}

// Name returns the engine name.
func (p *Provider) Name() string { return EngineName }

// IsAvailable checks if the Whisper sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.sidecar.Healthy(ctx)
}

// Transcribe decodes the recording window by window. A recording of
// unknown duration is sent as a single request.
func (p *Provider) Transcribe(ctx context.Context, audio engine.Audio) ([]transcript.TimedText, error) {
	data, err := os.ReadFile(audio.Path)
	if err != nil {
		return nil, errors.NotFound("audio file", audio.Path).WithCause(err)
	}

	lang := p.cfg.Language
	if audio.Language != "" {
		lang = audio.Language
	}
	req := request{name: filepath.Base(audio.Path), data: data, lang: lang}

	if audio.Duration <= 0 {
		return p.decode(ctx, req, engine.Window{}, false)
	}

	var out []transcript.TimedText
	for _, w := range engine.Windows(audio.Duration, p.cfg.WindowSeconds, p.cfg.StrideSeconds) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		chunks, err := p.decode(ctx, req, w, true)
		if err != nil {
			return nil, err
		}
		out = append(out, chunks...)
	}
	return out, nil
}

type request struct {
	name string
	data []byte
	lang string
}

func (p *Provider) decode(ctx context.Context, req request, w engine.Window, bounded bool) ([]transcript.TimedText, error) {
	fields := map[string]string{
		"model":             p.cfg.Model,
		"return_timestamps": "true",
	}
	if req.lang != "" {
		fields["language"] = req.lang
	}
	if p.cfg.Device != "" {
		fields["device"] = p.cfg.Device
	}
	if p.cfg.ComputeType != "" {
		fields["compute_type"] = p.cfg.ComputeType
	}
	if bounded {
		fields["offset"] = strconv.FormatFloat(w.Start, 'f', 3, 64)
		fields["duration"] = strconv.FormatFloat(w.Duration(), 'f', 3, 64)
	}

	var resp whisperResponse
	form := engine.Form{Fields: fields, FileName: req.name, Audio: req.data}
	if err := p.sidecar.Post(ctx, "/transcribe", form, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, errors.EngineFailure(EngineName, stderrors.New(resp.Error))
	}
	return p.toChunks(&resp, w.Start), nil
}

// --- internal Whisper API response types ---

type whisperResponse struct {
	Text     string           `json:"text"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Error    string           `json:"error,omitempty"`
}

type whisperSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// toChunks shifts window-relative times by offset. Text is parsed for
// timestamp tokens only when the sidecar sent no segments.
func (p *Provider) toChunks(resp *whisperResponse, offset float64) []transcript.TimedText {
	if len(resp.Segments) == 0 {
		return transcript.ParseWindow(resp.Text, offset, p.parse)
	}
	chunks := make([]transcript.TimedText, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		chunks = append(chunks, transcript.TimedText{
			Start: offset + seg.Start,
			End:   offset + seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return chunks
}
