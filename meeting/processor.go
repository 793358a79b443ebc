package meeting

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/transcriptkit/engine"
	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/logger"
	"github.com/kbukum/transcriptkit/telemetry"
	"github.com/kbukum/transcriptkit/transcript"
)

// Engines groups the inference collaborators of a Processor.
type Engines struct {
	Transcribers *engine.Manager[engine.Transcriber]
	Diarizers    *engine.Manager[engine.Diarizer]
	// Pool bounds concurrent engine calls. Nil means unbounded.
	Pool *engine.Pool
}

// ProcessorConfig tunes processing.
type ProcessorConfig struct {
	Assembly transcript.Config
	Retry    engine.RetryConfig
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithMetrics records processing metrics.
func WithMetrics(m *telemetry.Metrics) ProcessorOption {
	return func(p *Processor) { p.metrics = m }
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) ProcessorOption {
	return func(p *Processor) { p.tracer = t }
}

// Processor turns a stopped meeting into a stored transcript.
type Processor struct {
	service  *Service
	engines  Engines
	assembly transcript.Config
	retry    engine.RetryConfig
	metrics  *telemetry.Metrics
	tracer   trace.Tracer
	log      *logger.Logger
}

// NewProcessor creates a Processor operating on meetings managed by svc.
func NewProcessor(svc *Service, engines Engines, cfg ProcessorConfig, opts ...ProcessorOption) *Processor {
	cfg.Assembly.ApplyDefaults()
	cfg.Retry.ApplyDefaults()
	p := &Processor{
		service:  svc,
		engines:  engines,
		assembly: cfg.Assembly,
		retry:    cfg.Retry,
		tracer:   telemetry.Tracer(),
		log:      logger.Get("processor"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs transcription and diarization for a meeting in the
// processing state, assembles the transcript, stores it and completes the
// meeting. On failure the meeting moves to error and the error is returned.
// If the meeting is cancelled while engines run, the result is discarded.
func (p *Processor) Process(ctx context.Context, id string) (*transcript.Result, error) {
	started := time.Now()
	ctx, span := p.tracer.Start(ctx, "meeting.process", trace.WithAttributes(
		attribute.String(telemetry.AttrMeetingID, id),
	))
	defer span.End()
	log := p.log.WithContext(ctx).WithMeeting(id)

	m, err := p.service.Get(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if m.Status != StatusProcessing {
		err := errors.Conflict(fmt.Sprintf("Meeting %s is %s, not %s.", id, m.Status, StatusProcessing))
		telemetry.RecordError(span, err)
		return nil, err
	}

	log.Info("processing meeting", logger.Fields(
		"audio", m.AudioPath,
		"skip_diarization", m.SkipDiarization,
	))

	res, err := p.run(ctx, m)
	if err != nil {
		telemetry.RecordError(span, err)
		p.fail(ctx, id, err)
		p.recordProcess(ctx, StatusError, started)
		return nil, err
	}

	if err := p.complete(ctx, id, res); err != nil {
		telemetry.RecordError(span, err)
		if !errors.IsCode(err, errors.ErrCodeCancelled) {
			p.fail(ctx, id, err)
			p.recordProcess(ctx, StatusError, started)
		} else {
			p.recordProcess(ctx, StatusCancelled, started)
		}
		return nil, err
	}

	summary := res.Summary()
	span.SetAttributes(
		attribute.Int(telemetry.AttrSegments, summary.Segments),
		attribute.Int(telemetry.AttrSpeakers, summary.Speakers),
	)
	log.Info("meeting processed", logger.Fields(
		"segments", summary.Segments,
		"speakers", summary.Speakers,
		"overlap_regions", summary.OverlapRegions,
		"overlapped_segments", summary.OverlappedSegments,
		"speech_seconds", summary.SpeechSeconds,
		logger.FieldDropped, summary.Dropped,
		logger.FieldDuration, time.Since(started).Milliseconds(),
	))
	p.logStages(log, res.Stats)
	if p.metrics != nil {
		p.metrics.RecordResult(ctx, res)
	}
	p.recordProcess(ctx, StatusCompleted, started)
	return res, nil
}

func (p *Processor) run(ctx context.Context, m *Meeting) (*transcript.Result, error) {
	if m.AudioPath == "" {
		return nil, errors.InvalidInput("audio_path", "meeting has no recording")
	}
	in, err := p.infer(ctx, m)
	if err != nil {
		return nil, err
	}
	return transcript.Assemble(ctx, in, p.assembly)
}

// infer runs both engines concurrently. The first failure cancels the other.
func (p *Processor) infer(ctx context.Context, m *Meeting) (transcript.Input, error) {
	audio := m.Audio()
	in := transcript.Input{SkipDiarization: m.SkipDiarization}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := p.engines.Transcribers.Get(gctx)
		if err != nil {
			return err
		}
		in.Chunks, err = call(gctx, p, t.Name(), func(ctx context.Context) ([]transcript.TimedText, error) {
			return t.Transcribe(ctx, audio)
		})
		return err
	})
	if !m.SkipDiarization {
		opts := m.DiarizeOptions()
		g.Go(func() error {
			d, err := p.engines.Diarizers.Get(gctx)
			if err != nil {
				return err
			}
			in.Intervals, err = call(gctx, p, d.Name(), func(ctx context.Context) ([]transcript.SpeakerInterval, error) {
				return d.Diarize(ctx, audio, opts)
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return transcript.Input{}, err
	}
	return in, nil
}

// call invokes an engine under the slot pool with caller-side retry.
func call[T any](ctx context.Context, p *Processor, name string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := p.tracer.Start(ctx, "engine.call", trace.WithAttributes(
		attribute.String(telemetry.AttrEngine, name),
	))
	defer span.End()

	retry := p.retry
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		p.log.WithContext(ctx).Warn("retrying engine call", logger.MergeWithError(logger.Fields(
			logger.FieldEngine, name,
			logger.FieldAttempt, attempt,
			"backoff", backoff.String(),
		), err))
	}

	out, err := engine.Retry(ctx, retry, func(ctx context.Context) (T, error) {
		started := time.Now()
		var v T
		var err error
		if p.engines.Pool != nil {
			v, err = engine.DoWithResult(p.engines.Pool, ctx, fn)
		} else {
			v, err = fn(ctx)
		}
		if p.metrics != nil {
			p.metrics.RecordEngineCall(ctx, name, err, time.Since(started))
		}
		return v, err
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return out, err
}

// complete stores the transcript and marks the meeting completed, unless it
// was cancelled in the meantime.
func (p *Processor) complete(ctx context.Context, id string, res *transcript.Result) error {
	svc := p.service
	m, err := svc.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if m.Status == StatusCancelled {
		return errors.Cancelled("persist", nil)
	}
	if err := svc.repo.SaveTranscript(ctx, id, res); err != nil {
		return err
	}

	now := svc.now()
	if err := m.Transition(StatusCompleted, now); err != nil {
		return err
	}
	if err := svc.repo.Update(ctx, m); err != nil {
		return err
	}
	if err := svc.cache.Put(ctx, id, res); err != nil {
		p.log.WithMeeting(id).Warn("cache write failed", logger.ErrorFields("cache_put", err))
	}

	summary := res.Summary()
	ev := NewEvent(EventTranscriptReady, m, now)
	ev.Previous = StatusProcessing
	ev.Summary = &summary
	svc.publish(ctx, ev)
	return nil
}

// fail records err on the meeting. It runs detached from ctx so a cancelled
// caller still leaves the meeting in a consistent state.
func (p *Processor) fail(ctx context.Context, id string, cause error) {
	ctx = context.WithoutCancel(ctx)
	svc := p.service
	log := p.log.WithMeeting(id)
	log.Error("meeting processing failed", logger.ErrorFields("process", cause))

	m, err := svc.repo.Get(ctx, id)
	if err != nil {
		log.Error("cannot load failed meeting", logger.ErrorFields("get", err))
		return
	}
	if m.Status != StatusProcessing {
		return
	}
	now := svc.now()
	if err := m.Fail(cause, now); err != nil {
		log.Error("cannot mark meeting failed", logger.ErrorFields("transition", err))
		return
	}
	if err := svc.repo.Update(ctx, m); err != nil {
		log.Error("cannot mark meeting failed", logger.ErrorFields("update", err))
		return
	}
	ev := NewEvent(EventFailed, m, now)
	ev.Previous = StatusProcessing
	svc.publish(ctx, ev)
}

func (p *Processor) logStages(log *logger.Logger, st transcript.Stats) {
	stages := []struct {
		name string
		n    int
	}{
		{transcript.StageStitch, st.StitchedChunks},
		{transcript.StageHallucination, st.HallucinationsDropped},
		{transcript.StageSmooth, st.MalformedIntervals},
		{transcript.StageRedundancy, st.RedundantDropped},
		{transcript.StageTurns, st.TurnsMerged},
	}
	for _, s := range stages {
		if s.n > 0 {
			log.Debug("stage dropped items", logger.StageFields(s.name, s.n))
		}
	}
}

func (p *Processor) recordProcess(ctx context.Context, status Status, started time.Time) {
	if p.metrics != nil {
		p.metrics.RecordProcess(ctx, string(status), time.Since(started))
	}
}
