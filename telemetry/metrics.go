package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/transcriptkit/errors"
	"github.com/kbukum/transcriptkit/transcript"
)

// Metrics holds the processing instruments.
type Metrics struct {
	processTotal    metric.Int64Counter
	processDuration metric.Float64Histogram
	segmentsTotal   metric.Int64Counter
	droppedTotal    metric.Int64Counter
	engineDuration  metric.Float64Histogram
	slotsInUse      metric.Int64UpDownCounter
	slotRejects     metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var m Metrics
	var err error

	if m.processTotal, err = meter.Int64Counter("meeting.process.total",
		metric.WithDescription("Meetings processed, by outcome"),
	); err != nil {
		return nil, errors.Internal(err)
	}
	if m.processDuration, err = meter.Float64Histogram("meeting.process.duration",
		metric.WithDescription("End-to-end meeting processing time"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, errors.Internal(err)
	}
	if m.segmentsTotal, err = meter.Int64Counter("transcript.segments.total",
		metric.WithDescription("Transcript segments produced"),
	); err != nil {
		return nil, errors.Internal(err)
	}
	if m.droppedTotal, err = meter.Int64Counter("transcript.dropped.total",
		metric.WithDescription("Items dropped by the assembly pipeline, by stage"),
	); err != nil {
		return nil, errors.Internal(err)
	}
	if m.engineDuration, err = meter.Float64Histogram("engine.call.duration",
		metric.WithDescription("Inference engine call latency, by engine and outcome"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, errors.Internal(err)
	}
	if m.slotsInUse, err = meter.Int64UpDownCounter("engine.pool.in_use",
		metric.WithDescription("Accelerator slots currently held"),
	); err != nil {
		return nil, errors.Internal(err)
	}
	if m.slotRejects, err = meter.Int64Counter("engine.pool.rejected.total",
		metric.WithDescription("Slot acquisitions that failed"),
	); err != nil {
		return nil, errors.Internal(err)
	}
	return &m, nil
}

// RecordProcess records one meeting run.
func (m *Metrics) RecordProcess(ctx context.Context, status string, d time.Duration) {
	m.processTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	m.processDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("status", status)))
}

// RecordResult records segment output and per-stage drops.
func (m *Metrics) RecordResult(ctx context.Context, res *transcript.Result) {
	m.segmentsTotal.Add(ctx, int64(len(res.Segments)))
	drops := []struct {
		stage string
		n     int
	}{
		{transcript.StageStitch, res.Stats.StitchedChunks},
		{transcript.StageHallucination, res.Stats.HallucinationsDropped},
		{transcript.StageSmooth, res.Stats.MalformedIntervals},
		{transcript.StageRedundancy, res.Stats.RedundantDropped},
		{transcript.StageTurns, res.Stats.TurnsMerged},
	}
	for _, d := range drops {
		if d.n > 0 {
			m.droppedTotal.Add(ctx, int64(d.n), metric.WithAttributes(attribute.String("stage", d.stage)))
		}
	}
}

// RecordEngineCall records one engine invocation.
func (m *Metrics) RecordEngineCall(ctx context.Context, engine string, err error, d time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
		if appErr, ok := errors.AsAppError(err); ok {
			status = string(appErr.Code)
		}
	}
	m.engineDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("engine", engine),
		attribute.String("status", status),
	))
}

// SlotAcquired, SlotReleased and SlotRejected match the engine.PoolConfig
// hook signatures.
func (m *Metrics) SlotAcquired(pool string) {
	m.slotsInUse.Add(context.Background(), 1, metric.WithAttributes(attribute.String("pool", pool)))
}

func (m *Metrics) SlotReleased(pool string) {
	m.slotsInUse.Add(context.Background(), -1, metric.WithAttributes(attribute.String("pool", pool)))
}

func (m *Metrics) SlotRejected(pool string) {
	m.slotRejects.Add(context.Background(), 1, metric.WithAttributes(attribute.String("pool", pool)))
}
