package commands

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/kbukum/transcriptkit/config"
	"github.com/kbukum/transcriptkit/engine"
	"github.com/kbukum/transcriptkit/engine/pyannote"
	"github.com/kbukum/transcriptkit/engine/whisper"
	"github.com/kbukum/transcriptkit/events"
	"github.com/kbukum/transcriptkit/logger"
	"github.com/kbukum/transcriptkit/meeting"
	"github.com/kbukum/transcriptkit/store"
	"github.com/kbukum/transcriptkit/telemetry"
)

const shutdownTimeout = 10 * time.Second

// runtime holds the collaborators of the meeting commands.
type runtime struct {
	cfg       *config.AppConfig
	db        *store.DB
	cache     *store.Cache
	publisher *events.Publisher
	telemetry *telemetry.Provider
	metrics   *telemetry.Metrics
	service   *meeting.Service
	log       *logger.Logger
}

func newRuntime(ctx context.Context, cfg *config.AppConfig) (_ *runtime, err error) {
	rt := &runtime{cfg: cfg, log: logger.Get("runtime")}
	defer func() {
		if err != nil {
			rt.close()
		}
	}()

	if rt.telemetry, err = telemetry.Init(ctx, cfg.Telemetry); err != nil {
		return nil, err
	}
	if rt.metrics, err = telemetry.NewMetrics(telemetry.Meter()); err != nil {
		return nil, err
	}

	if rt.db, err = store.Open(ctx, cfg.Store.Database); err != nil {
		return nil, err
	}
	opts := []meeting.Option{}

	if cfg.Store.Cache.Enabled {
		if rt.cache, err = store.NewCache(ctx, cfg.Store.Cache); err != nil {
			return nil, err
		}
		opts = append(opts, meeting.WithCache(rt.cache))
	}
	if cfg.Events.Enabled {
		if rt.publisher, err = events.NewPublisher(cfg.Events); err != nil {
			return nil, err
		}
		opts = append(opts, meeting.WithPublisher(rt.publisher))
	}

	rt.service = meeting.NewService(store.NewRepository(rt.db), opts...)
	return rt, nil
}

// processor wires the configured engines behind the accelerator pool.
func (rt *runtime) processor() (*meeting.Processor, error) {
	ecfg := rt.cfg.Engines

	transcribers := engine.NewTranscribers(nil)
	transcribers.Register(whisper.EngineName, whisper.Factory(whisper.WithParseConfig(rt.cfg.Assembly)))
	if err := transcribers.Initialize(ecfg.Transcriber, ecfg.ProviderConfig(ecfg.Transcriber)); err != nil {
		return nil, err
	}
	if err := transcribers.SetDefault(ecfg.Transcriber); err != nil {
		return nil, err
	}

	diarizers := engine.NewDiarizers(nil)
	diarizers.Register(pyannote.EngineName, pyannote.Factory())
	if err := diarizers.Initialize(ecfg.Diarizer, ecfg.ProviderConfig(ecfg.Diarizer)); err != nil {
		return nil, err
	}
	if err := diarizers.SetDefault(ecfg.Diarizer); err != nil {
		return nil, err
	}

	poolCfg := ecfg.PoolConfig()
	poolCfg.OnAcquire = rt.metrics.SlotAcquired
	poolCfg.OnRelease = rt.metrics.SlotReleased
	poolCfg.OnReject = rt.metrics.SlotRejected

	return meeting.NewProcessor(rt.service, meeting.Engines{
		Transcribers: transcribers,
		Diarizers:    diarizers,
		Pool:         engine.NewPool(poolCfg),
	}, meeting.ProcessorConfig{
		Assembly: rt.cfg.Assembly,
		Retry:    ecfg.Retry,
	}, meeting.WithMetrics(rt.metrics)), nil
}

// close releases everything that was opened, in reverse order.
func (rt *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if rt.publisher != nil {
		errs = append(errs, rt.publisher.Close())
	}
	if rt.cache != nil {
		errs = append(errs, rt.cache.Close())
	}
	if rt.db != nil {
		errs = append(errs, rt.db.Close())
	}
	if rt.telemetry != nil {
		errs = append(errs, rt.telemetry.Shutdown(ctx))
	}
	if err := stderrors.Join(errs...); err != nil {
		rt.log.Warn("shutdown incomplete", logger.ErrorFields("close", err))
	}
}
