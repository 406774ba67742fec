package app

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/orbita/internal/core/decision"
	coremission "github.com/example/orbita/internal/core/mission"
	"github.com/example/orbita/internal/core/telemetry"
	"github.com/example/orbita/internal/metrics"
	"github.com/example/orbita/internal/ports/secondary"
)

// SchedulerConfig tunes the mission loops. Zero fields take defaults.
type SchedulerConfig struct {
	// Interval returns the tick interval per vehicle class.
	Interval func(telemetry.VehicleClass) time.Duration
	// AnomalyProbability is the per-tick fault injection rate.
	AnomalyProbability float64
	// UseRealSource asks the TelemetrySource before simulating.
	UseRealSource bool
	// NewRand seeds a loop's private random source.
	NewRand func(missionID string) *rand.Rand
	// Now stamps persisted samples and decisions.
	Now func() time.Time
}

// Scheduler owns one autonomy loop per running mission.
//
// Each loop ticks: acquire a snapshot, persist it, assess it, persist and
// correct when anomalous, broadcast, then sleep. Per-tick failures are
// logged and the loop carries on; only cancellation ends a loop.
type Scheduler struct {
	mu    sync.Mutex
	loops map[string]*missionLoop
	// stopping holds cancelled loops that have not exited yet.
	stopping map[string]*missionLoop
	closed   bool

	telemetryRepo secondary.TelemetryRepository
	decisionRepo  secondary.DecisionRepository
	broadcaster   secondary.Broadcaster
	source        secondary.TelemetrySource

	model    telemetry.Model
	rules    []decision.Rule
	interval func(telemetry.VehicleClass) time.Duration
	useReal  bool
	newRand  func(string) *rand.Rand
	now      func() time.Time

	logger  *slog.Logger
	metrics *metrics.Metrics
}

type missionLoop struct {
	id       string
	class    telemetry.VehicleClass
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	rng      *rand.Rand

	// current is touched only by the loop goroutine; readers use published.
	current   telemetry.Snapshot
	published atomic.Pointer[telemetry.Snapshot]
	ticks     uint64
}

func (l *missionLoop) publish(s telemetry.Snapshot) {
	l.published.Store(&s)
}

// NewScheduler creates a Scheduler. source may be nil; m may be nil.
func NewScheduler(
	telemetryRepo secondary.TelemetryRepository,
	decisionRepo secondary.DecisionRepository,
	broadcaster secondary.Broadcaster,
	source secondary.TelemetrySource,
	cfg SchedulerConfig,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Scheduler {
	if cfg.Interval == nil {
		cfg.Interval = coremission.DefaultInterval
	}
	if cfg.NewRand == nil {
		cfg.NewRand = func(string) *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		}
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Scheduler{
		loops:         make(map[string]*missionLoop),
		stopping:      make(map[string]*missionLoop),
		telemetryRepo: telemetryRepo,
		decisionRepo:  decisionRepo,
		broadcaster:   broadcaster,
		source:        source,
		model:         telemetry.NewModel(cfg.AnomalyProbability),
		rules:         decision.Rules(),
		interval:      cfg.Interval,
		useReal:       cfg.UseRealSource && source != nil,
		newRand:       cfg.NewRand,
		now:           cfg.Now,
		logger:        logger,
		metrics:       m,
	}
}

// ErrSchedulerClosed is returned by Start after Shutdown.
var ErrSchedulerClosed = errors.New("scheduler is shut down")

// Start launches the loop for missionID unless one is already running.
// A loop still winding down from Stop is waited for first, so the new
// loop always starts from freshly initialized state.
// It reports whether a new loop was started.
func (s *Scheduler) Start(missionID string, class telemetry.VehicleClass) (bool, error) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return false, ErrSchedulerClosed
		}
		if _, running := s.loops[missionID]; running {
			s.mu.Unlock()
			return false, nil
		}
		if prev, ok := s.stopping[missionID]; ok {
			s.mu.Unlock()
			<-prev.done
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		l := &missionLoop{
			id:       missionID,
			class:    class,
			interval: s.interval(class),
			cancel:   cancel,
			done:     make(chan struct{}),
			rng:      s.newRand(missionID),
			current:  telemetry.Initialize(class),
		}
		l.publish(l.current)
		s.loops[missionID] = l
		s.mu.Unlock()

		s.metrics.LoopStarted()
		go s.run(ctx, l)
		return true, nil
	}
}

// Stop cancels the loop for missionID and waits for it to exit. The
// mission's entry and current snapshot are gone when Stop returns.
// Other missions are not blocked while the loop finishes its tick.
// It reports whether a loop was running.
func (s *Scheduler) Stop(missionID string) bool {
	s.mu.Lock()
	l, running := s.loops[missionID]
	if !running {
		prev, winding := s.stopping[missionID]
		s.mu.Unlock()
		if winding {
			<-prev.done
		}
		return false
	}
	l.cancel()
	delete(s.loops, missionID)
	s.stopping[missionID] = l
	s.mu.Unlock()

	<-l.done
	return true
}

// Shutdown cancels every loop and waits for all of them, or for ctx.
// Start fails after Shutdown.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	loops := make([]*missionLoop, 0, len(s.loops)+len(s.stopping))
	for id, l := range s.loops {
		l.cancel()
		delete(s.loops, id)
		s.stopping[id] = l
	}
	for _, l := range s.stopping {
		loops = append(loops, l)
	}
	s.mu.Unlock()

	for _, l := range loops {
		select {
		case <-l.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.logger.Info("scheduler stopped", "loops", len(loops))
	return nil
}

// Running reports whether missionID has a live loop.
func (s *Scheduler) Running(missionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loops[missionID]
	return ok
}

// Current returns the latest published snapshot of a running mission.
func (s *Scheduler) Current(missionID string) (telemetry.Snapshot, bool) {
	s.mu.Lock()
	l, ok := s.loops[missionID]
	s.mu.Unlock()
	if !ok {
		return telemetry.Snapshot{}, false
	}
	return *l.published.Load(), true
}

// RunningCount returns the number of live loops.
func (s *Scheduler) RunningCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loops)
}

func (s *Scheduler) run(ctx context.Context, l *missionLoop) {
	defer close(l.done)
	defer s.forget(l)
	defer s.metrics.LoopStopped()

	logger := s.logger.With("mission_id", l.id, "vehicle_class", string(l.class))
	logger.Info("loop started", "interval", l.interval)

	timer := time.NewTimer(l.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			logger.Info("loop cancelled", "ticks", l.ticks)
			return
		}

		s.tick(ctx, l, logger)

		timer.Reset(l.interval)
		select {
		case <-ctx.Done():
			logger.Info("loop cancelled", "ticks", l.ticks)
			return
		case <-timer.C:
		}
	}
}

// forget drops a finished loop from the stopping table.
func (s *Scheduler) forget(l *missionLoop) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping[l.id] == l {
		delete(s.stopping, l.id)
	}
}

// tick runs one iteration. Steps already begun finish even if ctx is
// cancelled meanwhile; the loop notices cancellation afterwards.
func (s *Scheduler) tick(ctx context.Context, l *missionLoop, logger *slog.Logger) {
	l.ticks++
	n := l.ticks
	logger = logger.With("tick", n)

	defer func() {
		if p := recover(); p != nil {
			s.metrics.TickError(metrics.StagePanic)
			logger.Error("tick panicked", "panic", p, "stack", string(debug.Stack()))
		}
	}()

	stepCtx := context.WithoutCancel(ctx)

	next, source := s.acquire(stepCtx, l, logger)
	l.current = next
	l.publish(next)

	now := s.now()
	if err := s.telemetryRepo.Append(stepCtx, telemetryRecord(l.id, now, next)); err != nil {
		s.stepFailed(logger, metrics.StageTelemetry, err)
	}

	assessment, rule := decision.Evaluate(s.rules, next)

	var view *decision.View
	if assessment.Anomalous() {
		s.metrics.AnomalyDetected(assessment.AnomalyType())
		logger.Warn("anomaly detected", "rule", rule, "anomaly", assessment.AnomalyType(),
			"action", assessment.SelectedAction(), "confidence", assessment.Confidence)

		if err := s.decisionRepo.Append(stepCtx, decisionRecord(l.id, now, assessment)); err != nil {
			s.stepFailed(logger, metrics.StageDecision, err)
		}

		l.current = decision.ApplyCorrection(l.current, assessment.Correction)
		l.publish(l.current)

		v := decision.NewView(assessment)
		view = &v
	}

	s.broadcaster.Broadcast(stepCtx, l.id, secondary.LiveUpdate{
		MissionID: l.id,
		Tick:      n,
		Telemetry: next,
		Decision:  view,
		Source:    source,
	})

	s.metrics.TickCompleted(string(l.class))
	logger.Debug("tick complete", "source", source, "battery", next.BatteryLevel,
		"thermal", next.ThermalState, "stable", next.IsStable)
}

// acquire returns the tick's snapshot and its source tag. External data
// is preferred when enabled; any miss or failure falls back to simulation.
func (s *Scheduler) acquire(ctx context.Context, l *missionLoop, logger *slog.Logger) (telemetry.Snapshot, string) {
	if s.useReal {
		snap, ok, err := s.source.Fetch(ctx, l.id, l.class)
		switch {
		case err != nil:
			s.metrics.TickError(metrics.StageSource)
			logger.Warn("telemetry source failed, simulating", "error", err)
		case ok:
			return telemetry.Normalize(snap), secondary.SourceReal
		}
	}

	next, injected := s.model.Evolve(l.current, l.class, l.rng)
	if injected != telemetry.AnomalyNone {
		logger.Debug("fault injected", "kind", injected.String())
	}
	return next, secondary.SourceSimulated
}

func (s *Scheduler) stepFailed(logger *slog.Logger, stage string, err error) {
	s.metrics.TickError(stage)
	logger.Error("tick step failed", "stage", stage, "error", err)
}

func telemetryRecord(missionID string, at time.Time, snap telemetry.Snapshot) *secondary.TelemetryRecord {
	return &secondary.TelemetryRecord{
		MissionID:        missionID,
		Timestamp:        at,
		BatteryLevel:     snap.BatteryLevel,
		ThermalState:     snap.ThermalState,
		OrientationRoll:  snap.OrientationRoll,
		OrientationPitch: snap.OrientationPitch,
		OrientationYaw:   snap.OrientationYaw,
		SignalLatency:    snap.SignalLatency,
		IsStable:         snap.IsStable,
	}
}

func decisionRecord(missionID string, at time.Time, a decision.Assessment) *secondary.DecisionRecord {
	var options []secondary.RecoveryOptionRecord
	for _, o := range a.RecoveryOptions() {
		options = append(options, secondary.RecoveryOptionRecord{
			Strategy:       o.Strategy,
			RiskLevel:      o.RiskLevel,
			ExpectedImpact: o.ExpectedImpact,
		})
	}

	return &secondary.DecisionRecord{
		MissionID:       missionID,
		Timestamp:       at,
		AnomalyDetected: a.AnomalyType(),
		ActionTaken:     a.SelectedAction(),
		Reasoning:       a.Explanation,
		ConfidenceScore: a.Confidence,
		RootCause:       a.RootCauseHypothesis(),
		RecoveryOptions: options,
	}
}
