// Package scheduler contains the timer-driven control loop that dispatches
// due missions through a pluggable executor.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"missionplane/internal/mission"
	"missionplane/internal/store"
	"missionplane/internal/telemetry"
)

// Telemetry event names. Stable; payload fields are additive.
const (
	EventStarted      = "scheduler_started"
	EventStopped      = "scheduler_stopped"
	EventTick         = "scheduler_tick"
	EventTickComplete = "scheduler_tick_complete"
	EventError        = "scheduler_error"
	EventState        = "scheduler_state"
	EventMissionDue   = "mission_due"
	EventMissionStart = "mission_started"
	EventMissionSkip  = "mission_skipped"
	EventMissionDone  = "mission_completed"
	EventMissionFail  = "mission_failed"
)

// Snapshot persist reasons.
const (
	persistStarted      = "started"
	persistStopped      = "stopped"
	persistTickStarted  = "tick_started"
	persistTickComplete = "tick_complete"
	persistTickError    = "tick_error"
)

// ErrDestroyed is returned by Start after Destroy.
var ErrDestroyed = errors.New("scheduler destroyed")

// DefaultInterval is the tick cadence when none is configured.
const DefaultInterval = 30 * time.Second

type lifecycle int

const (
	lifecycleStopped lifecycle = iota
	lifecycleRunning
	lifecycleDestroyed
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the tick cadence.
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithExecutor installs the executor invoked for due missions.
func WithExecutor(e Executor) Option {
	return func(s *Scheduler) {
		if e != nil {
			s.executor = e
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler drives the tick loop. It holds read-only mission snapshots from
// the service and mutates missions only through service transitions.
type Scheduler struct {
	svc      *mission.Service
	states   *store.StateStore
	emitter  *telemetry.Emitter
	log      *slog.Logger
	interval time.Duration
	executor Executor
	now      func() time.Time

	mu         sync.Mutex
	life       lifecycle
	ticking    bool
	activeRuns map[string]struct{}
	snap       store.SchedulerState
	stopCh     chan struct{}
	loopWG     sync.WaitGroup
	restored   bool
}

// New creates a scheduler and asynchronously restores the last persisted
// snapshot so operator-visible fields survive restarts. Restoration never
// implies the loop is running.
func New(svc *mission.Service, states *store.StateStore, emitter *telemetry.Emitter, log *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		svc:        svc,
		states:     states,
		emitter:    emitter,
		log:        log,
		interval:   DefaultInterval,
		executor:   NoopExecutor,
		now:        func() time.Time { return time.Now().UTC() },
		activeRuns: map[string]struct{}{},
	}
	for _, o := range opts {
		o(s)
	}
	s.snap.IntervalMs = s.interval.Milliseconds()
	go s.restore()
	return s
}

func (s *Scheduler) restore() {
	st, err := s.states.Load(context.Background())
	if err != nil {
		s.log.Warn("failed to restore scheduler state", slog.Any("err", err))
		return
	}
	if st == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restored || s.snap.LastTickStartedAt != nil {
		return
	}
	s.restored = true
	running := s.life == lifecycleRunning
	interval := s.snap.IntervalMs
	active := s.snap.ActiveRunCount
	s.snap = *st
	s.snap.Running = running
	s.snap.IntervalMs = interval
	s.snap.ActiveRunCount = active
}

// Start arms the timer. Starting a running scheduler is a no-op; starting a
// destroyed one fails.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	switch s.life {
	case lifecycleDestroyed:
		s.mu.Unlock()
		return ErrDestroyed
	case lifecycleRunning:
		s.mu.Unlock()
		return nil
	}
	s.life = lifecycleRunning
	s.snap.Running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.loopWG.Add(1)
	s.mu.Unlock()

	go s.loop(stopCh)
	s.log.Info("scheduler started", slog.Duration("interval", s.interval))
	s.persist(persistStarted)
	s.emitter.Emit(EventStarted, map[string]any{"intervalMs": s.interval.Milliseconds()})
	return nil
}

// Stop disarms the timer. The in-flight tick, if any, finishes on its own.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.life != lifecycleRunning {
		s.mu.Unlock()
		return nil
	}
	s.life = lifecycleStopped
	s.snap.Running = false
	close(s.stopCh)
	s.stopCh = nil
	s.mu.Unlock()

	s.loopWG.Wait()
	s.log.Info("scheduler stopped")
	s.persist(persistStopped)
	s.emitter.Emit(EventStopped, nil)
	return nil
}

// Destroy stops the loop and forbids further starts.
func (s *Scheduler) Destroy() {
	_ = s.Stop()
	s.mu.Lock()
	s.life = lifecycleDestroyed
	s.mu.Unlock()
}

// Running reports whether the timer is armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.life == lifecycleRunning
}

// Snapshot returns the current runtime-state metrics.
func (s *Scheduler) Snapshot() store.SchedulerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snap
	snap.Running = s.life == lifecycleRunning
	snap.ActiveRunCount = len(s.activeRuns)
	return snap
}

func (s *Scheduler) loop(stopCh <-chan struct{}) {
	defer s.loopWG.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			s.Tick(context.Background())
		}
	}
}

// Tick runs one pass of the control loop synchronously. Overlapping calls are
// skipped: ticks never run concurrently.
func (s *Scheduler) Tick(ctx context.Context) TickReport {
	s.mu.Lock()
	if s.ticking {
		s.mu.Unlock()
		s.log.Debug("tick already in progress; skipping")
		return TickReport{Skipped: true}
	}
	s.ticking = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.ticking = false
		s.mu.Unlock()
	}()
	return s.tick(ctx)
}

func (s *Scheduler) tick(ctx context.Context) (report TickReport) {
	started := s.now().UTC()
	report.StartedAt = started

	s.mu.Lock()
	s.snap.LastTickStartedAt = &started
	s.mu.Unlock()
	s.emitter.Emit(EventTick, map[string]any{"startedAt": started})
	s.persist(persistTickStarted)

	var tickErr error
	defer func() {
		if r := recover(); r != nil {
			tickErr = fmt.Errorf("tick panic: %v", r)
		}
		completed := s.now().UTC()
		report.Duration = completed.Sub(started).Milliseconds()

		s.mu.Lock()
		s.snap.LastTickCompletedAt = &completed
		s.snap.LastTickDurationMs = report.Duration
		s.snap.LastTickEvaluated = report.Evaluated
		s.snap.LastTickLaunched = report.Launched
		if tickErr != nil {
			s.snap.LastTickError = tickErr.Error()
		} else {
			s.snap.LastTickError = ""
		}
		s.mu.Unlock()

		if tickErr != nil {
			report.Error = tickErr.Error()
			s.log.Error("tick failed", slog.Any("err", tickErr))
			s.emitter.Emit(EventError, map[string]any{"error": tickErr.Error()})
			s.persist(persistTickError)
		} else {
			s.persist(persistTickComplete)
		}
		s.emitter.Emit(EventTickComplete, report)
	}()

	enabled, err := s.svc.List(ctx, mission.Filter{})
	if err != nil {
		tickErr = fmt.Errorf("list missions: %w", err)
		return report
	}
	report.Evaluated = len(enabled)

	now := s.now().UTC()
	due := make([]mission.Mission, 0, len(enabled))
	for _, m := range enabled {
		if isDue(m, now) {
			due = append(due, m)
			s.emitter.Emit(EventMissionDue, m.View())
		}
	}
	sortDue(due)

	for _, m := range due {
		outcome, err := s.runMissionInternal(ctx, m, false)
		if err != nil {
			// A failed result write leaves the record inconsistent; surface it
			// on the tick but keep dispatching the rest.
			s.log.Error("mission dispatch failed", slog.String("mission", m.ID), slog.Any("err", err))
			if tickErr == nil {
				tickErr = err
			}
			continue
		}
		if outcome.Kind != OutcomeSkipped {
			report.Launched++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report
}

// RunMission is the public entry for manual runs. forced bypasses the due and
// disabled checks but never the per-mission concurrency guard.
func (s *Scheduler) RunMission(ctx context.Context, id string, forced bool) (RunOutcome, error) {
	m, err := s.svc.Get(ctx, id)
	if err != nil {
		return RunOutcome{}, err
	}
	if m == nil {
		return RunOutcome{}, fmt.Errorf("run %s: %w", id, mission.ErrNotFound)
	}
	return s.runMissionInternal(ctx, *m, forced)
}

func (s *Scheduler) runMissionInternal(ctx context.Context, m mission.Mission, forced bool) (RunOutcome, error) {
	now := s.now().UTC()

	s.mu.Lock()
	if _, active := s.activeRuns[m.ID]; active {
		s.mu.Unlock()
		return s.skip(m, SkipAlreadyRunning), nil
	}
	if !forced && !isDue(m, now) {
		s.mu.Unlock()
		return s.skip(m, SkipNotDue), nil
	}
	if !forced && !m.Enable {
		s.mu.Unlock()
		return s.skip(m, SkipDisabled), nil
	}
	s.activeRuns[m.ID] = struct{}{}
	s.snap.ActiveRunCount = len(s.activeRuns)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.activeRuns, m.ID)
		s.snap.ActiveRunCount = len(s.activeRuns)
		s.mu.Unlock()
	}()

	started, err := s.svc.RecordRunStart(ctx, m.ID, now)
	if err != nil {
		s.log.Warn("failed to mark mission running", slog.String("mission", m.ID), slog.Any("err", err))
		return s.skip(m, SkipMarkRunningError), nil
	}
	s.emitter.Emit(EventMissionStart, started.View())
	s.log.Info("mission started", slog.String("mission", m.ID), slog.String("name", m.Name), slog.Bool("forced", forced))

	res := s.execute(ctx, *started)

	finished := s.now().UTC()
	final, err := s.svc.RecordRunResult(ctx, m.ID, mission.RunResult{
		FinishedAt: finished,
		Success:    res.Success,
		Error:      res.Error,
	})
	if err != nil {
		// Re-raised: a mission stuck in running is worse than a loud failure.
		return RunOutcome{}, fmt.Errorf("record run result for %s: %w", m.ID, err)
	}

	if res.Success {
		s.emitter.Emit(EventMissionDone, final.View())
		return RunOutcome{MissionID: m.ID, Kind: OutcomeCompleted, Result: res.Result}, nil
	}
	s.emitter.Emit(EventMissionFail, final.View())
	s.log.Warn("mission failed", slog.String("mission", m.ID), slog.String("error", res.Error))
	return RunOutcome{MissionID: m.ID, Kind: OutcomeFailed, Error: res.Error}, nil
}

// execute invokes the executor, converting errors and panics into a failed
// result so they surface as mission failures, never scheduler failures.
func (s *Scheduler) execute(ctx context.Context, m mission.Mission) (res ExecResult) {
	defer func() {
		if r := recover(); r != nil {
			res = ExecResult{Success: false, Error: fmt.Sprintf("executor panic: %v", r)}
		}
	}()
	rc := &RunContext{
		Logger:    s.log.With(slog.String("mission", m.ID)),
		Telemetry: s.emitter.Emit,
		Now:       s.now,
	}
	res, err := s.executor(ctx, m, rc)
	if err != nil {
		return ExecResult{Success: false, Error: err.Error()}
	}
	if !res.Success && res.Error == "" {
		res.Error = "executor reported failure"
	}
	return res
}

func (s *Scheduler) skip(m mission.Mission, reason string) RunOutcome {
	s.emitter.Emit(EventMissionSkip, map[string]any{"mission": m.View(), "reason": reason})
	s.log.Debug("mission skipped", slog.String("mission", m.ID), slog.String("reason", reason))
	return RunOutcome{MissionID: m.ID, Kind: OutcomeSkipped, Reason: reason}
}

// persist writes the snapshot best-effort and mirrors it on the telemetry
// channel. Failures are logged, never raised.
func (s *Scheduler) persist(reason string) {
	now := s.now().UTC()
	s.mu.Lock()
	s.snap.Running = s.life == lifecycleRunning
	s.snap.ActiveRunCount = len(s.activeRuns)
	s.snap.LastPersistedAt = &now
	s.snap.LastPersistReason = reason
	snap := s.snap
	s.mu.Unlock()

	if err := s.states.Save(context.Background(), snap); err != nil {
		s.log.Warn("failed to persist scheduler state", slog.String("reason", reason), slog.Any("err", err))
	}
	s.emitter.Emit(EventState, snap)
}

func isDue(m mission.Mission, now time.Time) bool {
	return m.NextRunAt != nil && !m.NextRunAt.After(now) && m.Status != mission.StatusRunning
}

// sortDue orders by priority descending, then earliest due time, then id so
// the dispatch order is total.
func sortDue(due []mission.Mission) {
	sort.Slice(due, func(i, j int) bool {
		a, b := due[i], due[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.NextRunAt.Equal(*b.NextRunAt) {
			return a.NextRunAt.Before(*b.NextRunAt)
		}
		return a.ID < b.ID
	})
}
