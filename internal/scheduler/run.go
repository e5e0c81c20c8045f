package scheduler

import (
	"context"
	"log/slog"
	"time"

	"missionplane/internal/mission"
)

// ExecResult is what an executor reports back for one invocation.
type ExecResult struct {
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// RunContext is handed to the executor alongside the mission snapshot.
// The context passed to the executor carries the advisory cancellation
// signal; honoring it is optional.
type RunContext struct {
	Logger    *slog.Logger
	Telemetry func(event string, data any)
	Now       func() time.Time
}

// Executor performs a mission's work. Returning an error is equivalent to
// returning ExecResult{Success: false, Error: err.Error()}.
type Executor func(ctx context.Context, m mission.Mission, rc *RunContext) (ExecResult, error)

// NoopExecutor is the default executor: it logs and succeeds.
func NoopExecutor(ctx context.Context, m mission.Mission, rc *RunContext) (ExecResult, error) {
	_ = ctx
	rc.Logger.Info("no-op executor invoked", slog.String("mission", m.ID), slog.String("name", m.Name))
	return ExecResult{Success: true, Result: "no-op"}, nil
}

// OutcomeKind discriminates the result of a dispatch attempt.
type OutcomeKind string

const (
	OutcomeCompleted OutcomeKind = "completed"
	OutcomeSkipped   OutcomeKind = "skipped"
	OutcomeFailed    OutcomeKind = "failed"
)

// Skip reasons carried on RunOutcome.
const (
	SkipAlreadyRunning   = "already running"
	SkipNotDue           = "not due"
	SkipDisabled         = "disabled"
	SkipMarkRunningError = "markRunning failed"
)

// RunOutcome is the uniform result of RunMission and of each per-mission
// dispatch inside a tick.
type RunOutcome struct {
	MissionID string      `json:"missionId"`
	Kind      OutcomeKind `json:"kind"`
	Reason    string      `json:"reason,omitempty"`
	Result    any         `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// Skipped reports whether the dispatch was skipped.
func (o RunOutcome) Skipped() bool { return o.Kind == OutcomeSkipped }

// TickReport summarizes one tick of the control loop.
type TickReport struct {
	Skipped   bool         `json:"skipped,omitempty"`
	StartedAt time.Time    `json:"startedAt"`
	Duration  int64        `json:"durationMs"`
	Evaluated int          `json:"evaluated"`
	Launched  int          `json:"launched"`
	Outcomes  []RunOutcome `json:"outcomes,omitempty"`
	Error     string       `json:"error,omitempty"`
}
