// Package executor contains concrete mission executors. The scheduler only
// knows the Executor contract; everything here is optional wiring.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"missionplane/internal/mission"
	"missionplane/internal/scheduler"
)

// Payload keys interpreted by the shell executor.
const (
	payloadCommand = "command"
	payloadTimeout = "timeoutSeconds"
)

// maxCapturedOutput bounds what a chatty process can push into the mission
// result.
const maxCapturedOutput = 8 * 1024

// NewShell returns an executor that runs missions whose payload carries
// {"command": ["prog", "arg", ...]}. Missions without a command fall through
// to next (typically scheduler.NoopExecutor). The context's cancellation is
// honored by killing the process.
func NewShell(next scheduler.Executor) scheduler.Executor {
	if next == nil {
		next = scheduler.NoopExecutor
	}
	return func(ctx context.Context, m mission.Mission, rc *scheduler.RunContext) (scheduler.ExecResult, error) {
		argv, ok := commandFromPayload(m.Payload)
		if !ok {
			return next(ctx, m, rc)
		}
		if len(argv) == 0 {
			return scheduler.ExecResult{Success: false, Error: "payload.command is empty"}, nil
		}

		runCtx := ctx
		if secs, ok := timeoutFromPayload(m.Payload); ok {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(ctx, time.Duration(secs)*time.Second)
			defer cancel()
		}

		var out bytes.Buffer
		cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
		cmd.Stdout = &out
		cmd.Stderr = &out

		start := rc.Now()
		err := cmd.Run()
		dur := rc.Now().Sub(start)

		captured := out.String()
		if len(captured) > maxCapturedOutput {
			captured = captured[:maxCapturedOutput]
		}
		captured = strings.TrimSpace(captured)

		if err != nil {
			rc.Logger.Warn("shell command failed",
				slog.String("command", argv[0]), slog.Duration("dur", dur), slog.Any("err", err))
			return scheduler.ExecResult{
				Success: false,
				Result:  captured,
				Error:   fmt.Sprintf("command %q: %v", argv[0], err),
			}, nil
		}
		rc.Logger.Info("shell command completed", slog.String("command", argv[0]), slog.Duration("dur", dur))
		return scheduler.ExecResult{Success: true, Result: captured}, nil
	}
}

func commandFromPayload(payload map[string]any) ([]string, bool) {
	raw, ok := payload[payloadCommand]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case []string:
		return v, true
	case []any:
		argv := make([]string, 0, len(v))
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return []string{}, true // present but malformed; reported as empty
			}
			argv = append(argv, s)
		}
		return argv, true
	case string:
		return strings.Fields(v), true
	default:
		return []string{}, true
	}
}

func timeoutFromPayload(payload map[string]any) (int, bool) {
	raw, ok := payload[payloadTimeout]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int(v), true
		}
	}
	return 0, false
}
