package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// StateFile is the runtime-state file name under the data directory.
const StateFile = "scheduler-state.json"

// SchedulerState is the persisted snapshot of scheduler-wide metrics. It is
// best-effort: operator surfaces survive restarts, nothing else depends on it.
type SchedulerState struct {
	Running             bool       `json:"running"`
	IntervalMs          int64      `json:"intervalMs"`
	ActiveRunCount      int        `json:"activeRunCount"`
	LastTickStartedAt   *time.Time `json:"lastTickStartedAt,omitempty"`
	LastTickCompletedAt *time.Time `json:"lastTickCompletedAt,omitempty"`
	LastTickDurationMs  int64      `json:"lastTickDurationMs"`
	LastTickError       string     `json:"lastTickError,omitempty"`
	LastTickEvaluated   int        `json:"lastTickEvaluated"`
	LastTickLaunched    int        `json:"lastTickLaunched"`
	LastPersistedAt     *time.Time `json:"lastPersistedAt,omitempty"`
	LastPersistReason   string     `json:"lastPersistReason,omitempty"`
}

// StateStore persists the single SchedulerState record.
type StateStore struct {
	path string
	log  *slog.Logger
	mu   sync.Mutex
}

// NewStateStore creates a state store rooted at dir.
func NewStateStore(dir string, log *slog.Logger) *StateStore {
	return &StateStore{path: filepath.Join(dir, StateFile), log: log}
}

// Path returns the backing file path.
func (s *StateStore) Path() string { return s.path }

// Load reads the last snapshot. A missing or malformed file yields (nil, nil);
// malformed contents are logged and treated as absent.
func (s *StateStore) Load(ctx context.Context) (*SchedulerState, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, ioErr(s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var st SchedulerState
	if err := json.Unmarshal(data, &st); err != nil {
		s.log.Warn("scheduler state file is malformed; ignoring", slog.String("path", s.path), slog.Any("err", err))
		return nil, nil
	}
	return &st, nil
}

// Save rewrites the snapshot atomically.
func (s *StateStore) Save(ctx context.Context, st SchedulerState) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSONFile(s.path, st)
}
