// Package store contains the file-backed persistence layer: the mission file
// and the scheduler runtime-state snapshot.
//
// The mission file is a pretty-printed JSON array rewritten as a whole on
// every mutation. Writes go through a single writer goroutine so the on-disk
// state always reflects a total order consistent with call order; each write
// lands in a temp file first and is renamed into place.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"missionplane/internal/mission"
)

// MissionsFile is the file name under the data directory.
const MissionsFile = "missions.json"

type writeReq struct {
	records []mission.Mission
	reply   chan error
}

// MissionStore is the persistent mapping from mission id to mission record.
// All returned records are deep copies; callers never observe later mutations.
type MissionStore struct {
	path string
	log  *slog.Logger

	loadOnce sync.Once
	loadErr  error

	mu       sync.Mutex
	missions map[string]mission.Mission
	order    []string // insertion order, drives the on-disk array layout

	writes    chan writeReq
	writerWG  sync.WaitGroup
	closeOnce sync.Once
}

// NewMissionStore creates a store rooted at dir and starts its writer.
// The file is not touched until the first access.
func NewMissionStore(dir string, log *slog.Logger) *MissionStore {
	s := &MissionStore{
		path:   filepath.Join(dir, MissionsFile),
		log:    log,
		writes: make(chan writeReq, 16),
	}
	s.writerWG.Add(1)
	go s.writer()
	return s
}

// Path returns the backing file path.
func (s *MissionStore) Path() string { return s.path }

// Ping loads the file if necessary and reports whether the store is usable.
func (s *MissionStore) Ping(ctx context.Context) error {
	_ = ctx
	return s.ensureLoaded()
}

// List returns all missions in insertion order.
func (s *MissionStore) List(ctx context.Context) ([]mission.Mission, error) {
	_ = ctx
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), nil
}

// Get returns the mission with the given id, or nil if absent.
func (s *MissionStore) Get(ctx context.Context, id string) (*mission.Mission, error) {
	_ = ctx
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.missions[id]
	if !ok {
		return nil, nil
	}
	c := m.Clone()
	return &c, nil
}

// Upsert inserts or replaces a mission and rewrites the file.
func (s *MissionStore) Upsert(ctx context.Context, m mission.Mission) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.mu.Lock()
	if _, ok := s.missions[m.ID]; !ok {
		s.order = append(s.order, m.ID)
	}
	s.missions[m.ID] = m.Clone()
	reply := s.enqueueLocked()
	s.mu.Unlock()
	return s.await(reply)
}

// Remove deletes a mission and rewrites the file. Returns the removed record,
// or nil if the id was absent (no write happens in that case).
func (s *MissionStore) Remove(ctx context.Context, id string) (*mission.Mission, error) {
	if err := s.ensureLoaded(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	m, ok := s.missions[id]
	if !ok {
		s.mu.Unlock()
		return nil, nil
	}
	delete(s.missions, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	removed := m.Clone()
	reply := s.enqueueLocked()
	s.mu.Unlock()
	if err := s.await(reply); err != nil {
		return nil, err
	}
	return &removed, nil
}

// ReplaceAll swaps the entire mission set.
func (s *MissionStore) ReplaceAll(ctx context.Context, missions []mission.Mission) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.mu.Lock()
	s.missions = make(map[string]mission.Mission, len(missions))
	s.order = s.order[:0]
	for _, m := range missions {
		if _, ok := s.missions[m.ID]; !ok {
			s.order = append(s.order, m.ID)
		}
		s.missions[m.ID] = m.Clone()
	}
	reply := s.enqueueLocked()
	s.mu.Unlock()
	return s.await(reply)
}

// Close stops the writer after draining pending writes.
func (s *MissionStore) Close() error {
	s.closeOnce.Do(func() { close(s.writes) })
	s.writerWG.Wait()
	return nil
}

func (s *MissionStore) ensureLoaded() error {
	s.loadOnce.Do(func() { s.loadErr = s.load() })
	return s.loadErr
}

func (s *MissionStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.missions = map[string]mission.Mission{}
	s.order = nil

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return ioErr(s.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	var records []mission.Mission
	if err := json.Unmarshal(data, &records); err != nil {
		// A malformed mission file is never silently discarded.
		return corruptErr(s.path, err)
	}
	for _, m := range records {
		if _, ok := s.missions[m.ID]; !ok {
			s.order = append(s.order, m.ID)
		}
		s.missions[m.ID] = m
	}
	s.log.Info("mission store loaded", slog.String("path", s.path), slog.Int("missions", len(records)))
	return nil
}

// snapshotLocked copies the current records in insertion order.
func (s *MissionStore) snapshotLocked() []mission.Mission {
	out := make([]mission.Mission, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.missions[id].Clone())
	}
	return out
}

// enqueueLocked hands the current snapshot to the writer while the caller
// still holds the store mutex, which pins the file write order to mutation
// order. The caller awaits the returned reply after unlocking.
func (s *MissionStore) enqueueLocked() chan error {
	req := writeReq{records: s.snapshotLocked(), reply: make(chan error, 1)}
	s.writes <- req
	return req.reply
}

// await returns the writer's verdict. Caller cancellation is deliberately not
// observed here: the mutation is already applied in memory and enqueued, so the
// write lands either way and reporting ctx.Err() would claim a loss that never
// happened. The writer replies promptly, bounded by one file rewrite.
func (s *MissionStore) await(reply chan error) error {
	return <-reply
}

func (s *MissionStore) writer() {
	defer s.writerWG.Done()
	for req := range s.writes {
		req.reply <- writeJSONFile(s.path, req.records)
	}
}

// writeJSONFile rewrites path atomically: marshal, write to a temp file in
// the same directory, then rename over the target.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ioErr(path, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ioErr(path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return ioErr(path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return ioErr(path, err)
	}
	return nil
}
