package store

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"missionplane/internal/mission"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

func testMission(id, name string) mission.Mission {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return mission.Mission{
		ID:        id,
		Name:      name,
		Schedule:  mission.Schedule{Kind: mission.ScheduleInterval, IntervalMinutes: 5},
		Enable:    true,
		Status:    mission.StatusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMissionStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s := NewMissionStore(dir, testLogger)
	if err := s.Upsert(ctx, testMission("m1", "first")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Upsert(ctx, testMission("m2", "second")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// A fresh store over the same directory sees both records in order.
	s2 := NewMissionStore(dir, testLogger)
	defer s2.Close()
	got, err := s2.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "m1" || got[1].ID != "m2" {
		t.Fatalf("unexpected records after reload: %+v", got)
	}

	m, err := s2.Get(ctx, "m2")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if m == nil || m.Name != "second" {
		t.Errorf("unexpected mission: %+v", m)
	}
}

func TestMissionStoreMissingFile(t *testing.T) {
	s := NewMissionStore(t.TempDir(), testLogger)
	defer s.Close()

	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List on empty dir failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %d records", len(got))
	}
}

func TestMissionStoreEmptyFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, MissionsFile), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewMissionStore(dir, testLogger)
	defer s.Close()

	got, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List on empty file failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %d records", len(got))
	}
}

func TestMissionStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, MissionsFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewMissionStore(dir, testLogger)
	defer s.Close()

	_, err := s.List(context.Background())
	if err == nil {
		t.Fatal("expected error for corrupt file")
	}
	if !IsCorrupt(err) {
		t.Errorf("expected corrupt error, got %v", err)
	}
	// The error is sticky: writes are refused too.
	if err := s.Upsert(context.Background(), testMission("m1", "x")); !IsCorrupt(err) {
		t.Errorf("expected corrupt error on write, got %v", err)
	}
}

func TestMissionStoreRemove(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := NewMissionStore(dir, testLogger)
	defer s.Close()

	if err := s.Upsert(ctx, testMission("m1", "x")); err != nil {
		t.Fatal(err)
	}
	removed, err := s.Remove(ctx, "m1")
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if removed == nil || removed.ID != "m1" {
		t.Errorf("unexpected removed record: %+v", removed)
	}

	removed, err = s.Remove(ctx, "m1")
	if err != nil {
		t.Fatalf("Remove of absent id failed: %v", err)
	}
	if removed != nil {
		t.Errorf("expected nil for absent id, got %+v", removed)
	}

	data, err := os.ReadFile(filepath.Join(dir, MissionsFile))
	if err != nil {
		t.Fatal(err)
	}
	var records []mission.Mission
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("file not valid JSON: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty array on disk, got %d records", len(records))
	}
}

func TestMissionStoreReplaceAll(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := NewMissionStore(dir, testLogger)
	defer s.Close()

	if err := s.Upsert(ctx, testMission("old", "old")); err != nil {
		t.Fatal(err)
	}
	if err := s.ReplaceAll(ctx, []mission.Mission{testMission("a", "a"), testMission("b", "b")}); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	got, err := s.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("unexpected records: %+v", got)
	}
}

func TestMissionStoreReturnsCopies(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := NewMissionStore(dir, testLogger)
	defer s.Close()

	m := testMission("m1", "x")
	m.Tags = []string{"ops"}
	m.Payload = map[string]any{"key": "value"}
	if err := s.Upsert(ctx, m); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	got.Name = "mutated"
	got.Tags[0] = "mutated"
	got.Payload["key"] = "mutated"

	again, err := s.Get(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != "x" || again.Tags[0] != "ops" || again.Payload["key"] != "value" {
		t.Errorf("stored record was mutated through a returned copy: %+v", again)
	}
}

func TestMissionStoreWriteSurvivesCancelledContext(t *testing.T) {
	dir := t.TempDir()
	s := NewMissionStore(dir, testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The caller may be gone, but the mutation is applied and must not be
	// reported lost.
	if err := s.Upsert(ctx, testMission("m1", "x")); err != nil {
		t.Fatalf("Upsert with cancelled context failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2 := NewMissionStore(dir, testLogger)
	defer s2.Close()
	got, err := s2.Get(context.Background(), "m1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "x" {
		t.Errorf("write did not land on disk: %+v", got)
	}
}

func TestMissionStoreConcurrentWrites(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s := NewMissionStore(dir, testLogger)

	var wg sync.WaitGroup
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := s.Upsert(ctx, testMission(id, id)); err != nil {
				t.Errorf("Upsert %s failed: %v", id, err)
			}
		}(id)
	}
	wg.Wait()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	// The final file holds exactly the full set, regardless of interleaving.
	data, err := os.ReadFile(filepath.Join(dir, MissionsFile))
	if err != nil {
		t.Fatal(err)
	}
	var records []mission.Mission
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("file not valid JSON: %v", err)
	}
	if len(records) != len(ids) {
		t.Errorf("expected %d records on disk, got %d", len(ids), len(records))
	}
}
