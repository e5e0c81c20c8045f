package mission

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence contract the service depends on. Implementations
// must return deep copies and serialize their writes.
type Store interface {
	List(ctx context.Context) ([]Mission, error)
	Get(ctx context.Context, id string) (*Mission, error)
	Upsert(ctx context.Context, m Mission) error
	Remove(ctx context.Context, id string) (*Mission, error)
	ReplaceAll(ctx context.Context, missions []Mission) error
}

// Draft is the input to Create. Zero values fall to defaults during
// normalization; Enable defaults to true when nil.
type Draft struct {
	Name        string
	Description string
	Schedule    Schedule
	Priority    int
	Tags        []string
	Payload     map[string]any
	Enable      *bool
}

// Patch carries the fields of an update; nil means "leave unchanged".
type Patch struct {
	Name           *string
	Description    *string
	Schedule       *Schedule
	Priority       *int
	Tags           *[]string
	Payload        *map[string]any
	Enable         *bool
	Status         *Status
	LastRunAt      *time.Time
	LastFinishedAt *time.Time
	LastRunError   *string
}

// RunResult reports the outcome of one executor invocation.
type RunResult struct {
	FinishedAt time.Time
	Success    bool
	Error      string
}

// Filter narrows List results. Disabled missions are excluded unless
// IncludeDisabled is set or the status filter names them explicitly.
type Filter struct {
	Statuses        []Status
	Tag             string
	IncludeDisabled bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects the time source; tests pin it to a fixed instant.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is the sole authority for mission mutation. The scheduler and all
// adapters go through it; nothing else writes mission records.
type Service struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// NewService creates a mission service on top of the given store.
func NewService(store Store, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns missions matching the filter, in store order.
func (s *Service) List(ctx context.Context, f Filter) ([]Mission, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	wantDisabled := f.IncludeDisabled
	for _, st := range f.Statuses {
		if st == StatusDisabled {
			wantDisabled = true
		}
	}
	out := make([]Mission, 0, len(all))
	for _, m := range all {
		if m.Status == StatusDisabled && !wantDisabled {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, m.Status) {
			continue
		}
		if f.Tag != "" && !containsTag(m.Tags, strings.ToLower(f.Tag)) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Get returns the mission with the given id, or nil when absent.
func (s *Service) Get(ctx context.Context, id string) (*Mission, error) {
	return s.store.Get(ctx, id)
}

// Create normalizes the draft, assigns identity and timestamps, computes the
// initial nextRunAt and persists the record.
func (s *Service) Create(ctx context.Context, d Draft) (*Mission, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, invalidf("name", "must not be empty")
	}
	sched, err := NormalizeSchedule(d.Schedule)
	if err != nil {
		return nil, err
	}
	enable := true
	if d.Enable != nil {
		enable = *d.Enable
	}
	now := s.now().UTC()
	m := Mission{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(d.Description),
		Schedule:    sched,
		Priority:    clampPriority(d.Priority),
		Tags:        normalizeTags(d.Tags),
		Payload:     clonePayload(d.Payload),
		Enable:      enable,
		Status:      StatusIdle,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if !enable {
		m.Status = StatusDisabled
	} else {
		m.NextRunAt = s.computeNext(m.Schedule, now)
	}
	if err := s.store.Upsert(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info("mission created",
		slog.String("id", m.ID), slog.String("name", m.Name), slog.String("schedule", m.Schedule.Summary()))
	return &m, nil
}

// Update applies the present fields of the patch. nextRunAt is recomputed
// when the schedule, enable flag, status or any run timestamp changes, using
// the patched lastRunAt (or now) as baseline.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*Mission, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, fmt.Errorf("update %s: %w", id, ErrNotFound)
	}
	m := cur.Clone()
	recompute := false

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, invalidf("name", "must not be empty")
		}
		m.Name = name
	}
	if p.Description != nil {
		m.Description = strings.TrimSpace(*p.Description)
	}
	if p.Schedule != nil {
		sched, err := NormalizeSchedule(*p.Schedule)
		if err != nil {
			return nil, err
		}
		m.Schedule = sched
		recompute = true
	}
	if p.Priority != nil {
		m.Priority = clampPriority(*p.Priority)
	}
	if p.Tags != nil {
		m.Tags = normalizeTags(*p.Tags)
	}
	if p.Payload != nil {
		m.Payload = clonePayload(*p.Payload)
	}
	if p.Status != nil {
		if !ValidStatus(*p.Status) {
			return nil, invalidf("status", "unknown status %q", *p.Status)
		}
		// running and queued are owned by run transitions; a patched-in
		// running would persist without a lastRunAt and never be due again.
		if *p.Status == StatusRunning || *p.Status == StatusQueued {
			return nil, invalidf("status", "%q can only be set by a run, not a patch", *p.Status)
		}
		m.Status = *p.Status
		recompute = true
	}
	if p.Enable != nil {
		m.Enable = *p.Enable
		recompute = true
	}
	if p.LastRunAt != nil {
		t := p.LastRunAt.UTC()
		m.LastRunAt = &t
		recompute = true
	}
	if p.LastFinishedAt != nil {
		t := p.LastFinishedAt.UTC()
		m.LastFinishedAt = &t
		recompute = true
	}
	if p.LastRunError != nil {
		m.LastRunError = *p.LastRunError
	}

	now := s.now().UTC()
	m.UpdatedAt = now

	if !m.Enable {
		m.Status = StatusDisabled
		m.NextRunAt = nil
	} else {
		if m.Status == StatusDisabled {
			m.Status = StatusIdle
		}
		if m.Status == StatusFailed {
			// Failed missions stay parked until the operator resets the status.
			m.NextRunAt = nil
		} else if recompute {
			baseline := now
			if p.LastRunAt != nil {
				baseline = p.LastRunAt.UTC()
			}
			m.NextRunAt = s.computeNext(m.Schedule, baseline)
		}
	}

	if err := s.store.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Delete removes the mission and returns the deleted record.
func (s *Service) Delete(ctx context.Context, id string) (*Mission, error) {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return nil, err
	}
	if removed == nil {
		return nil, fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	s.log.Info("mission deleted", slog.String("id", id), slog.String("name", removed.Name))
	return removed, nil
}

// RecordRunStart marks the mission running and stamps lastRunAt.
func (s *Service) RecordRunStart(ctx context.Context, id string, startedAt time.Time) (*Mission, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, fmt.Errorf("record run start %s: %w", id, ErrNotFound)
	}
	m := cur.Clone()
	t := startedAt.UTC()
	m.Status = StatusRunning
	m.LastRunAt = &t
	m.LastRunError = ""
	m.UpdatedAt = s.now().UTC()
	if err := s.store.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordRunResult finalizes a run. Success recomputes nextRunAt from the
// finish time; failure parks the mission until an operator intervenes.
func (s *Service) RecordRunResult(ctx context.Context, id string, res RunResult) (*Mission, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, fmt.Errorf("record run result %s: %w", id, ErrNotFound)
	}
	m := cur.Clone()
	finished := res.FinishedAt.UTC()
	m.LastFinishedAt = &finished
	m.UpdatedAt = s.now().UTC()

	if res.Success {
		m.LastRunError = ""
		if m.Enable {
			m.Status = StatusIdle
			m.NextRunAt = s.computeNext(m.Schedule, finished)
		} else {
			m.Status = StatusDisabled
			m.NextRunAt = nil
		}
	} else {
		m.Status = StatusFailed
		m.LastRunError = res.Error
		m.NextRunAt = nil
	}

	if err := s.store.Upsert(ctx, m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) computeNext(sched Schedule, baseline time.Time) *time.Time {
	next, err := NextAfter(sched, baseline)
	if err != nil {
		s.log.Warn("failed to compute next run", slog.String("schedule", sched.Summary()), slog.Any("err", err))
		return nil
	}
	return next
}

func clampPriority(p int) int {
	if p < 0 {
		return 0
	}
	if p > 10 {
		return 10
	}
	return p
}

// normalizeTags lowercases, trims and deduplicates; the result is sorted
// since insertion order carries no meaning.
func normalizeTags(tags []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func containsStatus(set []Status, st Status) bool {
	for _, s := range set {
		if s == st {
			return true
		}
	}
	return false
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
