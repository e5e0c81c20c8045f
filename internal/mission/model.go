// Package mission contains the scheduling domain model: mission records,
// schedule evaluation and the service that owns all mission mutations.
package mission

import (
	"strconv"
	"time"
)

// Status represents the lifecycle state of a mission.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusDisabled  Status = "disabled"
	StatusFailed    Status = "failed"
	StatusCompleted Status = "completed"
)

// ValidStatus reports whether s is one of the known lifecycle states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusIdle, StatusQueued, StatusRunning, StatusPaused, StatusDisabled, StatusFailed, StatusCompleted:
		return true
	}
	return false
}

// ScheduleKind discriminates the schedule variant.
type ScheduleKind string

const (
	ScheduleInterval ScheduleKind = "interval"
	ScheduleCron     ScheduleKind = "cron"
)

// Schedule is the tagged schedule variant. Either IntervalMinutes (kind=interval)
// or Expression (kind=cron) is set; Timezone defaults to UTC when empty.
type Schedule struct {
	Kind            ScheduleKind `json:"kind"`
	IntervalMinutes int          `json:"intervalMinutes,omitempty"`
	Expression      string       `json:"expression,omitempty"`
	Timezone        string       `json:"timezone,omitempty"`
}

// Summary returns a short human-readable description used in telemetry projections.
func (s Schedule) Summary() string {
	switch s.Kind {
	case ScheduleInterval:
		return "every " + strconv.Itoa(s.IntervalMinutes) + "m"
	case ScheduleCron:
		if s.Timezone != "" {
			return "cron " + s.Expression + " @" + s.Timezone
		}
		return "cron " + s.Expression
	}
	return string(s.Kind)
}

// Mission is the unit of scheduled work. Records handed out by the store and
// service are defensive copies; callers never share underlying maps or slices.
type Mission struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Schedule       Schedule       `json:"schedule"`
	Priority       int            `json:"priority"`
	Tags           []string       `json:"tags"`
	Payload        map[string]any `json:"payload,omitempty"`
	Enable         bool           `json:"enable"`
	Status         Status         `json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	NextRunAt      *time.Time     `json:"nextRunAt,omitempty"`
	LastRunAt      *time.Time     `json:"lastRunAt,omitempty"`
	LastFinishedAt *time.Time     `json:"lastFinishedAt,omitempty"`
	LastRunError   string         `json:"lastRunError,omitempty"`
}

// Clone returns a deep copy of the mission.
func (m Mission) Clone() Mission {
	out := m
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	if m.Payload != nil {
		out.Payload = clonePayload(m.Payload)
	}
	out.NextRunAt = cloneTime(m.NextRunAt)
	out.LastRunAt = cloneTime(m.LastRunAt)
	out.LastFinishedAt = cloneTime(m.LastFinishedAt)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func clonePayload(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return clonePayload(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// View is the sanitized projection attached to telemetry events.
// It is safe to serialize and never carries the raw payload.
type View struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Status          Status     `json:"status"`
	Priority        int        `json:"priority"`
	Enable          bool       `json:"enable"`
	ScheduleSummary string     `json:"schedule"`
	Tags            []string   `json:"tags,omitempty"`
	NextRunAt       *time.Time `json:"nextRunAt,omitempty"`
	LastRunAt       *time.Time `json:"lastRunAt,omitempty"`
	LastFinishedAt  *time.Time `json:"lastFinishedAt,omitempty"`
	LastRunError    string     `json:"lastRunError,omitempty"`
}

// maxViewTags caps the tag list on telemetry projections.
const maxViewTags = 12

// View returns the telemetry projection of the mission.
func (m Mission) View() View {
	tags := m.Tags
	if len(tags) > maxViewTags {
		tags = tags[:maxViewTags]
	}
	return View{
		ID:              m.ID,
		Name:            m.Name,
		Status:          m.Status,
		Priority:        m.Priority,
		Enable:          m.Enable,
		ScheduleSummary: m.Schedule.Summary(),
		Tags:            append([]string(nil), tags...),
		NextRunAt:       cloneTime(m.NextRunAt),
		LastRunAt:       cloneTime(m.LastRunAt),
		LastFinishedAt:  cloneTime(m.LastFinishedAt),
		LastRunError:    m.LastRunError,
	}
}
