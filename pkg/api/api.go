// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and the server.
package api

import "time"

// Schedule is the wire form of a mission schedule. Kind may be omitted on
// input; the server infers interval vs cron from the populated field.
type Schedule struct {
	Kind            string `json:"kind,omitempty"`
	IntervalMinutes int    `json:"intervalMinutes,omitempty"`
	Expression      string `json:"expression,omitempty"`
	Timezone        string `json:"timezone,omitempty"`
}

// Mission is a mission record in API responses.
type Mission struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	Schedule       Schedule       `json:"schedule"`
	Priority       int            `json:"priority"`
	Tags           []string       `json:"tags"`
	Payload        map[string]any `json:"payload,omitempty"`
	Enable         bool           `json:"enable"`
	Status         string         `json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	NextRunAt      *time.Time     `json:"nextRunAt,omitempty"`
	LastRunAt      *time.Time     `json:"lastRunAt,omitempty"`
	LastFinishedAt *time.Time     `json:"lastFinishedAt,omitempty"`
	LastRunError   string         `json:"lastRunError,omitempty"`
}

// CreateMissionRequest is the request body for creating a mission.
type CreateMissionRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Schedule    Schedule       `json:"schedule"`
	Priority    int            `json:"priority,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
	Enable      *bool          `json:"enable,omitempty"`
}

// UpdateMissionRequest is the request body for patching a mission.
// Absent fields leave the record unchanged.
type UpdateMissionRequest struct {
	Name           *string         `json:"name,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Schedule       *Schedule       `json:"schedule,omitempty"`
	Priority       *int            `json:"priority,omitempty"`
	Tags           *[]string       `json:"tags,omitempty"`
	Payload        *map[string]any `json:"payload,omitempty"`
	Enable         *bool           `json:"enable,omitempty"`
	Status         *string         `json:"status,omitempty"`
	LastRunAt      *time.Time      `json:"lastRunAt,omitempty"`
	LastFinishedAt *time.Time      `json:"lastFinishedAt,omitempty"`
	LastRunError   *string         `json:"lastRunError,omitempty"`
}

// ListMissionsResponse wraps a mission listing.
type ListMissionsResponse struct {
	Missions []Mission `json:"missions"`
}

// RunMissionRequest is the request body for triggering a single mission.
type RunMissionRequest struct {
	Forced bool `json:"forced,omitempty"`
}

// RunMissionResponse reports the outcome of a manual run.
type RunMissionResponse struct {
	MissionID string `json:"missionId"`
	Outcome   string `json:"outcome"`
	Reason    string `json:"reason,omitempty"`
	Result    any    `json:"result,omitempty"`
	Error     string `json:"error,omitempty"`
}

// TickResponse reports the outcome of a manually triggered tick.
type TickResponse struct {
	Skipped   bool                 `json:"skipped,omitempty"`
	StartedAt time.Time            `json:"startedAt"`
	Duration  int64                `json:"durationMs"`
	Evaluated int                  `json:"evaluated"`
	Launched  int                  `json:"launched"`
	Outcomes  []RunMissionResponse `json:"outcomes,omitempty"`
	Error     string               `json:"error,omitempty"`
}

// SchedulerStateResponse mirrors the persisted runtime-state snapshot.
type SchedulerStateResponse struct {
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

// SchedulerControlResponse acknowledges start/stop requests.
type SchedulerControlResponse struct {
	Running bool `json:"running"`
}

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Mission priority bounds.
const (
	PriorityMin = 0
	PriorityMax = 10
)
