// Package handlers contains the HTTP handlers for the mission API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"missionplane/internal/config"
	"missionplane/internal/mission"
	"missionplane/internal/scheduler"
	"missionplane/pkg/api"
)

// Pinger is the readiness probe of the mission store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handlers and their dependencies.
type Handlers struct {
	svc   *mission.Service
	sched *scheduler.Scheduler
	store Pinger
	cfg   *config.Config
	log   *slog.Logger
}

// New creates a Handlers instance.
func New(svc *mission.Service, sched *scheduler.Scheduler, store Pinger, cfg *config.Config, log *slog.Logger) *Handlers {
	return &Handlers{svc: svc, sched: sched, store: store, cfg: cfg, log: log}
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps domain error kinds onto HTTP statuses.
func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var ve *mission.ValidationError
	switch {
	case errors.As(err, &ve):
		h.respondJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: ve.Reason, Field: ve.Field})
	case errors.Is(err, mission.ErrNotFound):
		h.respondJSON(w, http.StatusNotFound, api.ErrorResponse{Error: "mission not found"})
	case errors.Is(err, mission.ErrFeatureDisabled):
		h.respondJSON(w, http.StatusForbidden, api.ErrorResponse{Error: err.Error()})
	default:
		h.log.Error("request failed", slog.Any("err", err))
		h.respondJSON(w, http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
	}
}

// guard rejects the request when the missions feature is switched off.
// requireScheduler additionally checks the scheduler flag.
func (h *Handlers) guard(w http.ResponseWriter, requireScheduler bool) bool {
	if !h.cfg.Enabled {
		h.writeError(w, mission.ErrFeatureDisabled)
		return false
	}
	if requireScheduler && !h.cfg.SchedulerEnabled {
		h.respondJSON(w, http.StatusForbidden, api.ErrorResponse{Error: "mission scheduler is disabled"})
		return false
	}
	return true
}

// decodeStrict parses a JSON body, rejecting unknown fields.
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func toAPIMission(m mission.Mission) api.Mission {
	return api.Mission{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Schedule: api.Schedule{
			Kind:            string(m.Schedule.Kind),
			IntervalMinutes: m.Schedule.IntervalMinutes,
			Expression:      m.Schedule.Expression,
			Timezone:        m.Schedule.Timezone,
		},
		Priority:       m.Priority,
		Tags:           m.Tags,
		Payload:        m.Payload,
		Enable:         m.Enable,
		Status:         string(m.Status),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		NextRunAt:      m.NextRunAt,
		LastRunAt:      m.LastRunAt,
		LastFinishedAt: m.LastFinishedAt,
		LastRunError:   m.LastRunError,
	}
}

func fromAPISchedule(s api.Schedule) mission.Schedule {
	return mission.Schedule{
		Kind:            mission.ScheduleKind(s.Kind),
		IntervalMinutes: s.IntervalMinutes,
		Expression:      s.Expression,
		Timezone:        s.Timezone,
	}
}

func toAPIOutcome(o scheduler.RunOutcome) api.RunMissionResponse {
	return api.RunMissionResponse{
		MissionID: o.MissionID,
		Outcome:   string(o.Kind),
		Reason:    o.Reason,
		Result:    o.Result,
		Error:     o.Error,
	}
}
