package handlers

import (
	"net/http"

	"missionplane/pkg/api"
)

// RunMission handles POST /api/missions/{id}/run.
func (h *Handlers) RunMission(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, true) {
		return
	}
	var req api.RunMissionRequest
	if r.ContentLength > 0 {
		if err := decodeStrict(r, &req); err != nil {
			h.respondJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body: " + err.Error()})
			return
		}
	}
	outcome, err := h.sched.RunMission(r.Context(), r.PathValue("id"), req.Forced)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toAPIOutcome(outcome))
}

// Tick handles POST /api/missions/tick: one synchronous pass of the loop.
func (h *Handlers) Tick(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, true) {
		return
	}
	report := h.sched.Tick(r.Context())
	resp := api.TickResponse{
		Skipped:   report.Skipped,
		StartedAt: report.StartedAt,
		Duration:  report.Duration,
		Evaluated: report.Evaluated,
		Launched:  report.Launched,
		Error:     report.Error,
	}
	for _, o := range report.Outcomes {
		resp.Outcomes = append(resp.Outcomes, toAPIOutcome(o))
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// StartScheduler handles POST /api/missions/start.
func (h *Handlers) StartScheduler(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, true) {
		return
	}
	if err := h.sched.Start(); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, api.SchedulerControlResponse{Running: h.sched.Running()})
}

// StopScheduler handles POST /api/missions/stop.
func (h *Handlers) StopScheduler(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, true) {
		return
	}
	if err := h.sched.Stop(); err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, api.SchedulerControlResponse{Running: h.sched.Running()})
}

// SchedulerState handles GET /api/missions/state.
func (h *Handlers) SchedulerState(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, false) {
		return
	}
	st := h.sched.Snapshot()
	h.respondJSON(w, http.StatusOK, api.SchedulerStateResponse{
		Running:             st.Running,
		IntervalMs:          st.IntervalMs,
		ActiveRunCount:      st.ActiveRunCount,
		LastTickStartedAt:   st.LastTickStartedAt,
		LastTickCompletedAt: st.LastTickCompletedAt,
		LastTickDurationMs:  st.LastTickDurationMs,
		LastTickError:       st.LastTickError,
		LastTickEvaluated:   st.LastTickEvaluated,
		LastTickLaunched:    st.LastTickLaunched,
		LastPersistedAt:     st.LastPersistedAt,
		LastPersistReason:   st.LastPersistReason,
	})
}
