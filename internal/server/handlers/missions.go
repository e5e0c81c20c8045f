package handlers

import (
	"net/http"
	"strings"

	"missionplane/internal/mission"
	"missionplane/pkg/api"
)

// ListMissions handles GET /api/missions.
// Query parameters: status (single or comma-separated), tag, include-disabled.
func (h *Handlers) ListMissions(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, false) {
		return
	}
	q := r.URL.Query()

	var f mission.Filter
	if raw := q.Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			st := mission.Status(s)
			if !mission.ValidStatus(st) {
				h.respondJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "unknown status " + s, Field: "status"})
				return
			}
			f.Statuses = append(f.Statuses, st)
		}
	}
	f.Tag = q.Get("tag")
	f.IncludeDisabled = q.Get("include-disabled") == "true" || q.Get("include-disabled") == "1"

	missions, err := h.svc.List(r.Context(), f)
	if err != nil {
		h.writeError(w, err)
		return
	}
	resp := api.ListMissionsResponse{Missions: make([]api.Mission, 0, len(missions))}
	for _, m := range missions {
		resp.Missions = append(resp.Missions, toAPIMission(m))
	}
	h.respondJSON(w, http.StatusOK, resp)
}

// GetMission handles GET /api/missions/{id}.
func (h *Handlers) GetMission(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, false) {
		return
	}
	m, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if m == nil {
		h.respondJSON(w, http.StatusNotFound, api.ErrorResponse{Error: "mission not found"})
		return
	}
	h.respondJSON(w, http.StatusOK, toAPIMission(*m))
}

// CreateMission handles POST /api/missions.
func (h *Handlers) CreateMission(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, false) {
		return
	}
	var req api.CreateMissionRequest
	if err := decodeStrict(r, &req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	m, err := h.svc.Create(r.Context(), mission.Draft{
		Name:        req.Name,
		Description: req.Description,
		Schedule:    fromAPISchedule(req.Schedule),
		Priority:    req.Priority,
		Tags:        req.Tags,
		Payload:     req.Payload,
		Enable:      req.Enable,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, toAPIMission(*m))
}

// UpdateMission handles PATCH /api/missions/{id}.
func (h *Handlers) UpdateMission(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, false) {
		return
	}
	var req api.UpdateMissionRequest
	if err := decodeStrict(r, &req); err != nil {
		h.respondJSON(w, http.StatusBadRequest, api.ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	patch := mission.Patch{
		Name:           req.Name,
		Description:    req.Description,
		Priority:       req.Priority,
		Tags:           req.Tags,
		Payload:        req.Payload,
		Enable:         req.Enable,
		LastRunAt:      req.LastRunAt,
		LastFinishedAt: req.LastFinishedAt,
		LastRunError:   req.LastRunError,
	}
	if req.Schedule != nil {
		s := fromAPISchedule(*req.Schedule)
		patch.Schedule = &s
	}
	if req.Status != nil {
		st := mission.Status(*req.Status)
		patch.Status = &st
	}
	m, err := h.svc.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toAPIMission(*m))
}

// DeleteMission handles DELETE /api/missions/{id}.
func (h *Handlers) DeleteMission(w http.ResponseWriter, r *http.Request) {
	if !h.guard(w, false) {
		return
	}
	m, err := h.svc.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toAPIMission(*m))
}
