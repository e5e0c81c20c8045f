package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"missionplane/pkg/api"
)

// MissionClient handles API calls to the missionplane server.
type MissionClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewMissionClient creates a new client with the given base URL.
func NewMissionClient(baseURL string) *MissionClient {
	return &MissionClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Field      string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("API error (%d): %s: %s", e.StatusCode, e.Field, e.Message)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// do runs one request and decodes the JSON response into out (when non-nil).
func (c *MissionClient) do(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr api.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Error, Field: apiErr.Field}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// ListMissions sends GET /api/missions.
func (c *MissionClient) ListMissions(query string) ([]api.Mission, error) {
	var resp api.ListMissionsResponse
	if err := c.do(http.MethodGet, "/api/missions"+query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Missions, nil
}

// GetMission sends GET /api/missions/{id}.
func (c *MissionClient) GetMission(id string) (*api.Mission, error) {
	var m api.Mission
	if err := c.do(http.MethodGet, "/api/missions/"+id, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMission sends POST /api/missions.
func (c *MissionClient) CreateMission(req api.CreateMissionRequest) (*api.Mission, error) {
	var m api.Mission
	if err := c.do(http.MethodPost, "/api/missions", req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// UpdateMission sends PATCH /api/missions/{id}.
func (c *MissionClient) UpdateMission(id string, req api.UpdateMissionRequest) (*api.Mission, error) {
	var m api.Mission
	if err := c.do(http.MethodPatch, "/api/missions/"+id, req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// DeleteMission sends DELETE /api/missions/{id}.
func (c *MissionClient) DeleteMission(id string) (*api.Mission, error) {
	var m api.Mission
	if err := c.do(http.MethodDelete, "/api/missions/"+id, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// RunMission sends POST /api/missions/{id}/run.
func (c *MissionClient) RunMission(id string, forced bool) (*api.RunMissionResponse, error) {
	var resp api.RunMissionResponse
	if err := c.do(http.MethodPost, "/api/missions/"+id+"/run", api.RunMissionRequest{Forced: forced}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Tick sends POST /api/missions/tick.
func (c *MissionClient) Tick() (*api.TickResponse, error) {
	var resp api.TickResponse
	if err := c.do(http.MethodPost, "/api/missions/tick", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SchedulerState sends GET /api/missions/state.
func (c *MissionClient) SchedulerState() (*api.SchedulerStateResponse, error) {
	var resp api.SchedulerStateResponse
	if err := c.do(http.MethodGet, "/api/missions/state", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StartScheduler sends POST /api/missions/start.
func (c *MissionClient) StartScheduler() (*api.SchedulerControlResponse, error) {
	var resp api.SchedulerControlResponse
	if err := c.do(http.MethodPost, "/api/missions/start", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// StopScheduler sends POST /api/missions/stop.
func (c *MissionClient) StopScheduler() (*api.SchedulerControlResponse, error) {
	var resp api.SchedulerControlResponse
	if err := c.do(http.MethodPost, "/api/missions/stop", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
