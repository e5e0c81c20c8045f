package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"missionplane/pkg/api"
)

func TestStatusCommand(t *testing.T) {
	resetViper()

	started := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/missions/state" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(api.SchedulerStateResponse{
			Running:            true,
			IntervalMs:         30000,
			ActiveRunCount:     1,
			LastTickStartedAt:  &started,
			LastTickDurationMs: 42,
			LastTickEvaluated:  3,
			LastTickLaunched:   2,
		})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := stdout.String()
	for _, want := range []string{"running", "30000", "Active runs: 1", "evaluated 3", "launched 2"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestStatusCommand_ServerDown(t *testing.T) {
	resetViper()
	viper.Set("url", "http://127.0.0.1:1")

	var stdout bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stdout)
	rootCmd.SetArgs([]string{"status"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(stdout.String(), "Status failed") {
		t.Errorf("expected failure message, got: %s", stdout.String())
	}
}
