// Package main is the entry point for missionctl.
// The CLI is the operator terminal tool for the mission API.
package main

import (
	"os"

	"missionplane/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
