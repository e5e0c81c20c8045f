package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"missionplane/pkg/api"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new mission",
	Long: `Create a new mission with an interval or cron schedule.

Exactly one of --interval and --cron must be given.

Example:
  missionctl create --name "hourly-sync" --interval 60
  missionctl create --name "morning-report" --cron "0 9 * * *" --timezone America/New_York \
    --priority 5 --tag reports --payload '{"command":["sh","-c","make report"]}'`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		name, _ := flags.GetString("name")
		description, _ := flags.GetString("description")
		interval, _ := flags.GetInt("interval")
		cronExpr, _ := flags.GetString("cron")
		timezone, _ := flags.GetString("timezone")
		priority, _ := flags.GetInt("priority")
		tags, _ := flags.GetStringSlice("tag")
		payloadRaw, _ := flags.GetString("payload")
		disabled, _ := flags.GetBool("disabled")

		if name == "" {
			cmd.Println("Error: --name is required")
			return
		}
		if (interval > 0) == (cronExpr != "") {
			cmd.Println("Error: exactly one of --interval and --cron is required")
			return
		}

		req := api.CreateMissionRequest{
			Name:        name,
			Description: description,
			Priority:    priority,
			Tags:        tags,
		}
		if interval > 0 {
			req.Schedule = api.Schedule{Kind: "interval", IntervalMinutes: interval, Timezone: timezone}
		} else {
			req.Schedule = api.Schedule{Kind: "cron", Expression: cronExpr, Timezone: timezone}
		}
		if payloadRaw != "" {
			var payload map[string]any
			if err := json.Unmarshal([]byte(payloadRaw), &payload); err != nil {
				cmd.Printf("Error: --payload is not valid JSON: %v\n", err)
				return
			}
			req.Payload = payload
		}
		if disabled {
			f := false
			req.Enable = &f
		}

		client := NewMissionClient(viper.GetString("url"))
		m, err := client.CreateMission(req)
		if err != nil {
			if apiErr, ok := err.(*APIError); ok {
				cmd.Printf("Create failed (%d): %s\n", apiErr.StatusCode, apiErr.Message)
			} else {
				cmd.Printf("Create failed: %v\n", err)
			}
			return
		}

		next := "none"
		if m.NextRunAt != nil {
			next = m.NextRunAt.String()
		}
		cmd.Printf("✓ Mission created!\nID: %s\nStatus: %s\nNext run: %s\n", m.ID, m.Status, next)
	},
}

func init() {
	flags := createCmd.Flags()
	flags.StringP("name", "n", "", "Name of the mission (required)")
	flags.StringP("description", "d", "", "Optional description")
	flags.Int("interval", 0, "Interval schedule in minutes")
	flags.String("cron", "", "Cron schedule expression (5-7 fields)")
	flags.String("timezone", "", "IANA timezone for the schedule (default UTC)")
	flags.Int("priority", 0, fmt.Sprintf("Priority %d-%d (higher dispatches first)", api.PriorityMin, api.PriorityMax))
	flags.StringSlice("tag", []string{}, "Tag (repeatable)")
	flags.String("payload", "", "JSON object passed verbatim to the executor")
	flags.Bool("disabled", false, "Create the mission disabled")

	rootCmd.AddCommand(createCmd)
}
