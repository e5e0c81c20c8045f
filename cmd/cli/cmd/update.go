package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"missionplane/pkg/api"
)

var updateCmd = &cobra.Command{
	Use:   "update <mission-id>",
	Short: "Update fields of a mission",
	Long: `Patch a mission. Only the flags you pass are changed.

Example:
  missionctl update <id> --priority 8
  missionctl update <id> --cron "*/15 * * * *"
  missionctl update <id> --enable=false
  missionctl update <id> --status idle   # reset a failed mission`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		var req api.UpdateMissionRequest

		if flags.Changed("name") {
			v, _ := flags.GetString("name")
			req.Name = &v
		}
		if flags.Changed("description") {
			v, _ := flags.GetString("description")
			req.Description = &v
		}
		if flags.Changed("interval") {
			v, _ := flags.GetInt("interval")
			tz, _ := flags.GetString("timezone")
			req.Schedule = &api.Schedule{Kind: "interval", IntervalMinutes: v, Timezone: tz}
		}
		if flags.Changed("cron") {
			if req.Schedule != nil {
				cmd.Println("Error: pass only one of --interval and --cron")
				return
			}
			v, _ := flags.GetString("cron")
			tz, _ := flags.GetString("timezone")
			req.Schedule = &api.Schedule{Kind: "cron", Expression: v, Timezone: tz}
		}
		if flags.Changed("priority") {
			v, _ := flags.GetInt("priority")
			req.Priority = &v
		}
		if flags.Changed("tag") {
			v, _ := flags.GetStringSlice("tag")
			req.Tags = &v
		}
		if flags.Changed("payload") {
			raw, _ := flags.GetString("payload")
			var payload map[string]any
			if err := json.Unmarshal([]byte(raw), &payload); err != nil {
				cmd.Printf("Error: --payload is not valid JSON: %v\n", err)
				return
			}
			req.Payload = &payload
		}
		if flags.Changed("enable") {
			v, _ := flags.GetBool("enable")
			req.Enable = &v
		}
		if flags.Changed("status") {
			v, _ := flags.GetString("status")
			req.Status = &v
		}

		client := NewMissionClient(viper.GetString("url"))
		m, err := client.UpdateMission(args[0], req)
		if err != nil {
			if apiErr, ok := err.(*APIError); ok {
				cmd.Printf("Update failed (%d): %s\n", apiErr.StatusCode, apiErr.Message)
			} else {
				cmd.Printf("Update failed: %v\n", err)
			}
			return
		}

		out, _ := json.MarshalIndent(m, "", "  ")
		cmd.Println(string(out))
	},
}

func init() {
	flags := updateCmd.Flags()
	flags.String("name", "", "New name")
	flags.String("description", "", "New description")
	flags.Int("interval", 0, "Replace schedule with an interval in minutes")
	flags.String("cron", "", "Replace schedule with a cron expression")
	flags.String("timezone", "", "Timezone for a replaced schedule")
	flags.Int("priority", 0, fmt.Sprintf("New priority %d-%d", api.PriorityMin, api.PriorityMax))
	flags.StringSlice("tag", []string{}, "Replace the tag set (repeatable)")
	flags.String("payload", "", "Replace the payload with a JSON object")
	flags.Bool("enable", true, "Enable or disable the mission")
	flags.String("status", "", "Force a lifecycle status")

	rootCmd.AddCommand(updateCmd)
}
