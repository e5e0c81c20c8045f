package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Force one pass of the scheduler loop",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewMissionClient(viper.GetString("url"))
		report, err := client.Tick()
		if err != nil {
			cmd.Printf("Tick failed: %v\n", err)
			return
		}
		if report.Skipped {
			cmd.Println("Tick skipped: another tick is in progress")
			return
		}
		cmd.Printf("Tick done in %dms: evaluated %d, launched %d\n",
			report.Duration, report.Evaluated, report.Launched)
		for _, o := range report.Outcomes {
			switch o.Outcome {
			case "skipped":
				cmd.Printf("  %s skipped (%s)\n", o.MissionID, o.Reason)
			case "failed":
				cmd.Printf("  %s failed: %s\n", o.MissionID, o.Error)
			default:
				cmd.Printf("  %s %s\n", o.MissionID, o.Outcome)
			}
		}
		if report.Error != "" {
			cmd.Printf("Tick error: %s\n", report.Error)
		}
	},
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler loop",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewMissionClient(viper.GetString("url"))
		resp, err := client.StartScheduler()
		if err != nil {
			cmd.Printf("Start failed: %v\n", err)
			return
		}
		cmd.Printf("Scheduler running: %v\n", resp.Running)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the scheduler loop",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewMissionClient(viper.GetString("url"))
		resp, err := client.StopScheduler()
		if err != nil {
			cmd.Printf("Stop failed: %v\n", err)
			return
		}
		cmd.Printf("Scheduler running: %v\n", resp.Running)
	},
}

func init() {
	rootCmd.AddCommand(tickCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
}
