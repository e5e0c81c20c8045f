package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:   "run <mission-id>",
	Short: "Dispatch a single mission now",
	Long: `Dispatch one mission through the executor.

By default the usual checks apply: a disabled or not-due mission is skipped.
--forced bypasses those checks; the per-mission concurrency guard always
applies.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		forced, _ := cmd.Flags().GetBool("forced")

		client := NewMissionClient(viper.GetString("url"))
		outcome, err := client.RunMission(args[0], forced)
		if err != nil {
			cmd.Printf("Run failed: %v\n", err)
			return
		}

		switch outcome.Outcome {
		case "completed":
			cmd.Printf("✓ Mission completed\n")
		case "skipped":
			cmd.Printf("Mission skipped: %s\n", outcome.Reason)
		case "failed":
			cmd.Printf("✗ Mission failed: %s\n", outcome.Error)
		default:
			cmd.Printf("Outcome: %s\n", outcome.Outcome)
		}
	},
}

func init() {
	runCmd.Flags().Bool("forced", false, "Run even if not due or disabled")

	rootCmd.AddCommand(runCmd)
}
