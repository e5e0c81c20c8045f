package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show scheduler runtime state",
	Long:  `Show whether the scheduler loop is running and the metrics of the last tick.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := NewMissionClient(viper.GetString("url"))
		st, err := client.SchedulerState()
		if err != nil {
			cmd.Printf("Status failed: %v\n", err)
			return
		}

		running := "stopped"
		if st.Running {
			running = "running"
		}
		cmd.Printf("Scheduler: %s (interval %dms)\n", running, st.IntervalMs)
		cmd.Printf("Active runs: %d\n", st.ActiveRunCount)
		if st.LastTickStartedAt != nil {
			cmd.Printf("Last tick: started %s, took %dms, evaluated %d, launched %d\n",
				st.LastTickStartedAt.Format("2006-01-02 15:04:05Z"),
				st.LastTickDurationMs, st.LastTickEvaluated, st.LastTickLaunched)
		}
		if st.LastTickError != "" {
			cmd.Printf("Last tick error: %s\n", st.LastTickError)
		}
		if st.LastPersistedAt != nil {
			cmd.Printf("State persisted: %s (%s)\n",
				st.LastPersistedAt.Format("2006-01-02 15:04:05Z"), st.LastPersistReason)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
