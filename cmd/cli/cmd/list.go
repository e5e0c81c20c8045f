package cmd

import (
	"fmt"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List missions",
	Long: `List missions known to the server.

Disabled missions are hidden unless --include-disabled is set.

Example:
  missionctl list
  missionctl list --status failed
  missionctl list --tag reports --include-disabled`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		status, _ := flags.GetString("status")
		tag, _ := flags.GetString("tag")
		includeDisabled, _ := flags.GetBool("include-disabled")

		q := url.Values{}
		if status != "" {
			q.Set("status", status)
		}
		if tag != "" {
			q.Set("tag", tag)
		}
		if includeDisabled {
			q.Set("include-disabled", "true")
		}
		query := ""
		if len(q) > 0 {
			query = "?" + q.Encode()
		}

		client := NewMissionClient(viper.GetString("url"))
		missions, err := client.ListMissions(query)
		if err != nil {
			cmd.Printf("List failed: %v\n", err)
			return
		}

		if len(missions) == 0 {
			cmd.Println("No missions")
			return
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTATUS\tPRIORITY\tSCHEDULE\tNEXT RUN")
		for _, m := range missions {
			next := "-"
			if m.NextRunAt != nil {
				next = m.NextRunAt.Format("2006-01-02 15:04:05Z")
			}
			sched := m.Schedule.Expression
			if m.Schedule.Kind == "interval" {
				sched = fmt.Sprintf("every %dm", m.Schedule.IntervalMinutes)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n", m.ID, m.Name, m.Status, m.Priority, sched, next)
		}
		w.Flush()
	},
}

func init() {
	flags := listCmd.Flags()
	flags.String("status", "", "Filter by status (single or comma-separated)")
	flags.String("tag", "", "Filter by tag (lowercase exact match)")
	flags.Bool("include-disabled", false, "Include disabled missions")

	rootCmd.AddCommand(listCmd)
}
