package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <mission-id>",
	Short: "Delete a mission",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewMissionClient(viper.GetString("url"))
		m, err := client.DeleteMission(args[0])
		if err != nil {
			cmd.Printf("Delete failed: %v\n", err)
			return
		}
		cmd.Printf("✓ Mission %q deleted (id %s)\n", m.Name, m.ID)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
