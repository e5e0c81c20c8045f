package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <mission-id>",
	Short: "Show the full record of a mission",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewMissionClient(viper.GetString("url"))
		m, err := client.GetMission(args[0])
		if err != nil {
			cmd.Printf("Inspect failed: %v\n", err)
			return
		}
		out, _ := json.MarshalIndent(m, "", "  ")
		cmd.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
