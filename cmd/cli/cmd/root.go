package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "missionctl",
	Short: "missionctl is a command line tool for the missionplane scheduler",
	Long: `missionctl is the command-line interface for the missionplane scheduling core.

missionplane stores recurring work items ("missions") in a durable file-backed
store, computes their next-run times from interval or cron schedules and
dispatches due missions through a pluggable executor.

Common workflows:

  Create an hourly mission:
    missionctl create --name "hourly-sync" --interval 60

  Create a cron mission in a timezone:
    missionctl create --name "morning-report" --cron "0 9 * * *" --timezone America/New_York

  Run a mission immediately, even when not due:
    missionctl run <mission-id> --forced

  Force one pass of the scheduler loop:
    missionctl tick

  Inspect the scheduler:
    missionctl status

Configuration:
  Set the API endpoint via environment variables or a config file:
    MISSIONCTL_URL    API endpoint (default: http://localhost:7171)`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".missionctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".missionctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "MISSIONCTL_VARNAME"
	viper.SetEnvPrefix("MISSIONCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.missionctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:7171", "missionplane server URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
}
