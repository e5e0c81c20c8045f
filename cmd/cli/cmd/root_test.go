package cmd

import (
	"github.com/spf13/viper"
)

// resetViper clears viper state between tests.
func resetViper() {
	viper.Reset()
	viper.SetEnvPrefix("MISSIONCTL")
	viper.AutomaticEnv()
}
