package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"autoswitch/internal/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "autoswitch",
	Short:         "Switch default playback when the wireless headset links or unlinks",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (built-in defaults when omitted)")
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if cfgPath != "" {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("load config: %w", err)
		}
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
