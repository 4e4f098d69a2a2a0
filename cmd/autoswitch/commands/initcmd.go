package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"autoswitch/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file populated with the built-in defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgPath == "" {
			return fmt.Errorf("--config is required for init")
		}
		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("%s already exists, not overwriting", cfgPath)
		}
		if err := config.Save(cfgPath, config.Default()); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", cfgPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
