package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"autoswitch/internal/audio"
	"autoswitch/internal/linkstate"
)

var switchCmd = &cobra.Command{
	Use:   "switch (online|offline)",
	Short: "Invoke the audio switcher once, for configuration testing",
	Long: `Run the configured switcher as if the given link state had just been
confirmed: "online" routes playback to the headset, "offline" to the
speakers.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"online", "offline"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var target linkstate.State
		switch args[0] {
		case "online":
			target = linkstate.StateOnline
		case "offline":
			target = linkstate.StateOffline
		default:
			return fmt.Errorf("unknown target %q (want online or offline)", args[0])
		}

		switcher := audio.NewSwitcher(cfg.Audio, nil)
		if err := switcher.Apply(context.Background(), target); err != nil {
			return err
		}
		fmt.Printf("default playback routed for %v\n", target)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(switchCmd)
}
