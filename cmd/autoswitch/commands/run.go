package commands

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"autoswitch/internal/audio"
	"autoswitch/internal/config"
	"autoswitch/internal/hiddev"
	"autoswitch/internal/linkstate"
	"autoswitch/internal/monitor"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Watch the receiver and switch default playback on link changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Transition diagnostics are part of the tool's output, not
		// error chatter.
		log.SetOutput(os.Stdout)

		feed, err := hiddev.Open(cfg.Device.VendorID, cfg.Device.ProductID)
		if err != nil {
			return err
		}
		defer feed.Close()
		for _, path := range feed.Paths() {
			log.Printf("listening on %s", path)
		}

		tracker := linkstate.New(trackerOptions(cfg.Monitor))
		switcher := audio.NewSwitcher(cfg.Audio, nil)
		mon := monitor.New(monitor.Options{
			Tracker:       tracker,
			Dispatcher:    switcher,
			Reports:       feed.Reports(),
			CheckInterval: time.Duration(cfg.Monitor.CheckIntervalMS) * time.Millisecond,
			HistoryPath:   cfg.Monitor.HistoryPath,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Printf("watching link state mode=%s vendor=%#04x product=%#04x",
			cfg.Monitor.Mode, cfg.Device.VendorID, cfg.Device.ProductID)
		if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		log.Print("stopped")
		return nil
	},
}

func trackerOptions(mc config.MonitorConfig) linkstate.Options {
	mode := linkstate.ModeReconcile
	if mc.Mode == config.ModeAccumulate {
		mode = linkstate.ModeAccumulate
	}
	return linkstate.Options{
		Mode:         mode,
		Debounce:     time.Duration(mc.DebounceMS) * time.Millisecond,
		OnlineAfter:  mc.OnlineAfter,
		OfflineGrace: time.Duration(mc.OfflineGraceMS) * time.Millisecond,
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
