// Package main provides the autoswitch CLI.
//
// Usage:
//
//	autoswitch [flags] <command>
//
// Commands:
//
//	run     - watch the headset receiver and switch default playback
//	devices - list HID interfaces matching the configured vendor/product id
//	switch  - invoke the audio switcher once, by hand
//
// Configuration is a YAML file passed with --config; built-in defaults
// apply when omitted.
package main

import (
	"errors"
	"fmt"
	"os"

	"autoswitch/cmd/autoswitch/commands"
	"autoswitch/internal/hiddev"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if errors.Is(err, hiddev.ErrNoDevice) {
			// Distinct status so wrappers can tell "receiver unplugged"
			// from other failures.
			os.Exit(3)
		}
		os.Exit(1)
	}
}
