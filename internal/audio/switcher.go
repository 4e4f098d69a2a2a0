// Package audio invokes the external switcher binary that changes the
// OS default playback device.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"autoswitch/internal/config"
	"autoswitch/internal/execx"
	"autoswitch/internal/linkstate"
)

// ErrSwitcherMissing marks a configuration problem: the switcher binary
// is not present. Callers report it and keep monitoring.
var ErrSwitcherMissing = errors.New("audio switcher binary not found")

// Switcher runs the set-default commands. It is injectable for unit
// tests via execx.Runner.
type Switcher struct {
	r       execx.Runner
	path    string
	headset string
	speaker string
	timeout time.Duration

	locate func(string) (string, error)
}

func NewSwitcher(cfg config.AudioConfig, r execx.Runner) *Switcher {
	if r == nil {
		// The switcher binary's stdout is noise; only stderr matters.
		r = execx.NewOSRunner(io.Discard, os.Stderr)
	}
	timeout := time.Duration(cfg.CommandTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultCommandTimeoutSec) * time.Second
	}
	return &Switcher{
		r:       r,
		path:    cfg.SwitcherPath,
		headset: cfg.HeadsetName,
		speaker: cfg.SpeakerName,
		timeout: timeout,
		locate:  locateBinary,
	}
}

// Apply routes default playback to the device name configured for the
// given link state. Repeated calls with the same target are harmless.
func (s *Switcher) Apply(ctx context.Context, state linkstate.State) error {
	switch state {
	case linkstate.StateOnline:
		return s.SetDefault(ctx, s.headset)
	case linkstate.StateOffline:
		return s.SetDefault(ctx, s.speaker)
	}
	return fmt.Errorf("no playback target for state %v", state)
}

// SetDefault makes name the default output device and the default
// communications device. Both calls must succeed. The whole invocation
// is bounded by the configured command timeout.
func (s *Switcher) SetDefault(ctx context.Context, name string) error {
	bin, err := s.locate(s.path)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Role 1 = default output, role 2 = default communications.
	if err := s.r.Run(ctx, bin, "/SetDefault", name, "1"); err != nil {
		return fmt.Errorf("set default output to %q: %w", name, err)
	}
	if err := s.r.Run(ctx, bin, "/SetDefault", name, "2"); err != nil {
		return fmt.Errorf("set default communications to %q: %w", name, err)
	}
	return nil
}

func locateBinary(path string) (string, error) {
	if strings.ContainsAny(path, `/\`) {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrSwitcherMissing, path)
		}
		return path, nil
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrSwitcherMissing, path)
	}
	return resolved, nil
}
