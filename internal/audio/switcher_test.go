package audio

import (
	"context"
	"errors"
	"strings"
	"testing"

	"autoswitch/internal/config"
	"autoswitch/internal/execx"
	"autoswitch/internal/linkstate"
)

type recordRunner struct {
	cmds []string
	err  error
}

func (r *recordRunner) Run(ctx context.Context, name string, args ...string) error {
	r.cmds = append(r.cmds, name+" "+strings.Join(args, " "))
	return r.err
}

var _ execx.Runner = (*recordRunner)(nil)

func newTestSwitcher(r execx.Runner) *Switcher {
	s := NewSwitcher(config.AudioConfig{
		SwitcherPath: "svv.exe",
		HeadsetName:  "Headset",
		SpeakerName:  "Speakers",
	}, r)
	s.locate = func(path string) (string, error) { return path, nil }
	return s
}

func TestApply_OnlineSetsBothRoles(t *testing.T) {
	t.Parallel()

	rr := &recordRunner{}
	s := newTestSwitcher(rr)

	if err := s.Apply(context.Background(), linkstate.StateOnline); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{
		"svv.exe /SetDefault Headset 1",
		"svv.exe /SetDefault Headset 2",
	}
	if len(rr.cmds) != len(want) {
		t.Fatalf("cmds=%v", rr.cmds)
	}
	for i := range want {
		if rr.cmds[i] != want[i] {
			t.Fatalf("cmd[%d]=%q, want %q", i, rr.cmds[i], want[i])
		}
	}
}

func TestApply_OfflineTargetsSpeakers(t *testing.T) {
	t.Parallel()

	rr := &recordRunner{}
	s := newTestSwitcher(rr)

	if err := s.Apply(context.Background(), linkstate.StateOffline); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(rr.cmds) == 0 || !strings.Contains(rr.cmds[0], "Speakers") {
		t.Fatalf("cmds=%v", rr.cmds)
	}
}

func TestApply_UnknownStateIsAnError(t *testing.T) {
	t.Parallel()

	rr := &recordRunner{}
	s := newTestSwitcher(rr)

	if err := s.Apply(context.Background(), linkstate.StateUnknown); err == nil {
		t.Fatal("expected error for unknown state")
	}
	if len(rr.cmds) != 0 {
		t.Fatalf("commands ran for unknown state: %v", rr.cmds)
	}
}

func TestSetDefault_CommandFailureStopsSequence(t *testing.T) {
	t.Parallel()

	rr := &recordRunner{err: errors.New("exit status 1")}
	s := newTestSwitcher(rr)

	err := s.SetDefault(context.Background(), "Headset")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(rr.cmds) != 1 {
		t.Fatalf("second role ran after first failed: %v", rr.cmds)
	}
}

func TestSetDefault_MissingBinary(t *testing.T) {
	t.Parallel()

	rr := &recordRunner{}
	s := NewSwitcher(config.AudioConfig{
		SwitcherPath: `C:\nonexistent\svv.exe`,
		HeadsetName:  "Headset",
		SpeakerName:  "Speakers",
	}, rr)

	err := s.SetDefault(context.Background(), "Headset")
	if !errors.Is(err, ErrSwitcherMissing) {
		t.Fatalf("err=%v, want ErrSwitcherMissing", err)
	}
	if len(rr.cmds) != 0 {
		t.Fatalf("commands ran without a binary: %v", rr.cmds)
	}
}
