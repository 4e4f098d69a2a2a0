package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"autoswitch/internal/hiddev"
	"autoswitch/internal/linkstate"
)

var (
	hbOnline  = []byte{0x01, 1, 6}
	hbOffline = []byte{0x01, 0, 18}
	powerOn   = []byte{0x03, 0, 1, 54, 0, 2}
)

type fakeDispatcher struct {
	mu      sync.Mutex
	applied []linkstate.State
	notify  chan linkstate.State
	err     error
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{notify: make(chan linkstate.State, 16)}
}

func (d *fakeDispatcher) Apply(ctx context.Context, state linkstate.State) error {
	d.mu.Lock()
	d.applied = append(d.applied, state)
	d.mu.Unlock()
	d.notify <- state
	return d.err
}

func (d *fakeDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.applied)
}

func waitDispatch(t *testing.T, d *fakeDispatcher, want linkstate.State, timeout time.Duration) {
	t.Helper()
	select {
	case got := <-d.notify:
		if got != want {
			t.Fatalf("dispatched %v, want %v", got, want)
		}
	case <-time.After(timeout):
		t.Fatalf("no %v dispatch within %v", want, timeout)
	}
}

func expectQuiet(t *testing.T, d *fakeDispatcher, window time.Duration) {
	t.Helper()
	select {
	case got := <-d.notify:
		t.Fatalf("unexpected dispatch of %v", got)
	case <-time.After(window):
	}
}

func startMonitor(t *testing.T, tracker *linkstate.Tracker, d Dispatcher) (chan<- hiddev.Report, context.CancelFunc) {
	t.Helper()
	reports := make(chan hiddev.Report)
	m := New(Options{
		Tracker:       tracker,
		Dispatcher:    d,
		Reports:       reports,
		CheckInterval: 10 * time.Millisecond,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("monitor did not stop")
		}
	})
	return reports, cancel
}

func TestRun_AccumulateEndToEnd(t *testing.T) {
	t.Parallel()

	tracker := linkstate.New(linkstate.Options{
		Mode:         linkstate.ModeAccumulate,
		OnlineAfter:  3,
		OfflineGrace: 100 * time.Millisecond,
	})
	d := newFakeDispatcher()
	reports, _ := startMonitor(t, tracker, d)

	// Burst of heartbeats: exactly one online dispatch at the third.
	for i := 0; i < 3; i++ {
		reports <- hiddev.Report{Data: hbOnline}
		time.Sleep(5 * time.Millisecond)
	}
	waitDispatch(t, d, linkstate.StateOnline, time.Second)

	// Then silence: one offline dispatch once the grace window expires.
	waitDispatch(t, d, linkstate.StateOffline, time.Second)

	// Counter was reset; continued silence dispatches nothing more.
	expectQuiet(t, d, 150*time.Millisecond)

	if d.count() != 2 {
		t.Fatalf("dispatch count = %d, want 2", d.count())
	}
}

func TestRun_ReconcileEndToEnd(t *testing.T) {
	t.Parallel()

	tracker := linkstate.New(linkstate.Options{
		Mode:     linkstate.ModeReconcile,
		Debounce: 20 * time.Millisecond,
	})
	d := newFakeDispatcher()
	reports, _ := startMonitor(t, tracker, d)

	// Offline heartbeat establishes desired+confirmed offline.
	reports <- hiddev.Report{Data: hbOffline}
	waitDispatch(t, d, linkstate.StateOffline, time.Second)

	// Outside the debounce window a power-on dispatches immediately.
	time.Sleep(30 * time.Millisecond)
	reports <- hiddev.Report{Data: powerOn}
	waitDispatch(t, d, linkstate.StateOnline, time.Second)

	// A second power-on while already online changes nothing.
	reports <- hiddev.Report{Data: powerOn}
	expectQuiet(t, d, 100*time.Millisecond)

	if d.count() != 2 {
		t.Fatalf("dispatch count = %d, want 2", d.count())
	}
}

func TestRun_MalformedReportsAreHarmless(t *testing.T) {
	t.Parallel()

	tracker := linkstate.New(linkstate.Options{Mode: linkstate.ModeReconcile})
	d := newFakeDispatcher()
	reports, _ := startMonitor(t, tracker, d)

	for _, data := range [][]byte{nil, {}, {0xFF}, {0x03, 1, 2}} {
		reports <- hiddev.Report{Data: data}
	}
	expectQuiet(t, d, 100*time.Millisecond)
	if tracker.State() != linkstate.StateUnknown {
		t.Fatalf("state = %v", tracker.State())
	}
}

func TestRun_StopsWhenFeedCloses(t *testing.T) {
	t.Parallel()

	tracker := linkstate.New(linkstate.Options{})
	reports := make(chan hiddev.Report)
	m := New(Options{
		Tracker:       tracker,
		Dispatcher:    newFakeDispatcher(),
		Reports:       reports,
		CheckInterval: 10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- m.Run(ctx) }()

	close(reports)
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after feed close")
	}
}
