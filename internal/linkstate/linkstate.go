// Package linkstate holds the link-state machine for the headset
// receiver. It turns the classified report stream plus periodic ticks
// into confirmed ONLINE/OFFLINE transitions and decides when the
// external audio switch may run.
package linkstate

import (
	"sync"
	"time"

	"autoswitch/internal/report"
)

// State is the confirmed link state the process has acted on.
type State int

const (
	StateUnknown State = iota
	StateOnline
	StateOffline
)

func (s State) String() string {
	switch s {
	case StateOnline:
		return "ONLINE"
	case StateOffline:
		return "OFFLINE"
	default:
		return "UNKNOWN"
	}
}

// Mode selects which transition strategy the tracker runs.
type Mode int

const (
	// ModeReconcile keeps a desired/confirmed split: power events force
	// transitions, heartbeats advise, and ticks re-apply a desired state
	// that failed to stick. Dispatches are debounced.
	ModeReconcile Mode = iota
	// ModeAccumulate counts heartbeat-kind frames toward an online
	// threshold and declares offline after a silence grace window.
	ModeAccumulate
)

// Options configure a Tracker. Zero values get calibrated defaults.
type Options struct {
	Mode         Mode
	Debounce     time.Duration // reconcile: min gap between dispatches
	OnlineAfter  int           // accumulate: heartbeat frames to go online
	OfflineGrace time.Duration // accumulate: silence before offline
}

// Defaults tuned against the VOID receiver's observed report cadence,
// not derived from any documented protocol guarantee.
const (
	DefaultDebounce     = 500 * time.Millisecond
	DefaultOnlineAfter  = 3
	DefaultOfflineGrace = time.Second
)

// Transition describes one confirmed state change. Dispatch reports
// whether the external action should run for it; the state change itself
// is already applied either way.
type Transition struct {
	To       State
	Reason   string
	Dispatch bool
}

// Tracker is the single exclusion domain for all link-state bookkeeping.
// HandleReport and Tick are expected from the monitor loop; MarkApplied
// may arrive from the goroutine that ran the external action.
type Tracker struct {
	mu   sync.Mutex
	opts Options

	state   State
	desired State

	lastReceive   time.Time
	lastOnlineHB  time.Time
	lastOfflineHB time.Time
	lastAction    time.Time

	hbCount int
}

func New(opts Options) *Tracker {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.OnlineAfter <= 0 {
		opts.OnlineAfter = DefaultOnlineAfter
	}
	if opts.OfflineGrace <= 0 {
		opts.OfflineGrace = DefaultOfflineGrace
	}
	return &Tracker{opts: opts}
}

// State returns the confirmed link state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// MarkApplied records that the external action ran successfully at now.
// Failed attempts do not advance the debounce clock, so the next
// transition may retry immediately.
func (t *Tracker) MarkApplied(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastAction = now
}

// HandleReport consumes one raw report. It returns the transition it
// applied, if any.
func (t *Tracker) HandleReport(now time.Time, data []byte) (Transition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastReceive = now

	if t.opts.Mode == ModeAccumulate {
		return t.accumulateReport(data)
	}
	return t.reconcileReport(now, data)
}

// Tick runs the periodic check: reconciliation in reconcile mode,
// silence-grace expiry in accumulate mode.
func (t *Tracker) Tick(now time.Time) (Transition, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.opts.Mode == ModeAccumulate {
		return t.accumulateTick(now)
	}
	return t.reconcileTick(now)
}

func (t *Tracker) reconcileReport(now time.Time, data []byte) (Transition, bool) {
	switch report.Classify(data) {
	case report.EventPowerOn:
		t.desired = StateOnline
		return t.apply(now, StateOnline, "power-on event")
	case report.EventPowerOff:
		t.desired = StateOffline
		return t.apply(now, StateOffline, "power-off event")
	case report.EventHeartbeatOnline:
		t.lastOnlineHB = now
		t.desired = StateOnline
		if t.state != StateOnline {
			return t.apply(now, StateOnline, "online heartbeat")
		}
	case report.EventHeartbeatOffline:
		t.lastOfflineHB = now
		t.desired = StateOffline
		if t.state != StateOffline {
			return t.apply(now, StateOffline, "offline heartbeat")
		}
	}
	return Transition{}, false
}

func (t *Tracker) reconcileTick(now time.Time) (Transition, bool) {
	if t.desired == t.state {
		return Transition{}, false
	}
	// Reconcile only toward a state we have heartbeat evidence for; a
	// desired state with no sighting of its heartbeat kind stays pending.
	switch t.desired {
	case StateOnline:
		if !t.lastOnlineHB.IsZero() {
			return t.apply(now, StateOnline, "reconcile to desired online")
		}
	case StateOffline:
		if !t.lastOfflineHB.IsZero() {
			return t.apply(now, StateOffline, "reconcile to desired offline")
		}
	}
	return Transition{}, false
}

// apply commits a confirmed transition. No-op when the state already
// matches. The dispatch decision is debounced against the last successful
// action; the state change itself is never rate-limited.
func (t *Tracker) apply(now time.Time, to State, reason string) (Transition, bool) {
	if to == t.state {
		return Transition{}, false
	}
	t.state = to
	dispatch := t.lastAction.IsZero() || now.Sub(t.lastAction) >= t.opts.Debounce
	return Transition{To: to, Reason: reason, Dispatch: dispatch}, true
}

func (t *Tracker) accumulateReport(data []byte) (Transition, bool) {
	if !report.IsHeartbeatFrame(data) {
		return Transition{}, false
	}
	if t.hbCount < t.opts.OnlineAfter {
		t.hbCount++
	}
	if t.hbCount >= t.opts.OnlineAfter && t.state != StateOnline {
		t.state = StateOnline
		return Transition{To: StateOnline, Reason: "heartbeat threshold reached", Dispatch: true}, true
	}
	return Transition{}, false
}

func (t *Tracker) accumulateTick(now time.Time) (Transition, bool) {
	if t.state != StateOnline {
		return Transition{}, false
	}
	if t.lastReceive.IsZero() || now.Sub(t.lastReceive) <= t.opts.OfflineGrace {
		return Transition{}, false
	}
	t.state = StateOffline
	t.hbCount = 0
	return Transition{To: StateOffline, Reason: "silence past grace window", Dispatch: true}, true
}
