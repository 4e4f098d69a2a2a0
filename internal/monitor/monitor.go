// Package monitor wires the report feed, the link-state tracker and the
// audio switcher into the long-running watch loop.
package monitor

import (
	"context"
	"log"
	"time"

	"autoswitch/internal/history"
	"autoswitch/internal/hiddev"
	"autoswitch/internal/linkstate"
)

// Dispatcher applies the external audio action for a confirmed state.
type Dispatcher interface {
	Apply(ctx context.Context, state linkstate.State) error
}

// Options configure a Monitor.
type Options struct {
	Tracker       *linkstate.Tracker
	Dispatcher    Dispatcher
	Reports       <-chan hiddev.Report
	CheckInterval time.Duration
	HistoryPath   string
}

// Monitor consumes reports and ticks on a single goroutine (the
// serialization point for the tracker) and hands dispatch targets to a
// separate applier goroutine, so a slow or hung switcher never stalls
// report delivery.
type Monitor struct {
	tracker       *linkstate.Tracker
	dispatcher    Dispatcher
	reports       <-chan hiddev.Report
	checkInterval time.Duration
	historyPath   string
}

func New(opts Options) *Monitor {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = 100 * time.Millisecond
	}
	return &Monitor{
		tracker:       opts.Tracker,
		dispatcher:    opts.Dispatcher,
		reports:       opts.Reports,
		checkInterval: opts.CheckInterval,
		historyPath:   opts.HistoryPath,
	}
}

// Run blocks until ctx is cancelled or the report channel closes.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	// Latest-wins pending slot between the loop and the applier: a
	// newer target replaces an undelivered older one.
	applyCh := make(chan linkstate.State, 1)
	applierCtx, cancelApplier := context.WithCancel(ctx)
	applierDone := make(chan struct{})
	go m.applier(applierCtx, applyCh, applierDone)

	defer func() {
		cancelApplier()
		<-applierDone
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case rep, ok := <-m.reports:
			if !ok {
				return nil
			}
			if tr, changed := m.tracker.HandleReport(time.Now(), rep.Data); changed {
				m.onTransition(tr, applyCh)
			}
		case <-ticker.C:
			if tr, changed := m.tracker.Tick(time.Now()); changed {
				m.onTransition(tr, applyCh)
			}
		}
	}
}

func (m *Monitor) onTransition(tr linkstate.Transition, applyCh chan linkstate.State) {
	log.Printf("state -> %v (%s)", tr.To, tr.Reason)

	if m.historyPath != "" {
		entry := history.Entry{
			Timestamp: time.Now(),
			State:     tr.To,
			Reason:    tr.Reason,
			Applied:   tr.Dispatch,
		}
		if err := history.Append(m.historyPath, entry); err != nil {
			log.Printf("history append failed: %v", err)
		}
	}

	if !tr.Dispatch {
		return
	}
	for {
		select {
		case applyCh <- tr.To:
			return
		default:
			// Drop the stale pending target and retry with the new one.
			select {
			case <-applyCh:
			default:
			}
		}
	}
}

func (m *Monitor) applier(ctx context.Context, applyCh <-chan linkstate.State, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case target := <-applyCh:
			if err := m.dispatcher.Apply(ctx, target); err != nil {
				log.Printf("audio switch failed target=%v: %v", target, err)
				continue
			}
			m.tracker.MarkApplied(time.Now())
			log.Printf("default playback routed for %v", target)
		}
	}
}
