package store

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"go-turing/debug"
)

// DefaultAutosaveDelay is how long the banks must be left alone before they
// are written
const DefaultAutosaveDelay = 2 * time.Second

// Autosaver coalesces bursts of bank saves into one write
type Autosaver struct {
	store    *Store
	debounce func(f func())

	mu      sync.Mutex
	pending *Snapshot
	onError func(error)
}

// NewAutosaver writes to st once after things have been quiet for delay
func NewAutosaver(st *Store, delay time.Duration) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{
		store:    st,
		debounce: debounce.New(delay),
	}
}

// OnError sets a callback for failed writes. Failures are always logged.
func (a *Autosaver) OnError(fn func(error)) {
	a.mu.Lock()
	a.onError = fn
	a.mu.Unlock()
}

// Trigger schedules snap to be written. The caller must not modify it
// afterwards.
func (a *Autosaver) Trigger(snap Snapshot) {
	a.mu.Lock()
	a.pending = &snap
	a.mu.Unlock()
	a.debounce(a.write)
}

// Flush writes any pending snapshot now
func (a *Autosaver) Flush() error {
	return a.writeErr()
}

func (a *Autosaver) write() {
	_ = a.writeErr()
}

func (a *Autosaver) writeErr() error {
	a.mu.Lock()
	snap := a.pending
	a.pending = nil
	onError := a.onError
	a.mu.Unlock()

	if snap == nil {
		return nil
	}
	if err := a.store.WriteAutosave(snap); err != nil {
		debug.Warn("store", "autosave failed: %v", err)
		if onError != nil {
			onError(err)
		}
		return err
	}
	debug.Log("store", "autosaved id=%s", snap.ID)
	return nil
}
