package sequencer

import (
	"go-turing/debug"
	"go-turing/store"
)

// Snapshot returns the pattern store as last published. Safe from any
// goroutine.
func (m *Manager) Snapshot() store.Snapshot {
	o := m.Outputs()
	return store.Snapshot{Banks: o.Banks, Bank: o.Bank, Faders: o.FaderBanks[:]}
}

// Restore queues a snapshot to replace the banks. The snapshot's bank is
// loaded straight away with its length and faders, and the pattern starts
// from its first step.
func (m *Manager) Restore(snap store.Snapshot) {
	select {
	case m.restores <- snap:
	default:
		debug.Warn("manager", "restore dropped, one is already queued")
	}
}

func (m *Manager) drainRestores() {
	select {
	case snap := <-m.restores:
		m.reg.Restore(snap.Banks)
		if len(snap.Faders) == 0 {
			// Saves without fader memory keep the panel as it is on every bank
			for b := range m.faderBanks {
				m.saveFaders(b)
			}
		} else {
			copy(m.faderBanks[:], snap.Faders)
		}
		m.reg.SetNextPattern(snap.Bank)
		m.reset()
		debug.Log("store", "restored id=%s bank=%d faders=%d", snap.ID, snap.Bank, len(snap.Faders))
		m.render(false)
	default:
	}
}

// persist hands the banks to the saver after a save
func (m *Manager) persist() {
	if m.saver == nil {
		return
	}
	faders := m.faderBanks
	m.saver.Trigger(store.Snapshot{
		Banks:  m.reg.Banks(),
		Bank:   m.reg.Bank(),
		Faders: faders[:],
	})
}
