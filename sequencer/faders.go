package sequencer

import (
	"go-turing/debug"
	"go-turing/turing"
)

// step advances the pattern. A bank that lands on this step brings its
// fader positions with it.
func (m *Manager) step(n int8) {
	pending := m.reg.LoadPending()
	m.reg.Iterate(n, false)
	if pending && !m.reg.LoadPending() {
		m.recallFaders()
	}
}

// reset sends the pattern back to step 0, applying a staged load
func (m *Manager) reset() {
	pending := m.reg.LoadPending()
	m.reg.Reset()
	if pending && !m.reg.LoadPending() {
		m.recallFaders()
	}
}

// saveFaders stores the current fader positions with bank
func (m *Manager) saveFaders(bank int) {
	bank = turing.Wrap(bank, 0, turing.NumBanks-1)
	for i, f := range m.faders {
		m.faderBanks[bank][i] = f.Read()
	}
}

// recallFaders moves the faders to the positions saved with the current bank
func (m *Manager) recallFaders() {
	bank := m.reg.Bank()
	for i, f := range m.faders {
		f.Store(m.faderBanks[bank][i])
	}
	debug.Log("faders", "recalled bank=%d", bank)
}
