package sequencer

import (
	"go-turing/config"
	"go-turing/debug"
	"go-turing/midi"
	"go-turing/mode"
	"go-turing/panel"
)

// HandlePad maps a Launchpad pad onto the panel. Safe from any goroutine.
func (m *Manager) HandlePad(ev midi.PadEvent) {
	switch {
	case ev.Row == rowControls && ev.Col < 8:
		m.handleControlPad(ev.Col, ev.Pressed)

	case ev.Row == rowBanks && ev.Pressed:
		// Bank pads stage a load directly, like double-click + select
		m.Send(mode.Command{Kind: mode.Load, Val: ev.Col})

	case ev.Col == colSide && ev.Pressed:
		m.bias.Store(float64(ev.Row) / 7)

	case ev.Row == rowFaders && ev.Pressed:
		// Tap a fader LED to cycle it through off, half and full
		f := m.Fader(ev.Col)
		switch v := f.Read(); {
		case v == 0:
			f.Store(0.5)
		case v < 1:
			f.Store(1)
		default:
			f.Store(0)
		}
	}
}

func (m *Manager) handleControlPad(col int, pressed bool) {
	switch col {
	case padLeft:
		if pressed {
			m.encoder.Turn(-encoderDetent)
		}
	case padRight:
		if pressed {
			m.encoder.Turn(encoderDetent)
		}
	case padButton:
		m.encoder.Press(pressed)
	case padCancel:
		if pressed {
			m.encoder.Inject(mode.CancelEvent)
		}
	case padToggleDown:
		m.setToggle(panel.Down, pressed)
	case padToggleUp:
		m.setToggle(panel.Up, pressed)
	case padReset:
		if pressed {
			m.pins.Pulse(panel.ResetGate)
		}
	case padClock:
		if pressed {
			m.pins.Pulse(panel.ClockGate)
		}
	}
}

func (m *Manager) setToggle(p panel.Position, pressed bool) {
	if !pressed {
		p = panel.Center
	}
	m.toggle.Set(p)
}

// surfaceMap routes knob box controllers to cells
type surfaceMap struct {
	bias   uint8
	cv     uint8
	faders map[uint8]int
}

func newSurfaceMap(cfg config.SurfaceConfig) surfaceMap {
	s := surfaceMap{bias: cfg.BiasCC, cv: cfg.CVCC, faders: make(map[uint8]int)}
	for i, cc := range cfg.FaderCCs {
		if cc != 0 {
			s.faders[cc] = i
		}
	}
	return s
}

// HandleCC applies a knob move. Safe from any goroutine.
func (m *Manager) HandleCC(ev midi.CCEvent) {
	switch {
	case ev.Controller == m.surface.bias && m.surface.bias != 0:
		m.bias.StoreMIDI(ev.Value)
	case ev.Controller == m.surface.cv && m.surface.cv != 0:
		m.cv.StoreMIDI(ev.Value)
	default:
		if i, ok := m.surface.faders[ev.Controller]; ok {
			m.faders[i].StoreMIDI(ev.Value)
			return
		}
		debug.LogEvery(20, "surface", "unmapped cc=%d", ev.Controller)
	}
}

// Attach routes a controller's input into the manager until its channels
// close. Launchpads also become the LED face.
func (m *Manager) Attach(c midi.Controller) {
	if c.Type() == midi.ControllerLaunchpad {
		m.SetController(c)
	}
	go func() {
		for ev := range c.PadEvents() {
			m.HandlePad(ev)
		}
	}()
	go func() {
		for ev := range c.CCEvents() {
			m.HandleCC(ev)
		}
	}()
}

// Detach stops using c for LEDs if it was the face
func (m *Manager) Detach(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.controller != nil && m.controller.ID() == id {
		m.controller = nil
	}
}
