package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"go-turing/hwio"
	"go-turing/midi"
	"go-turing/mode"
	"go-turing/panel"
	"go-turing/sequencer"
	"go-turing/store"
	"go-turing/theme"
	"go-turing/widgets"
)

const knobStep = 1.0 / 16

type Model struct {
	Manager    *sequencer.Manager
	DeviceMgr  *midi.DeviceManager // nil without hardware
	Store      *store.Store        // nil disables ctrl+s
	Theme      *theme.Theme
	quitting   bool
	showGrid   bool
	controller midi.Controller // current Launchpad (may be nil)
	status     string
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(manager *sequencer.Manager, deviceMgr *midi.DeviceManager) Model {
	return Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
		Theme:     manager.Theme(),
		showGrid:  true,
	}
}

func ListenForUpdates(manager *sequencer.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Manager)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "g":
			m.showGrid = !m.showGrid
		case "ctrl+s":
			m.status = m.saveSnapshot()
		default:
			m.status = m.handleKey(msg.String())
		}

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			m.Manager.Attach(event.Controller)
			if event.Controller.Type() == midi.ControllerLaunchpad {
				m.controller = event.Controller
			}
			m.status = "connected " + event.ID
		case midi.DeviceDisconnected:
			m.Manager.Detach(event.ID)
			if m.controller != nil && m.controller.ID() == event.ID {
				m.controller = nil
			}
			m.status = "disconnected " + event.ID
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

// handleKey drives the panel from the keyboard. A terminal can't time a
// press, so button gestures are injected whole.
func (m Model) handleKey(key string) string {
	mgr := m.Manager
	enc := mgr.Encoder()

	switch key {
	case "left":
		enc.Turn(-1)
	case "right":
		enc.Turn(1)
	case "shift+left":
		enc.Inject(mode.ShiftLeft)
	case "shift+right":
		enc.Inject(mode.ShiftRight)
	case "enter":
		enc.Inject(mode.Click)
	case "d":
		enc.Inject(mode.DoubleClick)
	case "h":
		enc.Inject(mode.Hold)
	case "esc":
		enc.Inject(mode.CancelEvent)

	case "u":
		mgr.Toggle().Inject(panel.Throw{Up: true, Gesture: mode.Click})
	case "j":
		mgr.Toggle().Inject(panel.Throw{Gesture: mode.Click})
	case "+", "=":
		mgr.Toggle().Inject(panel.Throw{Up: true, Gesture: mode.DoubleClick})
	case "-", "_":
		mgr.Toggle().Inject(panel.Throw{Gesture: mode.DoubleClick})

	case " ":
		mgr.Pins().Pulse(panel.ClockGate)
	case "r":
		mgr.Pins().Pulse(panel.ResetGate)

	case "[":
		return fmt.Sprintf("bias %.2f", mgr.Bias().Nudge(-knobStep))
	case "]":
		return fmt.Sprintf("bias %.2f", mgr.Bias().Nudge(knobStep))
	case "{":
		return fmt.Sprintf("cv %.2f", mgr.CV().Nudge(-knobStep))
	case "}":
		return fmt.Sprintf("cv %.2f", mgr.CV().Nudge(knobStep))

	case "1", "2", "3", "4", "5", "6", "7", "8":
		i := int(key[0] - '1')
		f := mgr.Fader(i)
		if f.Read() >= 1 {
			f.Store(0)
		} else {
			f.Nudge(0.125)
		}
		return fmt.Sprintf("fader %d %.2f", i+1, f.Read())

	default:
		return ""
	}
	return key
}

// saveSnapshot writes the banks to a new timestamped file
func (m Model) saveSnapshot() string {
	if m.Store == nil {
		return "no store"
	}
	snap := m.Manager.Snapshot()
	info, err := m.Store.Save(&snap)
	if err != nil {
		return "save failed: " + err.Error()
	}
	return "saved " + info.Filename
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	o := m.Manager.Outputs()
	th := m.Theme
	sym := th.Symbols

	headerStyle := th.Style(theme.RoleAccent)
	dimStyle := th.Style(theme.RoleMuted)
	onStyle := th.Style(theme.RoleSuccess)
	regStyle := th.Style(theme.RoleFG)
	modeStyle := th.Style(theme.RoleWarning).Bold(true)
	cursorStyle := th.Style(theme.RoleCursor)

	deviceStatus := ""
	if m.controller != nil {
		deviceStatus = "  LP"
	}
	header := headerStyle.Render(fmt.Sprintf("go-turing  len:%2d step:%02d  bank:%d%s", o.Length, o.Position()+1, o.Bank+1, pending(o), deviceStatus))
	modeLine := modeStyle.Render(strings.ToUpper(o.Mode.String()))
	if o.Slot >= 0 {
		modeLine += dimStyle.Render(fmt.Sprintf("  slot %d", o.Slot+1))
	}

	// Register with a step cursor underneath
	var reg, ruler strings.Builder
	for i := 0; i < 16; i++ {
		switch {
		case i >= o.Length:
			reg.WriteString(dimStyle.Render(string(sym.Beyond)))
		case o.Register&(1<<i) != 0:
			reg.WriteString(regStyle.Render(string(sym.LedOn)))
		default:
			reg.WriteString(dimStyle.Render(string(sym.LedOff)))
		}
		if i == o.Position() {
			ruler.WriteString(cursorStyle.Render(string(sym.Current)))
		} else {
			ruler.WriteString(" ")
		}
		reg.WriteString(" ")
		ruler.WriteString(" ")
	}

	row := func(label string, v uint8) string {
		return dimStyle.Render(fmt.Sprintf("%-9s", label)) +
			widgets.RenderBits(uint16(v), 8, sym.LedOn, sym.LedOff, onStyle, dimStyle)
	}

	var cvs []string
	for i, semis := range o.CV {
		cvs = append(cvs, fmt.Sprintf("%c %+5.2fV", 'A'+i, hwio.Volts(semis)))
	}

	knobs := dimStyle.Render(fmt.Sprintf("bias %.2f  cv %.2f  oct %d  drunk %d  dac %3d",
		o.Bias, o.CVIn, o.Octaves, o.Drunk, o.DAC8))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("  ")
	out.WriteString(modeLine)
	out.WriteString("\n\n")
	out.WriteString(dimStyle.Render(fmt.Sprintf("%-9s", "register")) + reg.String() + "\n")
	out.WriteString(strings.Repeat(" ", 9) + ruler.String() + "\n")
	out.WriteString(row("leds", o.Leds) + "\n")
	out.WriteString(row("triggers", o.Triggers) + "\n")
	out.WriteString(row("faders", o.FaderLeds) + "\n")
	out.WriteString(dimStyle.Render(fmt.Sprintf("%-9s", "cv")) + strings.Join(cvs, "  ") + "\n")
	out.WriteString(knobs + "\n")

	if m.showGrid {
		var pads []widgets.Pad
		for _, led := range sequencer.GridLEDs(o, th) {
			pads = append(pads, widgets.Pad{Row: led.Row, Col: led.Col, Color: led.Color})
		}
		out.WriteString("\n")
		out.WriteString(widgets.RenderPadGrid(pads))
		out.WriteString("\n")
	}

	out.WriteString("\n")
	out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keyHelp)))
	if m.status != "" {
		out.WriteString("\n")
		out.WriteString(headerStyle.Render(m.status))
	}
	return out.String()
}

func pending(o sequencer.Outputs) string {
	switch {
	case o.LoadPending:
		return fmt.Sprintf(" -> %d", o.NextBank+1)
	case o.ResetPending:
		return " reset"
	}
	return ""
}

var keyHelp = []widgets.KeySection{
	{Title: "Encoder", Keys: []widgets.KeyBinding{
		{Key: "left/right", Desc: "turn"},
		{Key: "shift+arrow", Desc: "turn while pressed (rotate)"},
		{Key: "enter d h", Desc: "click, double click, hold"},
		{Key: "esc", Desc: "cancel"},
	}},
	{Title: "Panel", Keys: []widgets.KeyBinding{
		{Key: "u j", Desc: "write toggle up / down"},
		{Key: "+ -", Desc: "more / fewer octaves"},
		{Key: "space r", Desc: "clock / reset pulse"},
		{Key: "[ ] { }", Desc: "bias, cv"},
		{Key: "1-8", Desc: "step a fader"},
		{Key: "ctrl+s", Desc: "save banks to a new file"},
		{Key: "g q", Desc: "grid, quit"},
	}},
}
