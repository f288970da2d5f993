package sequencer

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go-turing/debug"
	"go-turing/hwio"
	"go-turing/midi"
	"go-turing/mode"
	"go-turing/panel"
	"go-turing/sched"
	"go-turing/store"
	"go-turing/theme"
	"go-turing/turing"
)

const (
	eventBuffer   = 64
	deferredSlots = 32
	encoderDetent = 1
)

// LED refresh rate
const ledFPS = 30

// Saver persists the pattern store. store.Autosaver satisfies it.
type Saver interface {
	Trigger(snap store.Snapshot)
}

// Manager owns the register, the panel and the scheduler, and runs the main
// loop. Register state is only touched from the goroutine running Run (or
// Advance); everything else talks to it through the panel collaborators
// and Send.
type Manager struct {
	reg      *turing.Register
	ctrl     *mode.Controller
	timer    *sched.Timer
	deferred *sched.Deferred

	pins     *panel.Pins
	gates    *panel.GateIn
	encoder  *panel.Encoder
	toggle   *panel.Toggle
	bias     *panel.Cell
	cv       *panel.Cell
	faders   [8]*panel.Cell
	expander hwio.Expander
	octaves  int

	// Fader positions saved with each bank, recalled when the bank loads
	faderBanks [turing.NumBanks][8]float64

	triggerTicks int
	triggerSeq   uint64

	commands  chan mode.Command
	restores  chan store.Snapshot
	renderers []Renderer
	saver     Saver
	surface   surfaceMap
	theme     *theme.Theme

	mu  sync.RWMutex // guards out, controller, LED diff state
	out Outputs

	// LED rendering at fixed FPS
	controller midi.Controller
	ledDirty   bool                // true if LEDs need refresh
	prevLEDs   map[[2]int]LEDState // for diffing

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager creates a manager. clocks are extra gate sources (MIDI clock
// input) ORed with the manager's own software gates.
func NewManager(opts Options, clocks ...panel.PinReader) *Manager {
	opts.applyDefaults()

	m := &Manager{
		ctrl:         mode.NewController(turing.NumBanks),
		timer:        sched.NewTimer(opts.ServiceHz),
		deferred:     sched.NewDeferred(deferredSlots),
		pins:         &panel.Pins{},
		bias:         panel.NewCell(opts.Bias),
		cv:           panel.NewCell(0),
		octaves:      opts.Octaves,
		commands:     make(chan mode.Command, eventBuffer),
		restores:     make(chan store.Snapshot, 1),
		surface:      newSurfaceMap(opts.Surface),
		theme:        opts.Theme,
		prevLEDs:     make(map[[2]int]LEDState),
		UpdateChan:   make(chan struct{}, 1),
		triggerTicks: max(1, opts.TriggerMs*opts.ServiceHz/1000),
	}

	// Gesture windows are given in ms, the decoder counts ticks
	timing := panel.Timing{
		HoldMs:        opts.Timing.HoldMs * opts.ServiceHz / 1000,
		DoubleClickMs: opts.Timing.DoubleClickMs * opts.ServiceHz / 1000,
	}
	m.encoder = panel.NewEncoder(timing, encoderDetent, eventBuffer)
	m.toggle = panel.NewToggle(timing, eventBuffer)

	for i := range m.faders {
		m.faders[i] = panel.NewCell(float64(i+1) / 8)
		for b := range m.faderBanks {
			m.faderBanks[b][i] = m.faders[i].Read()
		}
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	stoch := turing.NewStochasticizer(m.bias, m.cv, rng)
	if opts.ThreshLow > 0 {
		stoch.ThreshLow = opts.ThreshLow
	}
	if opts.ThreshHigh > 0 {
		stoch.ThreshHigh = opts.ThreshHigh
	}
	if opts.ThreshCV > 0 {
		stoch.ThreshCV = opts.ThreshCV
	}
	m.reg = turing.NewRegister(stoch, rng, opts.ResetPolicy)

	m.gates = panel.NewGateIn(append(panel.AnyPins{m.pins}, clocks...))

	m.timer.Register(m.gates.Service)
	m.timer.Register(m.encoder.Service)
	m.timer.Register(m.toggle.Service)
	m.timer.Register(m.deferred.Service)
	if opts.InternalBPM > 0 {
		m.timer.Register(m.internalClock(opts.InternalBPM))
	}

	debug.Log("manager", "seed=%d policy=%s hz=%d bpm=%d", opts.Seed, opts.ResetPolicy, opts.ServiceHz, opts.InternalBPM)
	m.render(false)
	return m
}

// internalClock pulses the clock gate on sixteenth notes at bpm
func (m *Manager) internalClock(bpm int) func() {
	period := max(1, m.timer.Hz()*60/(bpm*4))
	count := 0
	return func() {
		count++
		if count >= period {
			count = 0
			m.pins.Pulse(panel.ClockGate)
		}
	}
}

// AddRenderer attaches an output. Call before Run.
func (m *Manager) AddRenderer(r Renderer) {
	m.renderers = append(m.renderers, r)
}

// SetSaver enables persisting the banks after every save. Call before Run.
func (m *Manager) SetSaver(s Saver) {
	m.saver = s
}

// Collaborators for input sources

func (m *Manager) Pins() *panel.Pins       { return m.pins }
func (m *Manager) Encoder() *panel.Encoder { return m.encoder }
func (m *Manager) Toggle() *panel.Toggle   { return m.toggle }
func (m *Manager) Bias() *panel.Cell       { return m.bias }
func (m *Manager) CV() *panel.Cell         { return m.cv }
func (m *Manager) Fader(i int) *panel.Cell { return m.faders[i&7] }
func (m *Manager) Theme() *theme.Theme     { return m.theme }
func (m *Manager) Timer() *sched.Timer     { return m.timer }

// Outputs returns the last published state. Safe from any goroutine.
func (m *Manager) Outputs() Outputs {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.out
}

// Send queues a command for the main loop. Safe from any goroutine.
func (m *Manager) Send(cmd mode.Command) {
	select {
	case m.commands <- cmd:
	default:
		debug.Warn("manager", "command dropped: %s", cmd)
	}
}

// Run drives the service tick, the LED refresh and the main loop until ctx
// is cancelled
func (m *Manager) Run(ctx context.Context) error {
	go m.timer.Run(ctx)
	go m.ledLoop(ctx)

	ticker := time.NewTicker(m.timer.Period())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Poll()
		}
	}
}

// Advance runs ticks service ticks, polling after each. It replaces Run for
// the simulator and tests.
func (m *Manager) Advance(ticks int) {
	for i := 0; i < ticks; i++ {
		m.timer.Tick()
		m.Poll()
	}
}

// Poll is one pass of the main loop
func (m *Manager) Poll() {
	if m.gates.ConsumeResetEdge() {
		m.reset()
		debug.Log("transport", "reset step=%d bank=%d", m.reg.Step(), m.reg.Bank())
		m.render(false)
	}

	if m.gates.ConsumeClockEdge() {
		m.step(1)
		debug.LogEvery(64, "transport", "clock step=%d reg=%04x", m.reg.Step(), m.reg.Pattern())
		m.render(true)
	}

	m.drainToggle()
	m.drainEvents()
	m.drainCommands()
	m.drainRestores()
	m.deferred.Drain()
	m.refresh()
}

func (m *Manager) drainToggle() {
	for {
		select {
		case th := <-m.toggle.Throws():
			m.handleToggle(th)
		default:
			return
		}
	}
}

func (m *Manager) handleToggle(th panel.Throw) {
	cmd := th.Resolve(m.ctrl.Performing())
	debug.Log("toggle", "%s -> %s", th.Gesture, cmd)
	switch cmd {
	case panel.SetBit:
		m.reg.SetBit()
	case panel.ClearBit:
		m.reg.ClearBit()
	case panel.Exit:
		m.ctrl.Cancel()
	case panel.MoreOctaves:
		m.octaves = hwio.ClampOctaves(m.octaves + 1)
		m.render(false)
	case panel.LessOctaves:
		m.octaves = hwio.ClampOctaves(m.octaves - 1)
		m.render(false)
	}
}

func (m *Manager) drainEvents() {
	handled := false
	for {
		select {
		case ev := <-m.encoder.Events():
			m.Dispatch(m.ctrl.Update(ev))
			handled = true
		default:
			// A cancelled mode resolves on the next update even without input
			if !handled && m.ctrl.Mode() == mode.Cancel {
				m.Dispatch(m.ctrl.Update(mode.None))
			}
			return
		}
	}
}

func (m *Manager) drainCommands() {
	for {
		select {
		case cmd := <-m.commands:
			m.Dispatch(cmd)
		default:
			return
		}
	}
}

// Dispatch carries out a command from the mode controller. Main loop only.
func (m *Manager) Dispatch(cmd mode.Command) {
	if cmd.Kind != mode.NoCmd {
		debug.Log("dispatch", "%s mode=%s", cmd, m.ctrl.Mode())
	}

	switch cmd.Kind {
	case mode.Step:
		m.step(int8(cmd.Val))
		m.render(true)
	case mode.Rotate:
		m.reg.Iterate(int8(cmd.Val), true)
		m.render(false)
	case mode.Length:
		m.reg.ChangeLength(int8(cmd.Val))
		m.render(false)
	case mode.Load:
		m.reg.SetNextPattern(cmd.Val)
		m.render(false)
	case mode.Save:
		m.reg.SavePattern(cmd.Val)
		m.saveFaders(cmd.Val)
		m.persist()
		m.render(false)
	case mode.ChangeMode, mode.Leds:
		m.render(false)
	}
}

func (m *Manager) faderSemitones() [8]int {
	var semis [8]int
	for i, f := range m.faders {
		semis[i] = hwio.FaderSemitones(f.Read(), m.octaves)
	}
	return semis
}

// render publishes the current state. fire marks a step that advanced the
// pattern: triggers go high and the CVs are recomputed.
func (m *Manager) render(fire bool) {
	m.mu.RLock()
	o := m.out
	m.mu.RUnlock()

	semis := m.faderSemitones()

	o.Clocked = fire
	o.Pattern = m.reg.Output()
	o.Register = m.reg.Pattern()
	o.Length = m.reg.Length()
	o.Step = int(m.reg.Step())
	o.Bank = m.reg.Bank()
	o.NextBank = m.reg.NextBank()
	o.LoadPending = m.reg.LoadPending()
	o.ResetPending = m.reg.ResetPending()
	o.Banks = m.reg.Banks()
	o.FaderBanks = m.faderBanks
	o.Mode = m.ctrl.Mode()
	o.Slot = m.ctrl.ActiveSlot()
	o.Octaves = m.octaves
	o.Bias = m.bias.Read()
	o.CVIn = m.cv.Read()
	o.Flash = m.timer.FlashBits()

	if fire {
		o.Triggers = m.reg.Triggers()
		o.CV = m.expander.Expand(o.Pattern, semis)
		o.DAC8 = hwio.DAC8(o.Pattern)
		o.Drunk = m.reg.DrunkenIndex()
		m.scheduleTriggersOff()
	}

	o.FaderLeds = FaderLeds(o.Pattern, semis)
	o.Leds = MainLeds(o)
	m.publish(o)
}

func (m *Manager) scheduleTriggersOff() {
	m.triggerSeq++
	seq := m.triggerSeq
	ok := m.deferred.After(m.triggerTicks, func() {
		// A newer step owns the triggers now
		if seq != m.triggerSeq {
			return
		}
		m.mu.RLock()
		o := m.out
		m.mu.RUnlock()
		o.Triggers = 0
		o.Clocked = false
		m.publish(o)
	})
	if !ok {
		debug.Warn("manager", "deferred arena full, triggers stay high until the next step")
	}
}

// refresh republishes when something changed without a command: blinking
// LEDs and knob moves
func (m *Manager) refresh() {
	m.mu.RLock()
	o := m.out
	m.mu.RUnlock()

	o.Flash = m.timer.FlashBits()
	leds := MainLeds(o)
	bias, cv := m.bias.Read(), m.cv.Read()
	if leds == o.Leds && bias == o.Bias && cv == o.CVIn {
		return
	}
	o.Leds = leds
	o.Bias = bias
	o.CVIn = cv
	o.Clocked = false
	m.publish(o)
}

func (m *Manager) publish(o Outputs) {
	m.mu.Lock()
	m.out = o
	m.ledDirty = true
	m.mu.Unlock()

	for _, r := range m.renderers {
		if err := r.Render(o); err != nil {
			debug.LogEvery(100, "render", "renderer failed: %v", err)
		}
	}
	m.notifyUpdate()
}

// notifyUpdate pokes the TUI without blocking
func (m *Manager) notifyUpdate() {
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}

// SetController sets the Launchpad used as the front panel
func (m *Manager) SetController(c midi.Controller) {
	debug.Log("ctrl", "SetController called, resetting diff state")
	m.mu.Lock()
	m.controller = c
	m.prevLEDs = make(map[[2]int]LEDState) // reset state - diff will handle clearing
	m.ledDirty = true
	m.mu.Unlock()
}

// ledLoop runs at fixed FPS and flushes LED updates
func (m *Manager) ledLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Second / ledFPS)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.flushLEDs()
		}
	}
}

// flushLEDs sends only changed LEDs to the controller (diffing + batching)
func (m *Manager) flushLEDs() {
	m.mu.Lock()
	if !m.ledDirty || m.controller == nil {
		m.mu.Unlock()
		return
	}
	m.ledDirty = false
	o := m.out
	ctrl := m.controller
	prev := m.prevLEDs
	m.mu.Unlock()

	updates, next := diffLEDs(prev, GridLEDs(o, m.theme))

	m.mu.Lock()
	m.prevLEDs = next
	m.mu.Unlock()

	if len(updates) > 0 {
		debug.Log("led", "flushLEDs: batch=%d prev=%d", len(updates), len(prev))
		if err := ctrl.SetLEDBatch(updates); err != nil {
			debug.LogEvery(50, "led", "send failed: %v", err)
		}
	}
}

// diffLEDs returns the updates needed to go from prev to leds, and the new
// state to diff against next time
func diffLEDs(prev map[[2]int]LEDState, leds []LEDState) ([]midi.LEDUpdate, map[[2]int]LEDState) {
	next := make(map[[2]int]LEDState, len(leds))
	var updates []midi.LEDUpdate

	for _, led := range leds {
		key := [2]int{led.Row, led.Col}
		next[key] = led

		// Only send if changed
		if p, ok := prev[key]; !ok || p != led {
			updates = append(updates, midi.LEDUpdate{
				Row:     led.Row,
				Col:     led.Col,
				Color:   led.Color,
				Channel: led.Channel,
			})
		}
	}

	// Clear LEDs that are no longer present
	for key := range prev {
		if _, ok := next[key]; !ok {
			updates = append(updates, midi.LEDUpdate{Row: key[0], Col: key[1]})
		}
	}
	return updates, next
}
