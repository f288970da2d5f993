// Package mode turns front-panel gestures into sequencer commands.
//
//	performance + click          -> edit length
//	edit length + encoder        -> change length (applies live)
//	edit length + click          -> back to performance
//
//	performance + double click   -> pick a pattern to load
//	load + encoder               -> select slot
//	load + double click          -> load on the next downbeat, back to performance
//
//	performance + hold           -> pick a slot to save into
//	save + encoder               -> select slot
//	save + hold                  -> save, back to performance
//
//	performance + encoder        -> step the sequencer forward/back
//	performance + shift+encoder  -> rotate the pattern without moving the step
//
// Cancel (or the write toggle outside performance) backs out of save/load
// without committing anything.
package mode

import "fmt"

// Mode is a front panel editing mode
type Mode int

const (
	Performance Mode = iota
	ChangeLength
	PatternSave
	PatternLoad
	Cancel // transient, resolves to Performance on the next update
)

var modeNames = []string{"Performance", "Length", "Save", "Load", "Cancel"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// Event is a discrete gesture from the encoder and its button
type Event int

const (
	None Event = iota
	RotateLeft
	RotateRight
	Click
	DoubleClick
	Hold
	CancelEvent
	ShiftLeft  // rotated left while the button was down
	ShiftRight // rotated right while the button was down
	Press
	ClickHold
)

var eventNames = []string{
	"None", "Left", "Right", "Click", "DoubleClick", "Hold",
	"Cancel", "ShiftLeft", "ShiftRight", "Press", "ClickHold",
}

func (e Event) String() string {
	if e < 0 || int(e) >= len(eventNames) {
		return fmt.Sprintf("Event(%d)", int(e))
	}
	return eventNames[e]
}

// Kind is what a command asks the sequencer to do
type Kind int

const (
	NoCmd Kind = iota
	Step
	Load
	Save
	Length
	ChangeMode
	Leds
	Rotate
)

var kindNames = []string{"NoCmd", "Step", "Load", "Save", "Length", "ChangeMode", "Leds", "Rotate"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Command is emitted by the controller for the dispatcher
type Command struct {
	Kind Kind
	Val  int
}

func (c Command) String() string {
	return fmt.Sprintf("%s(%d)", c.Kind, c.Val)
}

var noCmd = Command{Kind: NoCmd}

// Controller is the front panel state machine. It never touches the
// sequencer itself; it only emits commands.
type Controller struct {
	current  Mode
	numSlots int
	loadSlot int
	saveSlot int
}

// NewController creates a controller in performance mode selecting among
// numSlots banks
func NewController(numSlots int) *Controller {
	if numSlots < 1 {
		numSlots = 1
	}
	return &Controller{current: Performance, numSlots: numSlots}
}

// Mode returns the current mode
func (c *Controller) Mode() Mode { return c.current }

// Performing reports whether the panel is in performance mode
func (c *Controller) Performing() bool { return c.current == Performance }

// ActiveSlot returns the slot being selected in load/save mode, or -1
func (c *Controller) ActiveSlot() int {
	switch c.current {
	case PatternLoad:
		return c.loadSlot
	case PatternSave:
		return c.saveSlot
	}
	return -1
}

// Cancel backs out to performance on the next update
func (c *Controller) Cancel() {
	c.current = Cancel
}

// Update feeds one event through the state machine
func (c *Controller) Update(ev Event) Command {
	if c.current == Cancel {
		c.current = Performance
		return Command{Kind: Leds, Val: 1}
	}

	switch ev {
	case Click:
		return c.click()
	case DoubleClick:
		return c.doubleClick()
	case Hold:
		return c.hold()
	case RotateRight:
		return c.rotate(1)
	case RotateLeft:
		return c.rotate(-1)
	case ShiftRight:
		return c.shift(1)
	case ShiftLeft:
		return c.shift(-1)
	case CancelEvent:
		return c.cancel()
	}
	return noCmd
}

func (c *Controller) click() Command {
	switch c.current {
	case Performance:
		c.current = ChangeLength
		return Command{Kind: ChangeMode, Val: 1}
	case ChangeLength:
		// Length changes apply on the fly, nothing to commit
		c.current = Performance
		return Command{Kind: ChangeMode, Val: 1}
	}
	return noCmd
}

func (c *Controller) doubleClick() Command {
	switch c.current {
	case Performance:
		c.current = PatternLoad
		return Command{Kind: ChangeMode, Val: 1}
	case PatternLoad:
		c.current = Performance
		return Command{Kind: Load, Val: c.loadSlot}
	}
	return noCmd
}

func (c *Controller) hold() Command {
	switch c.current {
	case Performance:
		c.current = PatternSave
		return Command{Kind: ChangeMode, Val: 1}
	case PatternSave:
		c.current = Performance
		return Command{Kind: Save, Val: c.saveSlot}
	}
	return noCmd
}

func (c *Controller) rotate(dir int) Command {
	switch c.current {
	case Performance:
		return Command{Kind: Step, Val: dir}
	case ChangeLength:
		return Command{Kind: Length, Val: dir}
	case PatternLoad:
		c.loadSlot = wrapSlot(c.loadSlot+dir, c.numSlots)
		return Command{Kind: Leds, Val: 1}
	case PatternSave:
		c.saveSlot = wrapSlot(c.saveSlot+dir, c.numSlots)
		return Command{Kind: Leds, Val: 1}
	}
	return noCmd
}

// shift turns rotate the loop in place. Outside Performance they do nothing.
func (c *Controller) shift(dir int) Command {
	if c.current == Performance {
		return Command{Kind: Rotate, Val: dir}
	}
	return noCmd
}

func (c *Controller) cancel() Command {
	if c.current == Performance {
		return noCmd
	}
	c.current = Performance
	return Command{Kind: Leds, Val: 1}
}

func wrapSlot(slot, n int) int {
	slot %= n
	if slot < 0 {
		slot += n
	}
	return slot
}
