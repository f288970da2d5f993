package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-turing/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// Port enumeration can hang on a wedged MIDI service
const listTimeout = 3 * time.Second

// opener opens the controller behind an input port
type opener func(id string, kind ControllerType) (Controller, error)

// DeviceManager polls for Launchpads and knob boxes and reports hot-plug
// events
type DeviceManager struct {
	mu          sync.RWMutex
	controllers map[string]Controller
	events      chan DeviceEvent
	pollRate    time.Duration

	allow    func(portName string) bool
	surfaces []string // lowercase name fragments of knob boxes
}

// NewDeviceManager creates a new device manager. allow filters detected
// ports (nil allows all); surfaces names knob boxes to open alongside
// Launchpads.
func NewDeviceManager(allow func(string) bool, surfaces ...string) *DeviceManager {
	if allow == nil {
		allow = func(string) bool { return true }
	}
	var lower []string
	for _, s := range surfaces {
		if s != "" {
			lower = append(lower, strings.ToLower(s))
		}
	}
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    time.Second,
		allow:       allow,
		surfaces:    lower,
	}
}

// Events returns a channel of device connect/disconnect events. It is
// closed when Run returns.
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// Run polls until ctx is cancelled, then closes every controller
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	dm.scan()
	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	ins, outs, ok := listPorts(listTimeout)
	if !ok {
		debug.LogEvery(10, "devices", "port list timed out, skipping scan")
		return
	}

	inByName := make(map[string]drivers.In, len(ins))
	names := make([]string, 0, len(ins))
	for _, p := range ins {
		inByName[p.String()] = p
		names = append(names, p.String())
	}

	dm.reconcile(dm.wanted(names), func(id string, kind ControllerType) (Controller, error) {
		if kind == ControllerSurface {
			return NewSurfaceController(id, inByName[id])
		}
		return NewLaunchpadController(id, inByName[id], matchOut(outs, id))
	})
}

// wanted picks the input ports to open and what they are
func (dm *DeviceManager) wanted(names []string) map[string]ControllerType {
	want := make(map[string]ControllerType)
	for _, id := range names {
		if !dm.allow(id) {
			continue
		}
		switch {
		case isLaunchpad(id):
			want[id] = ControllerLaunchpad
		case dm.isSurface(id):
			want[id] = ControllerSurface
		}
	}
	return want
}

// reconcile opens new controllers and closes vanished ones
func (dm *DeviceManager) reconcile(want map[string]ControllerType, open opener) {
	var events []DeviceEvent

	dm.mu.Lock()
	for id, kind := range want {
		if _, ok := dm.controllers[id]; ok {
			continue
		}
		ctrl, err := open(id, kind)
		if err != nil {
			debug.Log("devices", "open %s failed: %v", id, err)
			continue
		}
		dm.controllers[id] = ctrl
		debug.Log("devices", "connected %s", id)
		events = append(events, DeviceEvent{Type: DeviceConnected, Controller: ctrl, ID: id})
	}
	for id, c := range dm.controllers {
		if _, ok := want[id]; ok {
			continue
		}
		if err := c.Close(); err != nil {
			debug.Log("devices", "close %s: %v", id, err)
		}
		delete(dm.controllers, id)
		debug.Log("devices", "disconnected %s", id)
		events = append(events, DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
	dm.mu.Unlock()

	for _, ev := range events {
		dm.events <- ev
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

func (dm *DeviceManager) isSurface(name string) bool {
	name = strings.ToLower(name)
	for _, s := range dm.surfaces {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}

// listPorts enumerates ports, giving up after timeout
func listPorts(timeout time.Duration) ([]drivers.In, []drivers.Out, bool) {
	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ch <- result{gomidi.GetInPorts(), gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, true
	case <-time.After(timeout):
		return nil, nil, false
	}
}

// matchOut finds the output port named like an input port
func matchOut(outs []drivers.Out, name string) drivers.Out {
	for _, p := range outs {
		if strings.EqualFold(p.String(), name) {
			return p
		}
	}
	return nil
}
