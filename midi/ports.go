package midi

import (
	"errors"
	"fmt"
	"strings"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// PortInfo describes a MIDI port for listing
type PortInfo struct {
	Name      string
	Input     bool
	Launchpad bool
}

// ErrPortsTimeout means the MIDI service did not answer
var ErrPortsTimeout = errors.New("midi: listing ports timed out")

// ListPorts returns every input and output port
func ListPorts() ([]PortInfo, error) {
	ins, outs, ok := listPorts(listTimeout)
	if !ok {
		return nil, ErrPortsTimeout
	}
	var ports []PortInfo
	for _, p := range ins {
		ports = append(ports, PortInfo{Name: p.String(), Input: true, Launchpad: isLaunchpad(p.String())})
	}
	for _, p := range outs {
		ports = append(ports, PortInfo{Name: p.String(), Launchpad: isLaunchpad(p.String())})
	}
	return ports, nil
}

// FindInPort finds an input port whose name contains name (case-insensitive)
func FindInPort(name string) (drivers.In, error) {
	needle := strings.ToLower(name)
	for _, p := range gomidi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), needle) {
			return p, nil
		}
	}
	return nil, fmt.Errorf("no MIDI input matching %q", name)
}

// Out is an output port
type Out struct {
	name string
	send func(gomidi.Message) error
}

// OpenOut opens the output port whose name contains name (case-insensitive)
func OpenOut(name string) (*Out, error) {
	needle := strings.ToLower(name)
	for _, port := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(port.String()), needle) {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return nil, fmt.Errorf("open output %s: %w", port.String(), err)
			}
			return &Out{name: port.String(), send: send}, nil
		}
	}
	return nil, fmt.Errorf("no MIDI output matching %q", name)
}

// NewOut wraps a send function, e.g. a recorder in tests
func NewOut(name string, send func(gomidi.Message) error) *Out {
	return &Out{name: name, send: send}
}

func (o *Out) Name() string { return o.name }

func (o *Out) Send(msg gomidi.Message) error {
	return o.send(msg)
}
