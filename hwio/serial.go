package hwio

import (
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"

	"go-turing/debug"
)

// DefaultBaud for the output board
const DefaultBaud = 115200

// SerialSink writes output frames to the board, numbering each one
type SerialSink struct {
	mu   sync.Mutex
	port io.WriteCloser
	seq  byte
	last []byte
}

// OpenSerial opens the named serial device at the given baud rate
func OpenSerial(name string, baud int) (*SerialSink, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	debug.Log("serial", "port opened device=%s baud=%d", name, baud)
	return NewSink(p), nil
}

// NewSink wraps an already open port
func NewSink(w io.WriteCloser) *SerialSink {
	return &SerialSink{port: w}
}

// Send encodes and writes f. Frames identical to the previous one (ignoring
// Seq) are skipped.
func (s *SerialSink) Send(f Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.Seq = 0
	key := f.Encode()
	if string(key) == string(s.last) {
		return nil
	}
	s.last = key

	s.seq++
	f.Seq = s.seq
	data := f.Encode()
	n, err := s.port.Write(data)
	if err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	debug.LogEvery(100, "serial", "frame sent bytes=%d seq=%d", n, f.Seq)
	return nil
}

// Close closes the underlying port
func (s *SerialSink) Close() error {
	debug.Log("serial", "closing port")
	return s.port.Close()
}

// PortNames lists serial devices on the system
func PortNames() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	return ports, nil
}
