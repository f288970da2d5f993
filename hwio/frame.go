// Package hwio talks to the analog side of the module over a serial link: a
// small microcontroller board that owns the DACs, trigger jacks and LEDs.
package hwio

import (
	"encoding/binary"
	"errors"
)

const (
	SOF0 = 0xAA
	SOF1 = 0x55

	CmdOutputs = 0x20
)

// NumCV is the number of pitch CV outputs
const NumCV = 4

// Frame is a full-state snapshot of the outputs, sent on every change
type Frame struct {
	Triggers  byte
	Leds      byte // main LED row
	FaderLeds byte
	DAC8      byte // internal 8 bit DAC, inverted pattern
	CV        [NumCV]uint16
	Seq       byte
}

const payloadLen = 4 + 2*NumCV + 1

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][LEN][CMD][trig][leds][faderLeds][dac8][cvA..cvD BE16][seq][CKS]
func (f *Frame) Encode() []byte {
	payload := make([]byte, 0, payloadLen)
	payload = append(payload, f.Triggers, f.Leds, f.FaderLeds, f.DAC8)
	for _, cv := range f.CV {
		payload = binary.BigEndian.AppendUint16(payload, cv)
	}
	payload = append(payload, f.Seq)

	length := byte(len(payload) + 1) // +1 for CMD byte
	cks := length ^ CmdOutputs
	for _, b := range payload {
		cks ^= b
	}

	out := []byte{SOF0, SOF1, length, CmdOutputs}
	out = append(out, payload...)
	out = append(out, cks)
	return out
}

var (
	ErrShortFrame = errors.New("hwio: short frame")
	ErrSync       = errors.New("hwio: bad start of frame")
	ErrChecksum   = errors.New("hwio: checksum mismatch")
	ErrCommand    = errors.New("hwio: unknown command")
)

// Decode parses a frame produced by Encode. The loopback test tool and the
// simulator use it to show what the board would receive.
func Decode(b []byte) (Frame, error) {
	var f Frame
	if len(b) < 5 {
		return f, ErrShortFrame
	}
	if b[0] != SOF0 || b[1] != SOF1 {
		return f, ErrSync
	}
	length := int(b[2])
	if len(b) != 3+length+1 || length != payloadLen+1 {
		return f, ErrShortFrame
	}
	cks := byte(0)
	for _, c := range b[2 : len(b)-1] {
		cks ^= c
	}
	if cks != b[len(b)-1] {
		return f, ErrChecksum
	}
	if b[3] != CmdOutputs {
		return f, ErrCommand
	}

	p := b[4 : len(b)-1]
	f.Triggers, f.Leds, f.FaderLeds, f.DAC8 = p[0], p[1], p[2], p[3]
	for i := range f.CV {
		f.CV[i] = binary.BigEndian.Uint16(p[4+2*i:])
	}
	f.Seq = p[len(p)-1]
	return f, nil
}
