package sequencer

import "go-turing/hwio"

// FrameSender ships output frames to hardware. *hwio.SerialSink satisfies it.
type FrameSender interface {
	Send(f hwio.Frame) error
}

// SerialRenderer drives a hardware jack board over a serial link
type SerialRenderer struct {
	sink FrameSender
}

func NewSerialRenderer(sink FrameSender) *SerialRenderer {
	return &SerialRenderer{sink: sink}
}

// Frame converts published outputs to a wire frame
func Frame(o Outputs) hwio.Frame {
	f := hwio.Frame{
		Triggers:  o.Triggers,
		Leds:      o.Leds,
		FaderLeds: o.FaderLeds,
		DAC8:      o.DAC8,
	}
	for i, semis := range o.CV {
		f.CV[i] = hwio.Millivolts(semis)
	}
	return f
}

func (r *SerialRenderer) Render(o Outputs) error {
	return r.sink.Send(Frame(o))
}
