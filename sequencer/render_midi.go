package sequencer

import (
	"errors"

	gomidi "gitlab.com/gomidi/midi/v2"

	"go-turing/config"
	"go-turing/hwio"
)

// MessageSender is a MIDI output. *midi.Out satisfies it.
type MessageSender interface {
	Send(msg gomidi.Message) error
}

// MIDIRenderer plays the jacks on a MIDI output: each trigger is a drum
// note, each CV a controller, and optionally CV A and the random walk as
// melodies on their own channels.
type MIDIRenderer struct {
	out   MessageSender
	cfg   config.OutputConfig
	scale [8]uint8

	triggers uint8
	cv       [hwio.NumCV]uint8
	cvSent   bool
	note     int // sounding note on the note channel, -1 for none
	drunk    int // sounding note on the drunk channel, -1 for none
}

// NewMIDIRenderer creates a renderer sending to out
func NewMIDIRenderer(out MessageSender, cfg config.OutputConfig) *MIDIRenderer {
	return &MIDIRenderer{out: out, cfg: cfg, scale: cfg.Degrees(), note: -1, drunk: -1}
}

func channel(n int) uint8 {
	if n < 1 || n > 16 {
		return 0
	}
	return uint8(n - 1)
}

func clamp7(v int) uint8 {
	return uint8(min(max(v, 0), 127))
}

// Render sends what changed since the last frame
func (r *MIDIRenderer) Render(o Outputs) error {
	var errs []error
	send := func(msg gomidi.Message) {
		if err := r.out.Send(msg); err != nil {
			errs = append(errs, err)
		}
	}

	ch := channel(r.cfg.Channel)
	changed := r.triggers ^ o.Triggers
	for i, note := range r.cfg.TriggerNotes {
		bit := uint8(1) << i
		if changed&bit == 0 {
			continue
		}
		if o.Triggers&bit != 0 {
			send(gomidi.NoteOn(ch, note, 100))
		} else {
			send(gomidi.NoteOff(ch, note))
		}
	}
	r.triggers = o.Triggers

	for i, cc := range r.cfg.CVControls {
		v := clamp7(o.CV[i])
		if cc == 0 || (r.cvSent && v == r.cv[i]) {
			continue
		}
		send(gomidi.ControlChange(ch, cc, v))
		r.cv[i] = v
	}
	r.cvSent = true

	if o.Clocked {
		if r.cfg.NoteChannel > 0 {
			r.note = r.retrigger(send, channel(r.cfg.NoteChannel), r.note, int(r.cfg.BaseNote)+o.CV[0])
		}
		if r.cfg.DrunkChannel > 0 {
			degree := r.scale[o.Drunk&7]
			r.drunk = r.retrigger(send, channel(r.cfg.DrunkChannel), r.drunk, int(r.cfg.BaseNote)+int(degree))
		}
	}
	return errors.Join(errs...)
}

// retrigger ends the sounding note and starts the next one
func (r *MIDIRenderer) retrigger(send func(gomidi.Message), ch uint8, prev, next int) int {
	if prev >= 0 {
		send(gomidi.NoteOff(ch, uint8(prev)))
	}
	n := clamp7(next)
	send(gomidi.NoteOn(ch, n, 100))
	return int(n)
}

// Silence releases everything still sounding
func (r *MIDIRenderer) Silence() error {
	var errs []error
	ch := channel(r.cfg.Channel)
	for i, note := range r.cfg.TriggerNotes {
		if r.triggers&(1<<i) != 0 {
			errs = append(errs, r.out.Send(gomidi.NoteOff(ch, note)))
		}
	}
	r.triggers = 0
	if r.note >= 0 {
		errs = append(errs, r.out.Send(gomidi.NoteOff(channel(r.cfg.NoteChannel), uint8(r.note))))
		r.note = -1
	}
	if r.drunk >= 0 {
		errs = append(errs, r.out.Send(gomidi.NoteOff(channel(r.cfg.DrunkChannel), uint8(r.drunk))))
		r.drunk = -1
	}
	return errors.Join(errs...)
}
