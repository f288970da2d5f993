package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-turing/panel"
)

func TestNoteMappingRoundTrip(t *testing.T) {
	for row := 0; row < 8; row++ {
		for col := 0; col < 9; col++ {
			r, c := noteToRowCol(rowColToNote(row, col))
			assert.Equal(t, [2]int{row, col}, [2]int{r, c})
		}
	}
	for col := 0; col < 8; col++ {
		r, c := ccToRowCol(rowColToNote(8, col))
		assert.Equal(t, [2]int{8, col}, [2]int{r, c})
	}

	r, _ := noteToRowCol(5)
	assert.Equal(t, -1, r)
	r, _ = ccToRowCol(10)
	assert.Equal(t, -1, r)
}

func TestMapRGBToLaunchpad(t *testing.T) {
	assert.Equal(t, uint8(0), mapRGBToLaunchpad([3]uint8{0, 0, 0}))
	assert.Equal(t, uint8(5), mapRGBToLaunchpad([3]uint8{250, 5, 5}))
	assert.Equal(t, uint8(119), mapRGBToLaunchpad([3]uint8{255, 255, 255}))
}

func TestLpxLightingEncodesSpecs(t *testing.T) {
	msgs := lpxLighting([]LEDUpdate{
		{Row: 0, Col: 0, Color: [3]uint8{255, 128, 2}},
		{Row: 8, Col: 1, Color: [3]uint8{255, 0, 0}, Channel: ChannelFlash},
		{Row: 1, Col: 8, Color: [3]uint8{255, 255, 255}, Channel: ChannelPulse},
	})
	require.Len(t, msgs, 1)

	want := append([]byte{}, lpxHeader...)
	want = append(want, lpxCmdLighting,
		lpxRGBSpec, 11, 127, 64, 1,
		lpxFlash, 92, 5, 0,
		lpxPulse, 29, 119,
	)
	assert.Equal(t, want, msgs[0])
}

func TestLpxLightingChunks(t *testing.T) {
	updates := make([]LEDUpdate, lpxMaxSpecs+1)
	msgs := lpxLighting(updates)
	require.Len(t, msgs, 2)
	assert.Len(t, msgs[1], len(lpxHeader)+1+5, "one RGB spec left over")
	assert.Empty(t, lpxLighting(nil))
}

func TestDecodePad(t *testing.T) {
	ev, ok := decodePad(gomidi.NoteOn(0, 11, 100))
	require.True(t, ok)
	assert.Equal(t, PadEvent{Row: 0, Col: 0, Velocity: 100, Pressed: true}, ev)

	ev, ok = decodePad(gomidi.NoteOn(0, 19, 0))
	require.True(t, ok)
	assert.Equal(t, PadEvent{Row: 0, Col: 8}, ev, "velocity 0 releases")

	ev, ok = decodePad(gomidi.NoteOff(0, 88))
	require.True(t, ok)
	assert.False(t, ev.Pressed)
	assert.Equal(t, [2]int{7, 7}, [2]int{ev.Row, ev.Col})

	ev, ok = decodePad(gomidi.ControlChange(0, 93, 127))
	require.True(t, ok)
	assert.Equal(t, PadEvent{Row: 8, Col: 2, Velocity: 127, Pressed: true}, ev)

	_, ok = decodePad(gomidi.ControlChange(0, 7, 127))
	assert.False(t, ok)
	_, ok = decodePad(gomidi.TimingClock())
	assert.False(t, ok)
}

func clockEdges(c *ClockIn, msgs ...gomidi.Message) (clocks, resets int) {
	g := panel.NewGateIn(c)
	for _, m := range msgs {
		c.Handle(m)
		g.Service()
		g.Service()
		if g.ConsumeClockEdge() {
			clocks++
		}
		if g.ConsumeResetEdge() {
			resets++
		}
	}
	return clocks, resets
}

func TestClockInDivides(t *testing.T) {
	c := NewClockIn("test", 6)
	msgs := []gomidi.Message{gomidi.Start()}
	for i := 0; i < 24; i++ {
		msgs = append(msgs, gomidi.TimingClock())
	}
	clocks, resets := clockEdges(c, msgs...)
	assert.Equal(t, 4, clocks)
	assert.Equal(t, 1, resets)
}

func TestClockInStopContinue(t *testing.T) {
	c := NewClockIn("test", 1)
	clocks, _ := clockEdges(c,
		gomidi.TimingClock(),
		gomidi.Stop(),
		gomidi.TimingClock(),
		gomidi.TimingClock(),
		gomidi.Continue(),
		gomidi.TimingClock(),
	)
	assert.Equal(t, 2, clocks)
	assert.Equal(t, "test", c.ID())
	assert.NoError(t, c.Close())
}

func TestDeviceManagerSurfaceMatch(t *testing.T) {
	dm := NewDeviceManager(nil, "nanoKONTROL")
	assert.True(t, dm.isSurface("nanokontrol2 slider/knob"))
	assert.False(t, dm.isSurface("launchpad x lpx midi"))
	assert.True(t, dm.allow("anything"))

	assert.True(t, isLaunchpad("Launchpad X LPX MIDI"))
	assert.False(t, isLaunchpad("Launchpad X LPX DAW"))
}

type fakeController struct {
	id     string
	kind   ControllerType
	closed bool
}

func (f *fakeController) ID() string                            { return f.id }
func (f *fakeController) Type() ControllerType                  { return f.kind }
func (f *fakeController) PadEvents() <-chan PadEvent            { return nil }
func (f *fakeController) CCEvents() <-chan CCEvent              { return nil }
func (f *fakeController) SetLEDBatch(updates []LEDUpdate) error { return nil }
func (f *fakeController) Close() error                          { f.closed = true; return nil }

func TestDeviceManagerReconcile(t *testing.T) {
	dm := NewDeviceManager(func(name string) bool { return name != "Launchpad Mini MIDI" }, "nanoKONTROL")
	opened := map[string]*fakeController{}
	open := func(id string, kind ControllerType) (Controller, error) {
		c := &fakeController{id: id, kind: kind}
		opened[id] = c
		return c, nil
	}

	want := dm.wanted([]string{"Launchpad X LPX MIDI", "Launchpad X LPX DAW", "Launchpad Mini MIDI", "nanoKONTROL2", "IAC Bus"})
	assert.Equal(t, map[string]ControllerType{
		"Launchpad X LPX MIDI": ControllerLaunchpad,
		"nanoKONTROL2":         ControllerSurface,
	}, want)

	dm.reconcile(want, open)
	require.Len(t, dm.Controllers(), 2)
	for i := 0; i < 2; i++ {
		ev := <-dm.Events()
		assert.Equal(t, DeviceConnected, ev.Type)
		assert.NotNil(t, ev.Controller)
	}

	// Already open controllers are kept, unplugged ones closed
	dm.reconcile(map[string]ControllerType{"nanoKONTROL2": ControllerSurface}, open)
	ev := <-dm.Events()
	assert.Equal(t, DeviceDisconnected, ev.Type)
	assert.Equal(t, "Launchpad X LPX MIDI", ev.ID)
	assert.True(t, opened["Launchpad X LPX MIDI"].closed)
	assert.False(t, opened["nanoKONTROL2"].closed)
	assert.Len(t, dm.Controllers(), 1)
	assert.Empty(t, dm.Events())
}

func TestOutSend(t *testing.T) {
	var got []gomidi.Message
	o := NewOut("rec", func(m gomidi.Message) error {
		got = append(got, m)
		return nil
	})
	require.NoError(t, o.Send(gomidi.NoteOn(0, 60, 100)))
	assert.Equal(t, "rec", o.Name())
	require.Len(t, got, 1)

	var ch, key, vel uint8
	assert.True(t, got[0].GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(60), key)
}

func TestSurfaceWithoutPort(t *testing.T) {
	sc, err := NewSurfaceController("knobs", nil)
	require.NoError(t, err)
	assert.Equal(t, ControllerSurface, sc.Type())
	assert.NoError(t, sc.SetLEDBatch([]LEDUpdate{{Row: 1}}))
	assert.NoError(t, sc.Close())
}
