package midi

// Launchpad X programmer mode protocol.
//
// Pad addressing (programmer layout):
//
//	rows 0-7  notes 11-88, row*10 + col, bottom to top
//	col 8     side buttons 19, 29 ... 89
//	row 8     top buttons, CC 91-98 in, LED index 91-98 out

const (
	lpxTopRow  = 8
	lpxTopBase = 91
	lpxSide    = 8

	// One lighting message may address the whole face
	lpxMaxSpecs = 81
)

var lpxHeader = []byte{0x00, 0x20, 0x29, 0x02, 0x0C}

// lpx SysEx commands
const (
	lpxCmdLighting   = 0x03
	lpxCmdLayout     = 0x00
	lpxCmdBrightness = 0x08
	lpxCmdFeedback   = 0x0A
)

// lighting spec types
const (
	lpxStatic  = 0x00
	lpxFlash   = 0x01
	lpxPulse   = 0x02
	lpxRGBSpec = 0x03
)

func lpxSysEx(cmd byte, data ...byte) []byte {
	msg := make([]byte, 0, len(lpxHeader)+1+len(data))
	msg = append(msg, lpxHeader...)
	msg = append(msg, cmd)
	return append(msg, data...)
}

// lpxSetup puts the device in programmer mode at full brightness and lets
// the host drive the LEDs
func lpxSetup() [][]byte {
	return [][]byte{
		lpxSysEx(lpxCmdLayout, 0x7F),
		lpxSysEx(lpxCmdBrightness, 0x7F),
		lpxSysEx(lpxCmdFeedback, 0x01, 0x01),
	}
}

// lpxLighting encodes LED updates as lighting SysEx payloads. Static colors
// go out as true RGB; flashing and pulsing need palette indices.
func lpxLighting(updates []LEDUpdate) [][]byte {
	var msgs [][]byte
	for len(updates) > 0 {
		n := min(len(updates), lpxMaxSpecs)
		msg := lpxSysEx(lpxCmdLighting)
		for _, u := range updates[:n] {
			idx := rowColToNote(u.Row, u.Col)
			switch u.Channel {
			case ChannelFlash:
				msg = append(msg, lpxFlash, idx, mapRGBToLaunchpad(u.Color), 0)
			case ChannelPulse:
				msg = append(msg, lpxPulse, idx, mapRGBToLaunchpad(u.Color))
			default:
				msg = append(msg, lpxRGBSpec, idx, u.Color[0]>>1, u.Color[1]>>1, u.Color[2]>>1)
			}
		}
		msgs = append(msgs, msg)
		updates = updates[n:]
	}
	return msgs
}

func rowColToNote(row, col int) uint8 {
	if row == lpxTopRow {
		return uint8(lpxTopBase + col)
	}
	return uint8((row+1)*10 + col + 1)
}

// noteToRowCol maps a grid or side note to row/col, or -1, -1
func noteToRowCol(note uint8) (row, col int) {
	if note >= lpxTopBase && note < lpxTopBase+8 {
		return lpxTopRow, int(note - lpxTopBase)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > lpxSide {
		return -1, -1
	}
	return row, col
}

// ccToRowCol maps a top row button CC to row/col, or -1, -1
func ccToRowCol(cc uint8) (row, col int) {
	if cc >= lpxTopBase && cc < lpxTopBase+8 {
		return lpxTopRow, int(cc - lpxTopBase)
	}
	return -1, -1
}

// Approximate RGB of some palette entries: {velocity, R, G, B}
var lpxPalette = [][4]uint8{
	{0, 0, 0, 0},
	{5, 255, 0, 0},
	{6, 255, 80, 80},
	{7, 180, 60, 60},
	{9, 255, 100, 0},
	{11, 180, 80, 40},
	{13, 255, 200, 0},
	{17, 0, 180, 0},
	{19, 0, 100, 0},
	{21, 0, 255, 0},
	{37, 0, 200, 200},
	{43, 40, 60, 120},
	{45, 0, 100, 255},
	{47, 80, 150, 255},
	{49, 150, 0, 200},
	{53, 255, 80, 180},
	{78, 100, 100, 255},
	{84, 255, 150, 50},
	{87, 150, 255, 100},
	{97, 180, 180, 60},
	{119, 255, 255, 255},
}

// mapRGBToLaunchpad finds the nearest palette velocity for an RGB value
func mapRGBToLaunchpad(rgb [3]uint8) uint8 {
	best, bestDist := uint8(0), -1
	for _, p := range lpxPalette {
		dr := int(rgb[0]) - int(p[1])
		dg := int(rgb[1]) - int(p[2])
		db := int(rgb[2]) - int(p[3])
		if d := dr*dr + dg*dg + db*db; bestDist < 0 || d < bestDist {
			best, bestDist = p[0], d
		}
	}
	return best
}
