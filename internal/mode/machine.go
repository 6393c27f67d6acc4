package mode

import (
	"github.com/stlalpha/my-grid/internal/bookmark"
	"github.com/stlalpha/my-grid/internal/canvas"
	"github.com/stlalpha/my-grid/internal/clipboard"
	"github.com/stlalpha/my-grid/internal/viewport"
)

const smallStep = 1
const bigStep = 10

// Machine is the mode state machine: it owns the active Mode and the
// transient per-mode state (command buffer, selection, draw pen), and
// mutates the shared Canvas/Viewport/Bookmarks/Clipboard directly for
// modes whose spec says so (EDIT, PAN, VISUAL, DRAW, MARK_*). COMMAND mode
// instead hands its accumulated line back as CommandsToExec for the
// shared executor (C7) to run.
type Machine struct {
	Canvas    *canvas.Canvas
	View      *viewport.Viewport
	Bookmarks *bookmark.Store
	Clip      *clipboard.Holder

	mode Mode

	cmdBuf    []rune
	cmdCursor int
	cmdHist   []string
	cmdHistAt int

	selection    Selection
	hasSelection bool

	penDown     bool
	borderStyle canvas.BorderStyle
	lastDrawX   int64
	lastDrawY   int64
	hasLastDraw bool

	curFG, curBG int

	// PTYFocused: name of the zone currently capturing input. Set by
	// EnterPTYFocused and cleared when Esc returns to NAV.
	FocusedZone string
}

// New creates a machine in NAV mode, operating on the given shared state.
func New(c *canvas.Canvas, v *viewport.Viewport, b *bookmark.Store, clip *clipboard.Holder) *Machine {
	return &Machine{Canvas: c, View: v, Bookmarks: b, Clip: clip, mode: NAV, curFG: canvas.ColorDefault, curBG: canvas.ColorDefault}
}

// SetColor sets the pen color used by subsequent EDIT-mode writes.
func (m *Machine) SetColor(fg, bg int) {
	m.curFG, m.curBG = fg, bg
}

// Color returns the active pen color.
func (m *Machine) Color() (fg, bg int) {
	return m.curFG, m.curBG
}

// Mode returns the currently active mode.
func (m *Machine) Mode() Mode { return m.mode }

// Selection returns the current VISUAL selection and whether one is active.
func (m *Machine) Selection() (Selection, bool) { return m.selection, m.hasSelection }

// CommandBuffer returns the in-progress COMMAND-mode line and cursor
// position within it.
func (m *Machine) CommandBuffer() (string, int) { return string(m.cmdBuf), m.cmdCursor }

// SetBorderStyle selects the glyph set DRAW mode uses for new segments.
func (m *Machine) SetBorderStyle(s canvas.BorderStyle) { m.borderStyle = s }

// BorderStyle returns the glyph set currently used by DRAW mode and by
// the `rect`/`line` commands.
func (m *Machine) BorderStyle() canvas.BorderStyle { return m.borderStyle }

func (m *Machine) enter(newMode Mode) Result {
	m.mode = newMode
	switch newMode {
	case COMMAND:
		m.cmdBuf = m.cmdBuf[:0]
		m.cmdCursor = 0
		m.cmdHistAt = len(m.cmdHist)
	case VISUAL:
		m.selection = Selection{AnchorX: m.View.CursorX, AnchorY: m.View.CursorY, CursorX: m.View.CursorX, CursorY: m.View.CursorY}
		m.hasSelection = true
	case DRAW:
		m.penDown = false
		m.hasLastDraw = false
	}
	if newMode != VISUAL {
		m.hasSelection = false
	}
	return Result{ModeChanged: true, NewMode: newMode, Consumed: true}
}

// Process dispatches one input event through the active mode and returns
// the resulting state transition.
func (m *Machine) Process(e InputEvent) Result {
	switch m.mode {
	case NAV:
		return m.processNav(e)
	case PAN:
		return m.processPan(e)
	case EDIT:
		return m.processEdit(e)
	case COMMAND:
		return m.processCommand(e)
	case MarkSet:
		return m.processMarkSet(e)
	case MarkJump:
		return m.processMarkJump(e)
	case VISUAL:
		return m.processVisual(e)
	case DRAW:
		return m.processDraw(e)
	case PTYFocused:
		return m.processPTYFocused(e)
	}
	return Result{}
}

func stepFor(mods Mods) int64 {
	if mods.Shift {
		return bigStep
	}
	return smallStep
}

// navDelta maps a navigation event (arrows or wasd) to a cursor/pan delta.
// ok is false when the event is not a navigation key in this mode.
func navDelta(e InputEvent) (dx, dy int64, ok bool) {
	step := stepFor(e.Mods)
	switch e.Key {
	case KeyUp:
		return 0, -step, true
	case KeyDown:
		return 0, step, true
	case KeyLeft:
		return -step, 0, true
	case KeyRight:
		return step, 0, true
	}
	if e.Printable() {
		switch e.Rune {
		case 'w', 'W':
			return 0, -step, true
		case 's', 'S':
			return 0, step, true
		case 'a', 'A':
			return -step, 0, true
		case 'd', 'D':
			return step, 0, true
		}
	}
	return 0, 0, false
}

func (m *Machine) processNav(e InputEvent) Result {
	if e.Key == KeyEsc {
		return Result{Consumed: true}
	}
	// 'D' enters DRAW; it is checked before navDelta, which maps 'D' to
	// move-right in the other navigating modes.
	if e.Printable() && e.Rune == 'D' {
		return m.enter(DRAW)
	}
	if dx, dy, ok := navDelta(e); ok {
		m.View.MoveCursor(dx, dy)
		return Result{Consumed: true}
	}
	if e.Printable() {
		switch e.Rune {
		case 'i':
			return m.enter(EDIT)
		case 'p':
			return m.enter(PAN)
		case 'v':
			return m.enter(VISUAL)
		case ':', '/':
			return m.enter(COMMAND)
		case 'm':
			return m.enter(MarkSet)
		case '\'':
			return m.enter(MarkJump)
		}
	}
	return Result{Consumed: false}
}

func (m *Machine) processPan(e InputEvent) Result {
	if e.Key == KeyEsc {
		return m.enter(NAV)
	}
	if dx, dy, ok := navDelta(e); ok {
		m.View.Pan(dx, dy)
		m.View.CursorX += dx
		m.View.CursorY += dy
		return Result{Consumed: true}
	}
	return Result{Consumed: false}
}

func (m *Machine) processEdit(e InputEvent) Result {
	if e.Key == KeyEsc {
		return m.enter(NAV)
	}
	if e.Key == KeyBackspace {
		m.View.MoveCursor(-1, 0)
		m.Canvas.Set(m.View.CursorX, m.View.CursorY, canvas.EmptyCell)
		return Result{Consumed: true}
	}
	if dx, dy, ok := arrowDelta(e); ok {
		m.View.MoveCursor(dx, dy)
		return Result{Consumed: true}
	}
	if e.Printable() {
		m.Canvas.Set(m.View.CursorX, m.View.CursorY, canvas.Cell{Char: e.Rune, FG: m.curFG, BG: m.curBG})
		m.View.MoveCursor(1, 0)
		return Result{Consumed: true}
	}
	return Result{Consumed: false}
}

// arrowDelta handles bare arrow-key movement (no wasd) used inside EDIT,
// where letters are text input rather than navigation.
func arrowDelta(e InputEvent) (dx, dy int64, ok bool) {
	step := stepFor(e.Mods)
	switch e.Key {
	case KeyUp:
		return 0, -step, true
	case KeyDown:
		return 0, step, true
	case KeyLeft:
		return -step, 0, true
	case KeyRight:
		return step, 0, true
	}
	return 0, 0, false
}

func (m *Machine) processCommand(e InputEvent) Result {
	switch e.Key {
	case KeyEnter:
		line := string(m.cmdBuf)
		m.cmdBuf = nil
		m.cmdCursor = 0
		res := m.enter(NAV)
		if line != "" {
			m.cmdHist = append(m.cmdHist, line)
			res.CommandsToExec = []string{line}
		}
		return res
	case KeyEsc:
		m.cmdBuf = nil
		m.cmdCursor = 0
		return m.enter(NAV)
	case KeyBackspace:
		if m.cmdCursor > 0 {
			m.cmdBuf = append(m.cmdBuf[:m.cmdCursor-1], m.cmdBuf[m.cmdCursor:]...)
			m.cmdCursor--
		}
		return Result{Consumed: true}
	case KeyLeft:
		if m.cmdCursor > 0 {
			m.cmdCursor--
		}
		return Result{Consumed: true}
	case KeyRight:
		if m.cmdCursor < len(m.cmdBuf) {
			m.cmdCursor++
		}
		return Result{Consumed: true}
	case KeyHome:
		m.cmdCursor = 0
		return Result{Consumed: true}
	case KeyEnd:
		m.cmdCursor = len(m.cmdBuf)
		return Result{Consumed: true}
	case KeyUp:
		if len(m.cmdHist) > 0 && m.cmdHistAt > 0 {
			m.cmdHistAt--
			m.cmdBuf = []rune(m.cmdHist[m.cmdHistAt])
			m.cmdCursor = len(m.cmdBuf)
		}
		return Result{Consumed: true}
	case KeyDown:
		if m.cmdHistAt < len(m.cmdHist)-1 {
			m.cmdHistAt++
			m.cmdBuf = []rune(m.cmdHist[m.cmdHistAt])
			m.cmdCursor = len(m.cmdBuf)
		} else {
			m.cmdHistAt = len(m.cmdHist)
			m.cmdBuf = nil
			m.cmdCursor = 0
		}
		return Result{Consumed: true}
	}
	if e.Printable() {
		buf := make([]rune, 0, len(m.cmdBuf)+1)
		buf = append(buf, m.cmdBuf[:m.cmdCursor]...)
		buf = append(buf, e.Rune)
		buf = append(buf, m.cmdBuf[m.cmdCursor:]...)
		m.cmdBuf = buf
		m.cmdCursor++
		return Result{Consumed: true}
	}
	return Result{Consumed: false}
}

func (m *Machine) processMarkSet(e InputEvent) Result {
	if e.Printable() && bookmark.Valid(byte(e.Rune)) {
		_ = m.Bookmarks.Set(byte(e.Rune), canvas.Point{X: m.View.CursorX, Y: m.View.CursorY})
		return m.enter(NAV)
	}
	return m.enter(NAV)
}

func (m *Machine) processMarkJump(e InputEvent) Result {
	if e.Printable() && bookmark.Valid(byte(e.Rune)) {
		if p, ok := m.Bookmarks.Get(byte(e.Rune)); ok {
			m.View.SetCursor(p.X, p.Y)
		}
		return m.enter(NAV)
	}
	return m.enter(NAV)
}

func (m *Machine) processVisual(e InputEvent) Result {
	if e.Key == KeyEsc {
		return m.enter(NAV)
	}
	if dx, dy, ok := navDelta(e); ok {
		m.View.CursorX += dx
		m.View.CursorY += dy
		m.selection.CursorX = m.View.CursorX
		m.selection.CursorY = m.View.CursorY
		return Result{Consumed: true}
	}
	if e.Printable() {
		switch e.Rune {
		case 'y':
			minX, minY, maxX, maxY := m.selection.Bounds()
			buf := clipboard.Yank(m.Canvas, minX, minY, int(maxX-minX+1), int(maxY-minY+1))
			m.Clip.Set(buf)
			return m.enter(NAV)
		case 'd':
			minX, minY, maxX, maxY := m.selection.Bounds()
			m.Canvas.ClearRegion(minX, minY, int(maxX-minX+1), int(maxY-minY+1))
			return m.enter(NAV)
		case 'f':
			// A fill glyph prompt is a mini command line; route it through
			// COMMAND mode's buffer pre-seeded with "fill ".
			res := m.enter(COMMAND)
			m.cmdBuf = []rune("fill ")
			m.cmdCursor = len(m.cmdBuf)
			return res
		}
	}
	return Result{Consumed: false}
}

func (m *Machine) processDraw(e InputEvent) Result {
	if e.Key == KeyEsc {
		return m.enter(NAV)
	}
	if e.Key == KeySpace || (e.Printable() && e.Rune == ' ') {
		m.penDown = !m.penDown
		m.hasLastDraw = false
		return Result{Consumed: true}
	}
	if dx, dy, ok := navDelta(e); ok {
		startX, startY := m.View.CursorX, m.View.CursorY
		m.View.MoveCursor(dx, dy)
		if m.penDown {
			if m.hasLastDraw {
				m.Canvas.DrawLine(m.lastDrawX, m.lastDrawY, m.View.CursorX, m.View.CursorY, 0, m.borderStyle)
			} else {
				m.Canvas.DrawLine(startX, startY, m.View.CursorX, m.View.CursorY, 0, m.borderStyle)
			}
		}
		m.lastDrawX, m.lastDrawY = m.View.CursorX, m.View.CursorY
		m.hasLastDraw = true
		return Result{Consumed: true}
	}
	return Result{Consumed: false}
}

func (m *Machine) processPTYFocused(e InputEvent) Result {
	if e.Key == KeyEsc {
		m.FocusedZone = ""
		return m.enter(NAV)
	}
	// The application loop forwards every other key to the zone before
	// Process is called (the machine has no reference to zone handlers),
	// except Shift+PgUp/PgDn/Home/End, which it keeps from the zone; those
	// arrive here and are ignored.
	return Result{Consumed: false}
}

// EnterPTYFocused switches into PTY_FOCUSED mode for the named zone. The
// command executor calls this when a PTY zone is focused via `zone focus`.
func (m *Machine) EnterPTYFocused(zoneName string) Result {
	m.FocusedZone = zoneName
	return m.enter(PTYFocused)
}

// ForceNAV resets the machine to NAV mode unconditionally and clears any
// selection.
func (m *Machine) ForceNAV() {
	m.mode = NAV
	m.hasSelection = false
}
