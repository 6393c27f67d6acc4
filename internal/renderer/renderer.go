// Package renderer is the thin adapter contract spec.md §4.7/§4.x
// calls for between the application loop and a terminal drawing
// backend (terminal rendering backends proper are out of scope; this
// is the boundary, plus one concrete implementation that writes plain
// ANSI/SGR directly, built on internal/ansi's SGRState/MoveCursor/
// ClearScreen escape-sequence helpers).
package renderer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/stlalpha/my-grid/internal/ansi"
	"github.com/stlalpha/my-grid/internal/canvas"
	"github.com/stlalpha/my-grid/internal/command"
	"github.com/stlalpha/my-grid/internal/grid"
	"github.com/stlalpha/my-grid/internal/mode"
	"github.com/stlalpha/my-grid/internal/viewport"
	"github.com/stlalpha/my-grid/internal/zone"
)

// Terminal is the minimal drawing surface a Renderer writes to: raw
// bytes out, and the current size (so the renderer can react to a
// resize without a separate notification channel).
type Terminal struct {
	W, H int
	Out  io.Writer
}

// Renderer composes the viewport of a canvas, overlaid with zone
// content (z-order: creation order) and the grid, into one frame
// written to a Terminal (spec.md §4.7 step 6, §4.x "zones overlay
// canvas content when rendered").
type Renderer struct {
	Term *Terminal

	Canvas    *canvas.Canvas
	View      *viewport.Viewport
	Grid      *grid.Settings
	Zones     *zone.Registry
	Machine   *mode.Machine
	StatusFn  func() command.Result // supplies the structured status line content
}

// New builds a Renderer over the given state, all owned elsewhere and
// read here under the application loop's single-writer discipline
// (spec.md §5: the loop is the only mutator; Render only reads).
func New(term *Terminal, c *canvas.Canvas, v *viewport.Viewport, g *grid.Settings, zones *zone.Registry, m *mode.Machine, statusFn func() command.Result) *Renderer {
	return &Renderer{Term: term, Canvas: c, View: v, Grid: g, Zones: zones, Machine: m, StatusFn: statusFn}
}

// Render draws one full frame: background, zones, selection, cursor,
// status line (spec.md §4.7 step 6). It is the only method apploop.Loop
// calls; apploop itself stays free of terminal-drawing concerns.
func (r *Renderer) Render() error {
	w := bufio.NewWriter(r.Term.Out)
	state := ansi.NewSGRState()

	fmt.Fprint(w, ansi.ClearScreen())

	rows := r.Term.H - 1 // last row reserved for the status line
	if rows < 1 {
		rows = 1
	}

	frame := make([][]canvas.Cell, rows)
	for y := range frame {
		frame[y] = make([]canvas.Cell, r.Term.W)
		for x := range frame[y] {
			frame[y][x] = canvas.EmptyCell
		}
	}

	r.paintBackground(frame, rows)
	r.paintZones(frame, rows)
	r.paintSelection(frame, rows)

	for y := 0; y < rows; y++ {
		r.writeRow(w, frame[y], state)
		fmt.Fprint(w, "\r\n")
	}

	r.writeStatusLine(w)
	r.positionCursor(w, rows)

	return w.Flush()
}

// paintBackground lays down the grid overlay and canvas cells visible
// in the viewport (spec.md §4.7 step 6 "background").
func (r *Renderer) paintBackground(out [][]canvas.Cell, rows int) {
	for sy := 0; sy < rows; sy++ {
		for sx := 0; sx < r.Term.W; sx++ {
			cx, cy := r.View.ScreenToCanvas(sx, sy)
			cell := r.Canvas.Get(cx, cy)
			if cell.Empty() && r.Grid != nil {
				if g := r.Grid.Glyph(cx, cy); g != 0 {
					cell = canvas.Cell{Char: g, FG: canvas.ColorDefault, BG: canvas.ColorDefault}
				}
			}
			out[sy][sx] = cell
		}
	}
}

// paintZones overlays each zone's buffer window atop the background,
// in z-order (creation order, spec.md §4.x).
func (r *Renderer) paintZones(out [][]canvas.Cell, rows int) {
	for _, z := range r.Zones.List() {
		if pty, ok := z.HandlerRef().(*zone.PTYHandler); ok {
			r.paintPTYZone(out, rows, z, pty)
			continue
		}
		lines := z.Buffer.Window(z.H)
		for row := 0; row < z.H && row < len(lines); row++ {
			sx, sy, ok := r.View.CanvasToScreen(z.X, z.Y+int64(row))
			if !ok || sy >= rows {
				continue
			}
			text := []rune(lines[row].Text)
			col := 0
			for _, ch := range text {
				if col >= z.W {
					break
				}
				screenX := sx + col
				if screenX >= 0 && screenX < r.Term.W {
					out[sy][screenX] = canvas.Cell{Char: ch, FG: canvas.ColorDefault, BG: canvas.ColorDefault}
				}
				col += runewidth.RuneWidth(ch)
			}
		}
	}
}

// paintPTYZone renders a focused or background PTY zone from its
// terminal emulator's current screen snapshot rather than its plain
// text buffer, since a PTY zone's content is colored, cursor-addressed
// VT100 output (spec.md §4.6.3, §5 "short critical section" snapshot).
func (r *Renderer) paintPTYZone(out [][]canvas.Cell, rows int, z *zone.Zone, pty *zone.PTYHandler) {
	screen := pty.Screen()
	if screen == nil {
		return
	}
	lines := screen.CurrentScreenLines()
	for row := 0; row < z.H && row < len(lines); row++ {
		sx, sy, ok := r.View.CanvasToScreen(z.X, z.Y+int64(row))
		if !ok || sy >= rows {
			continue
		}
		for col, cell := range lines[row] {
			if col >= z.W {
				break
			}
			screenX := sx + col
			if screenX < 0 || screenX >= r.Term.W {
				continue
			}
			fg, bg := cell.FG, cell.BG
			if cell.Reverse {
				fg, bg = bg, fg
			}
			out[sy][screenX] = canvas.Cell{Char: cell.Ch, FG: fg, BG: bg}
		}
	}
}

// paintSelection highlights the active VISUAL-mode rectangle by
// swapping fg/bg on the affected cells (spec.md §4.7 step 6
// "selection highlight (VISUAL)").
func (r *Renderer) paintSelection(out [][]canvas.Cell, rows int) {
	if r.Machine == nil || r.Machine.Mode() != mode.VISUAL {
		return
	}
	sel, ok := r.Machine.Selection()
	if !ok {
		return
	}
	x0, y0, x1, y1 := sel.Bounds()
	for cy := y0; cy <= y1; cy++ {
		for cx := x0; cx <= x1; cx++ {
			sx, sy, ok := r.View.CanvasToScreen(cx, cy)
			if !ok || sy >= rows {
				continue
			}
			cell := out[sy][sx]
			cell.FG, cell.BG = cell.BG, cell.FG
			if cell.FG == canvas.ColorDefault {
				cell.FG = 0
			}
			out[sy][sx] = cell
		}
	}
}

func (r *Renderer) writeRow(w io.Writer, row []canvas.Cell, state *ansi.SGRState) {
	col := 0
	for _, cell := range row {
		if col >= r.Term.W {
			break
		}
		ch := cell.Char
		if ch == 0 {
			ch = canvas.EmptyChar
		}
		fg, bg := paletteToFG(cell.FG), paletteToBG(cell.BG)
		if esc := state.SetColors(fg, bg); esc != "" {
			fmt.Fprint(w, esc)
		}
		fmt.Fprintf(w, "%c", ch)
		col += runewidth.RuneWidth(ch)
	}
}

// writeStatusLine renders the bottom terminal row from the same
// structured data the API's `status` command returns, so what the
// user sees and what a headless client reads never drift apart
// (spec.md §4.8 "enabling headless clients").
func (r *Renderer) writeStatusLine(w io.Writer) {
	fmt.Fprint(w, "\x1b[0m")
	if r.StatusFn == nil {
		return
	}
	res := r.StatusFn()
	var sb strings.Builder
	sb.WriteString(res.Message)
	if res.Extra != nil {
		if cur, ok := res.Extra["cursor"]; ok {
			fmt.Fprintf(&sb, " cursor=%v", cur)
		}
		if m, ok := res.Extra["mode"]; ok {
			fmt.Fprintf(&sb, " mode=%v", m)
		}
	}
	line := sb.String()
	if visible := runewidth.StringWidth(line); visible > r.Term.W {
		line = runewidth.Truncate(line, r.Term.W, "")
	}
	fmt.Fprint(w, line)
}

// positionCursor places the terminal cursor at the canvas cursor's
// screen position (spec.md §4.7 step 6 "cursor"), 1-based for CSI.
func (r *Renderer) positionCursor(w io.Writer, rows int) {
	sx, sy, ok := r.View.CanvasToScreen(r.View.CursorX, r.View.CursorY)
	if !ok || sy >= rows {
		return
	}
	fmt.Fprint(w, ansi.MoveCursor(sy+1, sx+1))
}

// paletteToFG converts a canvas palette index (-1 default, 0-15) to the
// SGR foreground code ansi.SGRState expects (30-37 normal, 90-97 bright).
func paletteToFG(index int) int {
	if index < 0 {
		return -1
	}
	if index < 8 {
		return 30 + index
	}
	return 90 + (index - 8)
}

// paletteToBG converts a canvas palette index (-1 default, 0-15) to the
// SGR background code ansi.SGRState expects (40-47 normal, 100-107 bright).
func paletteToBG(index int) int {
	if index < 0 {
		return -1
	}
	if index < 8 {
		return 40 + index
	}
	return 100 + (index - 8)
}
