// Package command implements the `:`-command parser and executor shared
// by COMMAND mode (spec.md §4.4) and the API server (spec.md §4.8): one
// contract, one implementation, enforced by construction rather than by
// convention.
package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/stlalpha/my-grid/internal/bookmark"
	"github.com/stlalpha/my-grid/internal/canvas"
	"github.com/stlalpha/my-grid/internal/clipboard"
	"github.com/stlalpha/my-grid/internal/grid"
	"github.com/stlalpha/my-grid/internal/mode"
	"github.com/stlalpha/my-grid/internal/palette"
	"github.com/stlalpha/my-grid/internal/project"
	"github.com/stlalpha/my-grid/internal/sysclip"
	"github.com/stlalpha/my-grid/internal/viewport"
	"github.com/stlalpha/my-grid/internal/zone"
)

// Status is the outcome of executing one command.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// Result is the shared command outcome (spec.md §4.5 "CommandResult").
// Quit never appears in the JSON wire form the API server writes
// (spec.md §4.8); it is consulted only by the in-process application
// loop. Extra is written as "extra_state" when set.
type Result struct {
	Status  Status                 `json:"status"`
	Message string                 `json:"message"`
	Extra   map[string]interface{} `json:"extra_state,omitempty"`
	Quit    bool                   `json:"-"`
}

func ok(msg string) Result    { return Result{Status: StatusOK, Message: msg} }
func errf(format string, a ...interface{}) Result {
	return Result{Status: StatusError, Message: fmt.Sprintf(format, a...)}
}

// Executor holds every piece of shared engine state a command can touch.
// It is the sole place that mutates zones on behalf of a command; the
// mode machine mutates Canvas/View/Bookmarks/Clip directly for the other
// modes (spec.md §5 "one application thread is the sole mutator").
type Executor struct {
	Canvas    *canvas.Canvas
	View      *viewport.Viewport
	Grid      *grid.Settings
	Bookmarks *bookmark.Store
	Clip      *clipboard.Holder
	Zones     *zone.Registry
	Machine   *mode.Machine
	SysClip   *sysclip.Bridge
	Layouts   *project.LayoutStore

	CurrentFile string
	Dirty       bool
	CreatedISO  string

	ProjectName string
}

// New creates an executor over the given shared engine state.
func New(c *canvas.Canvas, v *viewport.Viewport, g *grid.Settings, b *bookmark.Store, clip *clipboard.Holder, zones *zone.Registry, m *mode.Machine, layouts *project.LayoutStore) *Executor {
	return &Executor{
		Canvas: c, View: v, Grid: g, Bookmarks: b, Clip: clip, Zones: zones, Machine: m,
		SysClip: sysclip.New(), Layouts: layouts, CreatedISO: time.Now().UTC().Format(time.RFC3339),
	}
}

// Execute parses and runs one command line. A leading ':' or '/' is
// optional and stripped if present (spec.md §4.5).
func (e *Executor) Execute(line string) Result {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, ":")
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return errf("empty command")
	}

	name, rest := splitFirst(line)
	name = strings.ToLower(name)

	switch canonical(name) {
	case "quit":
		return Result{Status: StatusOK, Message: "quitting", Quit: true}
	case "write":
		return e.cmdWrite(rest)
	case "wq":
		res := e.cmdWrite(rest)
		if res.Status == StatusError {
			return res
		}
		res.Quit = true
		return res
	case "goto":
		return e.cmdGoto(rest)
	case "origin":
		return e.cmdOrigin(rest)
	case "pan":
		return e.cmdPan(rest)
	case "clear":
		return e.cmdClear(rest)
	case "rect":
		return e.cmdRect(rest)
	case "line":
		return e.cmdLine(rest)
	case "text":
		return e.cmdText(rest)
	case "fill":
		return e.cmdFill(rest)
	case "grid":
		return e.cmdGrid(rest)
	case "mark":
		return e.cmdMark(rest)
	case "delmark":
		return e.cmdDelmark(rest)
	case "delmarks":
		e.Bookmarks.DeleteAll()
		return ok("all bookmarks deleted")
	case "marks":
		return e.cmdMarks()
	case "export":
		return e.cmdExport(rest)
	case "import":
		return e.cmdImport(rest)
	case "ydir":
		return e.cmdYdir(rest)
	case "yank":
		return e.cmdYank(rest)
	case "paste":
		return e.cmdPaste(rest)
	case "clipboard":
		return e.cmdClipboard(rest)
	case "color":
		return e.cmdColor(rest)
	case "palette":
		return e.cmdPalette()
	case "zone":
		return e.cmdZone(rest)
	case "zones":
		return e.cmdZones()
	case "layout":
		return e.cmdLayout(rest)
	case "status":
		return e.cmdStatus()
	}
	return errf("unknown command %q", name)
}

// canonical resolves single-letter aliases to their full command name.
func canonical(name string) string {
	switch name {
	case "q":
		return "quit"
	case "w":
		return "write"
	case "g":
		return "goto"
	}
	return name
}

// splitFirst splits s into its first whitespace-delimited token and the
// (left-trimmed) remainder.
func splitFirst(s string) (first, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i+1:], " \t")
}

func fields(s string) []string {
	return strings.Fields(s)
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

// ---- Control ----

func (e *Executor) cmdWrite(rest string) Result {
	path := strings.TrimSpace(rest)
	if path == "" {
		path = e.CurrentFile
	}
	if path == "" {
		return errf("no file name: use 'write PATH'")
	}
	name := e.ProjectName
	if name == "" {
		name = path
	}
	st := project.State{
		Canvas: e.Canvas, View: e.View, Grid: e.Grid, Bookmarks: e.Bookmarks, Zones: e.Zones,
		Name: name, CreatedISO: e.CreatedISO, ModifiedISO: time.Now().UTC().Format(time.RFC3339),
	}
	if err := project.Save(path, st); err != nil {
		return errf("%v", err)
	}
	e.CurrentFile = path
	e.Dirty = false
	return ok(fmt.Sprintf("wrote %s", path))
}

// ---- Cursor / viewport ----

func (e *Executor) cmdGoto(rest string) Result {
	a := fields(rest)
	if len(a) != 2 {
		return errf("usage: goto X Y")
	}
	x, err1 := parseInt64(a[0])
	y, err2 := parseInt64(a[1])
	if err1 != nil || err2 != nil {
		return errf("goto: invalid coordinates")
	}
	e.View.SetCursor(x, y)
	return ok(fmt.Sprintf("cursor at (%d,%d)", x, y))
}

func (e *Executor) cmdOrigin(rest string) Result {
	a := fields(rest)
	switch {
	case len(a) == 0:
		e.View.MarkerX, e.View.MarkerY = 0, 0
	case len(a) == 1 && a[0] == "here":
		e.View.MarkerX, e.View.MarkerY = e.View.CursorX, e.View.CursorY
	case len(a) == 2:
		x, err1 := parseInt64(a[0])
		y, err2 := parseInt64(a[1])
		if err1 != nil || err2 != nil {
			return errf("origin: invalid coordinates")
		}
		e.View.MarkerX, e.View.MarkerY = x, y
	default:
		return errf("usage: origin [X Y | here]")
	}
	return ok(fmt.Sprintf("origin at (%d,%d)", e.View.MarkerX, e.View.MarkerY))
}

func (e *Executor) cmdPan(rest string) Result {
	a := fields(rest)
	if len(a) != 2 {
		return errf("usage: pan X Y")
	}
	dx, err1 := parseInt64(a[0])
	dy, err2 := parseInt64(a[1])
	if err1 != nil || err2 != nil {
		return errf("pan: invalid deltas")
	}
	e.View.Pan(dx, dy)
	return ok(fmt.Sprintf("panned by (%d,%d)", dx, dy))
}

// ---- Drawing ----

func (e *Executor) cmdClear(rest string) Result {
	a := fields(rest)
	if len(a) == 0 {
		minX, minY, maxX, maxY, has := e.Canvas.Bounds()
		if !has {
			return ok("canvas already empty")
		}
		e.Canvas.ClearRegion(minX, minY, int(maxX-minX+1), int(maxY-minY+1))
		e.Dirty = true
		return ok("canvas cleared")
	}
	if len(a) != 2 {
		return errf("usage: clear [W H]")
	}
	w, err1 := strconv.Atoi(a[0])
	h, err2 := strconv.Atoi(a[1])
	if err1 != nil || err2 != nil {
		return errf("clear: invalid size")
	}
	e.Canvas.ClearRegion(e.View.CursorX, e.View.CursorY, w, h)
	e.Dirty = true
	return ok(fmt.Sprintf("cleared %dx%d at cursor", w, h))
}

func (e *Executor) cmdRect(rest string) Result {
	a := fields(rest)
	if len(a) != 2 && len(a) != 3 {
		return errf("usage: rect W H [glyph]")
	}
	w, err1 := strconv.Atoi(a[0])
	h, err2 := strconv.Atoi(a[1])
	if err1 != nil || err2 != nil {
		return errf("rect: invalid size")
	}
	var glyph rune
	if len(a) == 3 {
		r := []rune(a[2])
		if len(r) != 1 {
			return errf("rect: glyph must be a single character")
		}
		glyph = r[0]
	}
	e.Canvas.DrawRect(e.View.CursorX, e.View.CursorY, w, h, glyph, e.Machine.BorderStyle())
	e.Dirty = true
	return ok(fmt.Sprintf("drew %dx%d rect", w, h))
}

func (e *Executor) cmdLine(rest string) Result {
	a := fields(rest)
	if len(a) != 2 && len(a) != 3 {
		return errf("usage: line X2 Y2 [glyph]")
	}
	x2, err1 := parseInt64(a[0])
	y2, err2 := parseInt64(a[1])
	if err1 != nil || err2 != nil {
		return errf("line: invalid coordinates")
	}
	var glyph rune
	if len(a) == 3 {
		r := []rune(a[2])
		if len(r) != 1 {
			return errf("line: glyph must be a single character")
		}
		glyph = r[0]
	}
	e.Canvas.DrawLine(e.View.CursorX, e.View.CursorY, x2, y2, glyph, e.Machine.BorderStyle())
	e.Dirty = true
	return ok(fmt.Sprintf("drew line to (%d,%d)", x2, y2))
}

func (e *Executor) cmdText(rest string) Result {
	if rest == "" {
		return errf("usage: text MESSAGE")
	}
	fg, bg := e.Machine.Color()
	e.Canvas.WriteText(e.View.CursorX, e.View.CursorY, rest, fg, bg)
	e.Dirty = true
	return ok(fmt.Sprintf("wrote %d character(s)", len([]rune(rest))))
}

// cmdFill implements the VISUAL-mode 'f' mini-command: fill the active
// selection rectangle with a single glyph using the active pen color.
func (e *Executor) cmdFill(rest string) Result {
	sel, has := e.Machine.Selection()
	if !has {
		return errf("fill: no active selection")
	}
	r := []rune(strings.TrimSpace(rest))
	if len(r) != 1 {
		return errf("usage: fill GLYPH")
	}
	fg, bg := e.Machine.Color()
	minX, minY, maxX, maxY := sel.Bounds()
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			e.Canvas.Set(x, y, canvas.Cell{Char: r[0], FG: fg, BG: bg})
		}
	}
	e.Dirty = true
	return ok("filled selection")
}

// ---- Grid ----

func (e *Executor) cmdGrid(rest string) Result {
	a := fields(rest)
	if len(a) == 0 {
		return errf("usage: grid (major|minor N|lines|markers|dots|off|rulers on|off|labels on|off|interval MAJOR [MINOR])")
	}
	switch a[0] {
	case "off":
		e.Grid.LineModeVal = grid.Off
	case "lines":
		e.Grid.LineModeVal = grid.Lines
	case "markers":
		e.Grid.LineModeVal = grid.Markers
	case "dots":
		e.Grid.LineModeVal = grid.Dots
	case "major":
		if len(a) != 2 {
			return errf("usage: grid major N")
		}
		n, err := strconv.Atoi(a[1])
		if err != nil {
			return errf("grid major: invalid N")
		}
		e.Grid.MajorInterval = n
	case "minor":
		if len(a) != 2 {
			return errf("usage: grid minor N")
		}
		n, err := strconv.Atoi(a[1])
		if err != nil {
			return errf("grid minor: invalid N")
		}
		e.Grid.MinorInterval = n
	case "interval":
		if len(a) != 2 && len(a) != 3 {
			return errf("usage: grid interval MAJOR [MINOR]")
		}
		major, err := strconv.Atoi(a[1])
		if err != nil {
			return errf("grid interval: invalid MAJOR")
		}
		e.Grid.MajorInterval = major
		if len(a) == 3 {
			minor, err := strconv.Atoi(a[2])
			if err != nil {
				return errf("grid interval: invalid MINOR")
			}
			e.Grid.MinorInterval = minor
		}
	case "rulers":
		if len(a) != 2 {
			return errf("usage: grid rulers on|off")
		}
		e.Grid.ShowRulers = a[1] == "on"
	case "labels":
		if len(a) != 2 {
			return errf("usage: grid labels on|off")
		}
		e.Grid.ShowLabels = a[1] == "on"
	default:
		return errf("grid: unknown option %q", a[0])
	}
	return ok("grid updated")
}

// ---- Bookmarks ----

func (e *Executor) cmdMark(rest string) Result {
	a := fields(rest)
	if len(a) != 1 && len(a) != 3 {
		return errf("usage: mark KEY [X Y]")
	}
	if len(a[0]) != 1 || !bookmark.Valid(a[0][0]) {
		return errf("mark: key must be a-z or 0-9")
	}
	x, y := e.View.CursorX, e.View.CursorY
	if len(a) == 3 {
		var err1, err2 error
		x, err1 = parseInt64(a[1])
		y, err2 = parseInt64(a[2])
		if err1 != nil || err2 != nil {
			return errf("mark: invalid coordinates")
		}
	}
	if err := e.Bookmarks.Set(a[0][0], canvas.Point{X: x, Y: y}); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("bookmark %q set at (%d,%d)", a[0], x, y))
}

func (e *Executor) cmdDelmark(rest string) Result {
	a := fields(rest)
	if len(a) != 1 || len(a[0]) != 1 {
		return errf("usage: delmark KEY")
	}
	e.Bookmarks.Delete(a[0][0])
	return ok(fmt.Sprintf("bookmark %q deleted", a[0]))
}

func (e *Executor) cmdMarks() Result {
	list := e.Bookmarks.List()
	if len(list) == 0 {
		return ok("no bookmarks set")
	}
	var sb strings.Builder
	for i, m := range list {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%c=(%d,%d)", m.Key, m.Pos.X, m.Pos.Y)
	}
	return ok(sb.String())
}

// ---- Export / import ----

func (e *Executor) cmdExport(rest string) Result {
	path := strings.TrimSpace(rest)
	if path == "" {
		path = "export.txt"
	}
	if err := project.ExportText(e.Canvas, path); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("exported to %s", path))
}

func (e *Executor) cmdImport(rest string) Result {
	path := strings.TrimSpace(rest)
	if path == "" {
		return errf("usage: import FILE")
	}
	n, err := project.ImportText(e.Canvas, path, e.View.CursorX, e.View.CursorY)
	if err != nil {
		return errf("%v", err)
	}
	e.Dirty = true
	return ok(fmt.Sprintf("imported %d line(s)", n))
}

// ---- Y-direction ----

func (e *Executor) cmdYdir(rest string) Result {
	switch strings.TrimSpace(rest) {
	case "up":
		e.View.YDir = viewport.Up
	case "down":
		e.View.YDir = viewport.Down
	default:
		return errf("usage: ydir up|down")
	}
	return ok(fmt.Sprintf("y-direction: %s", strings.TrimSpace(rest)))
}

// ---- Clipboard ----

func (e *Executor) cmdYank(rest string) Result {
	a := fields(rest)
	if len(a) < 2 {
		return errf("usage: yank W H [zone NAME | system]")
	}
	w, err1 := strconv.Atoi(a[0])
	h, err2 := strconv.Atoi(a[1])
	if err1 != nil || err2 != nil {
		return errf("yank: invalid size")
	}
	if len(a) >= 3 && a[2] == "zone" {
		if len(a) != 4 {
			return errf("usage: yank W H zone NAME")
		}
		z, found := e.Zones.Get(a[3])
		if !found {
			return errf("zone %q not found", a[3])
		}
		lines := z.Buffer.TextLines()
		e.Clip.Set(clipboard.FromLines(lines))
		return ok(fmt.Sprintf("yanked zone %q (%d lines)", a[3], len(lines)))
	}
	buf := clipboard.Yank(e.Canvas, e.View.CursorX, e.View.CursorY, w, h)
	e.Clip.Set(buf)
	if len(a) >= 3 && a[2] == "system" {
		if err := e.SysClip.Copy(cellsToText(buf)); err != nil {
			return errf("yanked locally, but system clipboard failed: %v", err)
		}
		return ok(fmt.Sprintf("yanked %dx%d to system clipboard", w, h))
	}
	return ok(fmt.Sprintf("yanked %dx%d", w, h))
}

func (e *Executor) cmdPaste(rest string) Result {
	if strings.TrimSpace(rest) == "system" {
		lines, err := e.SysClip.Paste()
		if err != nil {
			return errf("%v", err)
		}
		clipboard.FromLines(lines).Paste(e.Canvas, e.View.CursorX, e.View.CursorY)
		e.Dirty = true
		return ok("pasted from system clipboard")
	}
	e.Clip.Get().Paste(e.Canvas, e.View.CursorX, e.View.CursorY)
	e.Dirty = true
	return ok("pasted")
}

func (e *Executor) cmdClipboard(rest string) Result {
	switch strings.TrimSpace(rest) {
	case "":
		b := e.Clip.Get()
		if b.Empty() {
			return ok("clipboard empty")
		}
		return ok(fmt.Sprintf("clipboard: %dx%d", b.Width, b.Height))
	case "clear":
		e.Clip.ClearBuffer()
		return ok("clipboard cleared")
	case "zone":
		z, found := e.Zones.Get("CLIPBOARD")
		if !found {
			z = &zone.Zone{Name: "CLIPBOARD", X: e.View.CursorX, Y: e.View.CursorY, W: 20, H: 10, Config: zone.ClipboardConfig{}}
			z.Buffer = zone.NewBuffer(256, true)
			if err := e.Zones.Create(z); err != nil {
				return errf("%v", err)
			}
		}
		syncClipboardZone(z, e.Clip.Get())
		return ok("clipboard zone ready")
	}
	return errf("usage: clipboard [clear | zone]")
}

func syncClipboardZone(z *zone.Zone, b *clipboard.Buffer) {
	z.Buffer.Lines = nil
	for row := 0; row < b.Height; row++ {
		var sb strings.Builder
		for col := 0; col < b.Width; col++ {
			c := b.Cells[row][col]
			if c.Empty() {
				sb.WriteByte(' ')
			} else {
				sb.WriteRune(c.Char)
			}
		}
		z.Buffer.AppendText(sb.String())
	}
}

func cellsToText(b *clipboard.Buffer) string {
	var sb strings.Builder
	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			c := b.Cells[row][col]
			if c.Empty() {
				sb.WriteByte(' ')
			} else {
				sb.WriteRune(c.Char)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// ---- Color ----

func (e *Executor) cmdColor(rest string) Result {
	a := fields(rest)
	if len(a) == 1 && a[0] == "off" {
		e.Machine.SetColor(canvas.ColorDefault, canvas.ColorDefault)
		return ok("pen color reset to default")
	}
	if len(a) >= 2 && a[0] == "apply" {
		if len(a) != 3 {
			return errf("usage: color apply W H")
		}
		w, err1 := strconv.Atoi(a[1])
		h, err2 := strconv.Atoi(a[2])
		if err1 != nil || err2 != nil {
			return errf("color apply: invalid size")
		}
		fg, bg := e.Machine.Color()
		for dy := 0; dy < h; dy++ {
			for dx := 0; dx < w; dx++ {
				x, y := e.View.CursorX+int64(dx), e.View.CursorY+int64(dy)
				cell := e.Canvas.Get(x, y)
				if cell.Empty() {
					continue
				}
				cell.FG, cell.BG = fg, bg
				e.Canvas.Set(x, y, cell)
			}
		}
		e.Dirty = true
		return ok(fmt.Sprintf("applied color to %dx%d", w, h))
	}
	if len(a) != 1 && len(a) != 2 {
		return errf("usage: color FG [BG] | color off | color apply W H")
	}
	fg, found := palette.Lookup(a[0])
	if !found {
		return errf("color: unknown color %q", a[0])
	}
	bg := canvas.ColorDefault
	if len(a) == 2 {
		bg, found = palette.Lookup(a[1])
		if !found {
			return errf("color: unknown color %q", a[1])
		}
	}
	e.Machine.SetColor(fg, bg)
	return ok(fmt.Sprintf("pen color: %s/%s", palette.Name(fg), palette.Name(bg)))
}

func (e *Executor) cmdPalette() Result {
	var sb strings.Builder
	for i, ent := range palette.Table {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%d", ent.Name, ent.Index)
	}
	return ok(sb.String())
}

// ---- Zones ----

func (e *Executor) cmdZone(rest string) Result {
	sub, rest2 := splitFirst(rest)
	switch sub {
	case "create":
		return e.zoneCreate(rest2)
	case "pipe":
		return e.zonePipe(rest2)
	case "watch":
		return e.zoneWatch(rest2)
	case "pty":
		return e.zonePTY(rest2)
	case "fifo":
		return e.zoneFIFO(rest2)
	case "socket":
		return e.zoneSocket(rest2)
	case "pager":
		return e.zonePager(rest2)
	case "delete":
		return e.zoneDelete(rest2)
	case "goto":
		return e.zoneGoto(rest2)
	case "info":
		return e.zoneInfo(rest2)
	case "refresh":
		return e.zoneCtl(rest2, func(h zone.Handler) error { return h.Refresh() }, "refreshed")
	case "pause":
		return e.zoneCtl(rest2, func(h zone.Handler) error { h.Pause(); return nil }, "paused")
	case "resume":
		return e.zoneCtl(rest2, func(h zone.Handler) error { h.Resume(); return nil }, "resumed")
	case "send":
		return e.zoneSend(rest2)
	case "focus":
		return e.zoneFocus(rest2)
	}
	return errf("zone: unknown subcommand %q", sub)
}

// zoneGeometry parses "NAME (X Y | here) W H" returning the remaining
// tokens consumed.
func (e *Executor) zoneGeometry(rest string) (name string, x, y int64, w, h int, tail []string, err error) {
	a := fields(rest)
	if len(a) < 4 {
		err = fmt.Errorf("not enough arguments")
		return
	}
	name = a[0]
	if a[1] == "here" {
		x, y = e.View.CursorX, e.View.CursorY
		w, err = strconv.Atoi(a[2])
		if err != nil {
			return
		}
		h, err = strconv.Atoi(a[3])
		tail = a[4:]
		return
	}
	if len(a) < 5 {
		err = fmt.Errorf("not enough arguments")
		return
	}
	x, err = parseInt64(a[1])
	if err != nil {
		return
	}
	y, err = parseInt64(a[2])
	if err != nil {
		return
	}
	w, err = strconv.Atoi(a[3])
	if err != nil {
		return
	}
	h, err = strconv.Atoi(a[4])
	tail = a[5:]
	return
}

func (e *Executor) zoneCreate(rest string) Result {
	name, x, y, w, h, _, err := e.zoneGeometry(rest)
	if err != nil {
		return errf("usage: zone create NAME (X Y | here) W H: %v", err)
	}
	z := &zone.Zone{Name: name, X: x, Y: y, W: w, H: h, Config: zone.StaticConfig{}}
	if err := e.Zones.Create(z); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("zone %q created", name))
}

// startZone registers z then starts handler h, rolling back registration
// if Start fails (e.g. platform lacks pseudo-terminals).
func (e *Executor) startZone(z *zone.Zone, h zone.Handler) error {
	z.SetHandler(h)
	if err := e.Zones.Create(z); err != nil {
		return err
	}
	if err := h.Start(z, e.Zones.Events); err != nil {
		_ = e.Zones.Delete(z.Name)
		return err
	}
	return nil
}

func (e *Executor) zonePipe(rest string) Result {
	name, x, y, w, h, tail, err := e.zoneGeometry(rest)
	if err != nil || len(tail) == 0 {
		return errf("usage: zone pipe NAME (X Y | here) W H CMD...")
	}
	cmdLine := strings.Join(tail, " ")
	cfg := zone.PipeConfig{Command: cmdLine, AutoScroll: true, MaxLines: 500}
	z := &zone.Zone{Name: name, X: x, Y: y, W: w, H: h, Config: cfg}
	z.Buffer = zone.NewBuffer(cfg.MaxLines, cfg.AutoScroll)
	if err := e.startZone(z, zone.NewPipeHandler(cfg)); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("pipe zone %q created", name))
}

func (e *Executor) zoneWatch(rest string) Result {
	a := fields(rest)
	if len(a) < 5 {
		return errf("usage: zone watch NAME (X Y | here) W H INTERVAL CMD...")
	}
	name, x, y, w, h, tail, err := e.zoneGeometry(rest)
	if err != nil || len(tail) < 2 {
		return errf("usage: zone watch NAME (X Y | here) W H INTERVAL CMD...")
	}
	intervalTok, cmdTokens := tail[0], tail[1:]
	cfg := zone.WatchConfig{Command: strings.Join(cmdTokens, " "), AutoScroll: true, MaxLines: 500}
	switch {
	case strings.HasPrefix(intervalTok, "watch:"):
		cfg.WatchPath = strings.TrimPrefix(intervalTok, "watch:")
	case strings.HasSuffix(intervalTok, "s"):
		secs, perr := strconv.ParseFloat(strings.TrimSuffix(intervalTok, "s"), 64)
		if perr != nil {
			return errf("watch: invalid interval %q", intervalTok)
		}
		cfg.Interval = time.Duration(secs * float64(time.Second))
	case strings.HasSuffix(intervalTok, "m"):
		mins, perr := strconv.Atoi(strings.TrimSuffix(intervalTok, "m"))
		if perr != nil {
			return errf("watch: invalid interval %q", intervalTok)
		}
		cfg.Interval = time.Duration(mins) * time.Minute
	default:
		return errf("watch: interval must be <float>s, <int>m, or watch:PATH")
	}
	z := &zone.Zone{Name: name, X: x, Y: y, W: w, H: h, Config: cfg}
	z.Buffer = zone.NewBuffer(cfg.MaxLines, cfg.AutoScroll)
	if err := e.startZone(z, zone.NewWatchHandler(cfg)); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("watch zone %q created", name))
}

func (e *Executor) zonePTY(rest string) Result {
	name, x, y, w, h, tail, err := e.zoneGeometry(rest)
	if err != nil {
		return errf("usage: zone pty NAME (X Y | here) W H [SHELL...]")
	}
	cfg := zone.PTYConfig{ShellCommandLine: strings.Join(tail, " "), MaxLines: 2000}
	z := &zone.Zone{Name: name, X: x, Y: y, W: w, H: h, Config: cfg}
	z.Buffer = zone.NewBuffer(cfg.MaxLines, true)
	if err := e.startZone(z, zone.NewPTYHandler(cfg)); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("pty zone %q created", name))
}

func (e *Executor) zoneFIFO(rest string) Result {
	name, x, y, w, h, tail, err := e.zoneGeometry(rest)
	if err != nil || len(tail) != 1 {
		return errf("usage: zone fifo NAME (X Y | here) W H PATH")
	}
	cfg := zone.FIFOConfig{Path: tail[0], AutoScroll: true, MaxLines: 500}
	z := &zone.Zone{Name: name, X: x, Y: y, W: w, H: h, Config: cfg}
	z.Buffer = zone.NewBuffer(cfg.MaxLines, cfg.AutoScroll)
	if err := e.startZone(z, zone.NewFIFOHandler(cfg)); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("fifo zone %q created", name))
}

func (e *Executor) zoneSocket(rest string) Result {
	name, x, y, w, h, tail, err := e.zoneGeometry(rest)
	if err != nil || len(tail) != 1 {
		return errf("usage: zone socket NAME (X Y | here) W H PORT")
	}
	port, perr := strconv.Atoi(tail[0])
	if perr != nil {
		return errf("zone socket: invalid port %q", tail[0])
	}
	cfg := zone.SocketConfig{Port: port, AutoScroll: true, MaxLines: 500}
	z := &zone.Zone{Name: name, X: x, Y: y, W: w, H: h, Config: cfg}
	z.Buffer = zone.NewBuffer(cfg.MaxLines, cfg.AutoScroll)
	if err := e.startZone(z, zone.NewSocketHandler(cfg)); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("socket zone %q created on port %d", name, port))
}

func (e *Executor) zonePager(rest string) Result {
	name, x, y, w, h, tail, err := e.zoneGeometry(rest)
	if err != nil || len(tail) != 1 {
		return errf("usage: zone pager NAME (X Y | here) W H FILE")
	}
	cfg := zone.PagerConfig{FilePath: tail[0]}
	z := &zone.Zone{Name: name, X: x, Y: y, W: w, H: h, Config: cfg}
	z.Buffer = zone.NewBuffer(10000, false)
	if err := e.startZone(z, zone.NewPagerHandler(cfg)); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("pager zone %q created", name))
}

func (e *Executor) zoneDelete(rest string) Result {
	name := strings.TrimSpace(rest)
	if name == "" {
		return errf("usage: zone delete NAME")
	}
	if err := e.Zones.Delete(name); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("zone %q deleted", name))
}

func (e *Executor) zoneGoto(rest string) Result {
	name := strings.TrimSpace(rest)
	z, found := e.Zones.Get(name)
	if !found {
		return errf("zone %q not found", name)
	}
	e.View.SetCursor(z.X, z.Y)
	return ok(fmt.Sprintf("cursor at zone %q", name))
}

func (e *Executor) zoneInfo(rest string) Result {
	name := strings.TrimSpace(rest)
	if name == "" {
		zones := e.Zones.List()
		names := make([]string, len(zones))
		for i, z := range zones {
			names[i] = z.Name
		}
		sort.Strings(names)
		return ok(strings.Join(names, ", "))
	}
	z, found := e.Zones.Get(name)
	if !found {
		return errf("zone %q not found", name)
	}
	state, msg := z.State()
	bufBytes := uint64(0)
	for _, ln := range z.Buffer.TextLines() {
		bufBytes += uint64(len(ln)) + 1
	}
	info := fmt.Sprintf("%s: type=%s pos=(%d,%d) size=%dx%d state=%s buffer=%s",
		z.Name, z.Config.Type(), z.X, z.Y, z.W, z.H, state, humanize.Bytes(bufBytes))
	if msg != "" {
		info += " (" + msg + ")"
	}
	return ok(info)
}

func (e *Executor) zoneCtl(rest string, fn func(zone.Handler) error, verb string) Result {
	name := strings.TrimSpace(rest)
	z, found := e.Zones.Get(name)
	if !found {
		return errf("zone %q not found", name)
	}
	h := z.HandlerRef()
	if h == nil {
		return errf("zone %q has no background handler", name)
	}
	if err := fn(h); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("zone %q %s", name, verb))
}

func (e *Executor) zoneSend(rest string) Result {
	name, text := splitFirst(rest)
	if name == "" || text == "" {
		return errf("usage: zone send NAME TEXT")
	}
	z, found := e.Zones.Get(name)
	if !found {
		return errf("zone %q not found", name)
	}
	h := z.HandlerRef()
	if h == nil {
		return errf("zone %q has no background handler", name)
	}
	if err := h.Send([]byte(text)); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("sent to zone %q", name))
}

func (e *Executor) zoneFocus(rest string) Result {
	name := strings.TrimSpace(rest)
	z, found := e.Zones.Get(name)
	if !found {
		return errf("zone %q not found", name)
	}
	if z.Config.Type() != zone.PTY {
		return errf("zone %q is not a pty zone and cannot be focused", name)
	}
	e.Machine.EnterPTYFocused(name)
	return ok(fmt.Sprintf("focused zone %q", name))
}

func (e *Executor) cmdZones() Result {
	zones := e.Zones.List()
	if len(zones) == 0 {
		return ok("no zones")
	}
	var sb strings.Builder
	for i, z := range zones {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s(%s)", z.Name, z.Config.Type())
	}
	return ok(sb.String())
}

// ---- Layouts ----

func (e *Executor) cmdLayout(rest string) Result {
	sub, rest2 := splitFirst(rest)
	switch sub {
	case "list":
		names, err := e.Layouts.List()
		if err != nil {
			return errf("%v", err)
		}
		if len(names) == 0 {
			return ok("no layouts")
		}
		return ok(strings.Join(names, ", "))
	case "load":
		return e.layoutLoad(rest2)
	case "save":
		return e.layoutSave(rest2)
	case "delete":
		name := strings.TrimSpace(rest2)
		if name == "" {
			return errf("usage: layout delete NAME")
		}
		if err := e.Layouts.Delete(name); err != nil {
			return errf("%v", err)
		}
		return ok(fmt.Sprintf("layout %q deleted", name))
	case "info":
		name := strings.TrimSpace(rest2)
		if name == "" {
			return errf("usage: layout info NAME")
		}
		info, err := e.Layouts.Info(name)
		if err != nil {
			return errf("%v", err)
		}
		return ok(info)
	}
	return errf("usage: layout (list | load NAME [--clear] | save NAME [DESC] | delete NAME | info NAME)")
}

func (e *Executor) layoutLoad(rest string) Result {
	a := fields(rest)
	if len(a) == 0 {
		return errf("usage: layout load NAME [--clear]")
	}
	name := a[0]
	clear := len(a) > 1 && a[1] == "--clear"
	l, err := e.Layouts.Load(name)
	if err != nil {
		return errf("%v", err)
	}
	if clear {
		for _, z := range e.Zones.List() {
			_ = e.Zones.Delete(z.Name)
		}
	}
	created, failed := 0, 0
	for _, zd := range l.Zones {
		if err := e.createZoneFromDescriptor(zd); err != nil {
			failed++
			continue
		}
		created++
	}
	if l.Cursor != nil {
		e.View.SetCursor(l.Cursor.X, l.Cursor.Y)
	}
	msg := fmt.Sprintf("layout %q loaded: %d zone(s) created", name, created)
	if failed > 0 {
		msg += fmt.Sprintf(", %d failed", failed)
	}
	return ok(msg)
}

// RestoreZoneDescriptors recreates the zones described by zds, the same
// way layout load does. Used at startup when a project file named on
// the command line carries its own zone descriptors (spec.md §4.9).
func (e *Executor) RestoreZoneDescriptors(zds []project.ZoneDescriptor) (created, failed int) {
	for _, zd := range zds {
		if err := e.createZoneFromDescriptor(zd); err != nil {
			failed++
			continue
		}
		created++
	}
	return created, failed
}

func (e *Executor) createZoneFromDescriptor(zd project.ZoneDescriptor) error {
	z := &zone.Zone{Name: zd.Name, X: zd.X, Y: zd.Y, W: zd.W, H: zd.H, Description: zd.Description}
	if zd.Bookmark != "" {
		z.Bookmark = zd.Bookmark[0]
	}
	switch zd.Type {
	case "static":
		z.Config = zone.StaticConfig{}
		return e.Zones.Create(z)
	case "clipboard":
		z.Config = zone.ClipboardConfig{}
		z.Buffer = zone.NewBuffer(256, true)
		return e.Zones.Create(z)
	case "pipe":
		cfg := zone.PipeConfig{Command: zd.Command, AutoScroll: zd.AutoScroll, MaxLines: zd.MaxLines}
		z.Config = cfg
		z.Buffer = zone.NewBuffer(cfg.MaxLines, cfg.AutoScroll)
		return e.startZone(z, zone.NewPipeHandler(cfg))
	case "watch":
		cfg := zone.WatchConfig{Command: zd.Command, WatchPath: zd.WatchPath, AutoScroll: zd.AutoScroll, MaxLines: zd.MaxLines}
		if zd.Interval != "" {
			if d, perr := time.ParseDuration(zd.Interval); perr == nil {
				cfg.Interval = d
			}
		}
		z.Config = cfg
		z.Buffer = zone.NewBuffer(cfg.MaxLines, cfg.AutoScroll)
		return e.startZone(z, zone.NewWatchHandler(cfg))
	case "pty":
		cfg := zone.PTYConfig{ShellCommandLine: zd.ShellCommand, MaxLines: zd.MaxLines}
		z.Config = cfg
		z.Buffer = zone.NewBuffer(cfg.MaxLines, true)
		return e.startZone(z, zone.NewPTYHandler(cfg))
	case "fifo":
		cfg := zone.FIFOConfig{Path: zd.Path, AutoScroll: zd.AutoScroll, MaxLines: zd.MaxLines}
		z.Config = cfg
		z.Buffer = zone.NewBuffer(cfg.MaxLines, cfg.AutoScroll)
		return e.startZone(z, zone.NewFIFOHandler(cfg))
	case "socket":
		cfg := zone.SocketConfig{Port: zd.Port, AutoScroll: zd.AutoScroll, MaxLines: zd.MaxLines}
		z.Config = cfg
		z.Buffer = zone.NewBuffer(cfg.MaxLines, cfg.AutoScroll)
		return e.startZone(z, zone.NewSocketHandler(cfg))
	case "pager":
		cfg := zone.PagerConfig{FilePath: zd.FilePath, RendererHint: zd.RendererHint}
		z.Config = cfg
		z.Buffer = zone.NewBuffer(10000, false)
		return e.startZone(z, zone.NewPagerHandler(cfg))
	}
	return fmt.Errorf("unknown zone type %q", zd.Type)
}

func (e *Executor) layoutSave(rest string) Result {
	a := fields(rest)
	if len(a) == 0 {
		return errf("usage: layout save NAME [DESC]")
	}
	name := a[0]
	desc := ""
	if i := strings.Index(rest, " "); i >= 0 {
		desc = strings.TrimSpace(rest[i+1:])
	}
	l := project.Layout{Name: name, Description: desc}
	for _, z := range e.Zones.List() {
		d := project.ZoneDescriptor{Name: z.Name, X: z.X, Y: z.Y, W: z.W, H: z.H, Description: z.Description, Type: z.Config.Type().String()}
		switch cfg := z.Config.(type) {
		case zone.PipeConfig:
			d.Command, d.AutoScroll, d.MaxLines = cfg.Command, cfg.AutoScroll, cfg.MaxLines
		case zone.WatchConfig:
			d.Command, d.AutoScroll, d.MaxLines = cfg.Command, cfg.AutoScroll, cfg.MaxLines
			if cfg.WatchPath != "" {
				d.WatchPath = cfg.WatchPath
			} else {
				d.Interval = cfg.Interval.String()
			}
		case zone.PTYConfig:
			d.ShellCommand, d.MaxLines = cfg.ShellCommandLine, cfg.MaxLines
		case zone.FIFOConfig:
			d.Path, d.AutoScroll, d.MaxLines = cfg.Path, cfg.AutoScroll, cfg.MaxLines
		case zone.SocketConfig:
			d.Port, d.AutoScroll, d.MaxLines = cfg.Port, cfg.AutoScroll, cfg.MaxLines
		case zone.PagerConfig:
			d.FilePath, d.RendererHint = cfg.FilePath, cfg.RendererHint
		}
		l.Zones = append(l.Zones, d)
	}
	if err := e.Layouts.Save(l); err != nil {
		return errf("%v", err)
	}
	return ok(fmt.Sprintf("layout %q saved (%d zones)", name, len(l.Zones)))
}

// ---- Status ----

func (e *Executor) cmdStatus() Result {
	extra := map[string]interface{}{
		"cursor":    map[string]int64{"x": e.View.CursorX, "y": e.View.CursorY},
		"viewport":  map[string]int64{"x": e.View.OriginX, "y": e.View.OriginY},
		"mode":      e.Machine.Mode().String(),
		"cellCount": e.Canvas.Count(),
		"dirty":     boolToInt(e.Dirty),
		"file":      e.CurrentFile,
		"zoneCount": len(e.Zones.List()),
	}
	return Result{Status: StatusOK, Message: "status", Extra: extra}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
