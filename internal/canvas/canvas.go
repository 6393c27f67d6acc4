package canvas

// BorderStyle selects the glyph set used by DrawRect/DrawLine for edges,
// corners and junctions.
type BorderStyle int

const (
	BorderASCII BorderStyle = iota
	BorderUnicode
	BorderRounded
	BorderDouble
	BorderHeavy
)

type borderGlyphs struct {
	horiz, vert                     rune
	topLeft, topRight                rune
	botLeft, botRight                rune
	teeLeft, teeRight, teeUp, teeDown rune
	cross                            rune
}

var borderSets = map[BorderStyle]borderGlyphs{
	BorderASCII: {
		horiz: '-', vert: '|',
		topLeft: '+', topRight: '+', botLeft: '+', botRight: '+',
		teeLeft: '+', teeRight: '+', teeUp: '+', teeDown: '+',
		cross: '+',
	},
	BorderUnicode: {
		horiz: '─', vert: '│',
		topLeft: '┌', topRight: '┐', botLeft: '└', botRight: '┘',
		teeLeft: '├', teeRight: '┤', teeUp: '┴', teeDown: '┬',
		cross: '┼',
	},
	BorderRounded: {
		horiz: '─', vert: '│',
		topLeft: '╭', topRight: '╮', botLeft: '╰', botRight: '╯',
		teeLeft: '├', teeRight: '┤', teeUp: '┴', teeDown: '┬',
		cross: '┼',
	},
	BorderDouble: {
		horiz: '═', vert: '║',
		topLeft: '╔', topRight: '╗', botLeft: '╚', botRight: '╝',
		teeLeft: '╠', teeRight: '╣', teeUp: '╩', teeDown: '╦',
		cross: '╬',
	},
	BorderHeavy: {
		horiz: '━', vert: '┃',
		topLeft: '┏', topRight: '┓', botLeft: '┗', botRight: '┛',
		teeLeft: '┣', teeRight: '┫', teeUp: '┻', teeDown: '┳',
		cross: '╋',
	},
}

// Canvas is a sparse mapping from (x,y) to Cell. Absent keys render as the
// empty glyph; memory use is proportional to the number of non-empty
// cells.
type Canvas struct {
	cells map[Point]Cell
}

// New creates an empty canvas.
func New() *Canvas {
	return &Canvas{cells: make(map[Point]Cell)}
}

// Count returns the number of non-empty cells currently stored.
func (c *Canvas) Count() int {
	return len(c.cells)
}

// Get returns the cell at (x,y), or EmptyCell if unset.
func (c *Canvas) Get(x, y int64) Cell {
	if cell, ok := c.cells[Point{X: x, Y: y}]; ok {
		return cell
	}
	return EmptyCell
}

// Set stores cell at (x,y). Setting an empty cell removes the key so
// storage stays proportional to visible content.
func (c *Canvas) Set(x, y int64, cell Cell) {
	p := Point{X: x, Y: y}
	if cell.Empty() {
		delete(c.cells, p)
		return
	}
	c.cells[p] = cell
}

// ClearRegion removes every cell in the w×h rectangle with top-left (x,y).
func (c *Canvas) ClearRegion(x, y int64, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	for dy := int64(0); dy < int64(h); dy++ {
		for dx := int64(0); dx < int64(w); dx++ {
			delete(c.cells, Point{X: x + dx, Y: y + dy})
		}
	}
}

// Each calls fn for every non-empty cell. Iteration order is unspecified.
func (c *Canvas) Each(fn func(p Point, cell Cell)) {
	for p, cell := range c.cells {
		fn(p, cell)
	}
}

// Bounds returns the smallest rectangle containing every non-empty cell.
// ok is false when the canvas is empty.
func (c *Canvas) Bounds() (minX, minY, maxX, maxY int64, ok bool) {
	first := true
	for p := range c.cells {
		if first {
			minX, maxX = p.X, p.X
			minY, maxY = p.Y, p.Y
			first = false
			continue
		}
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return minX, minY, maxX, maxY, !first
}

// DrawRect draws a w×h bordered rectangle, top-left at (x,y), using glyph
// for the border when style-less (glyph != 0), or the named corner style
// otherwise. w,h must be >=1; rectangles of 1 row/column degrade to a
// single line of the glyph.
func (c *Canvas) DrawRect(x, y int64, w, h int, glyph rune, style BorderStyle) {
	if w <= 0 || h <= 0 {
		return
	}
	g := borderSets[style]
	if glyph != 0 {
		g = borderGlyphs{horiz: glyph, vert: glyph, topLeft: glyph, topRight: glyph, botLeft: glyph, botRight: glyph}
	}
	x2, y2 := x+int64(w)-1, y+int64(h)-1

	set := func(px, py int64, r rune) { c.Set(px, py, Cell{Char: r, FG: ColorDefault, BG: ColorDefault}) }

	if h == 1 {
		for px := x; px <= x2; px++ {
			set(px, y, g.horiz)
		}
		return
	}
	if w == 1 {
		for py := y; py <= y2; py++ {
			set(x, py, g.vert)
		}
		return
	}

	for px := x + 1; px < x2; px++ {
		set(px, y, g.horiz)
		set(px, y2, g.horiz)
	}
	for py := y + 1; py < y2; py++ {
		set(x, py, g.vert)
		set(x2, py, g.vert)
	}
	set(x, y, g.topLeft)
	set(x2, y, g.topRight)
	set(x, y2, g.botLeft)
	set(x2, y2, g.botRight)
}

// direction of a Bresenham step, used to pick the horizontal or vertical
// segment glyph in style-driven line drawing.
type dir int

const (
	dirNone dir = iota
	dirUp
	dirDown
	dirLeft
	dirRight
)

// DrawLine draws an 8-way Bresenham line from (x1,y1) to (x2,y2). A
// zero-length line writes a single cell at the endpoint. When glyph is 0,
// the active border style supplies horizontal/vertical segment glyphs, and
// a cell whose already-drawn neighbours form a corner, tee or cross gets
// that glyph instead. A change of direction is not detected as such: the
// cell where a path turns is judged only by the neighbours drawn so far.
func (c *Canvas) DrawLine(x1, y1, x2, y2 int64, glyph rune, style BorderStyle) {
	if x1 == x2 && y1 == y2 {
		c.set1(x1, y1, glyph, style, dirNone)
		return
	}

	dx := abs64(x2 - x1)
	dy := -abs64(y2 - y1)
	sx := int64(1)
	if x1 > x2 {
		sx = -1
	}
	sy := int64(1)
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	cx, cy := x1, y1
	var lastDir dir
	for {
		d := lineDir(cx, cy, x2, y2, sx, sy)
		c.set1(cx, cy, glyph, style, pickDir(lastDir, d))
		lastDir = d
		if cx == x2 && cy == y2 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			cx += sx
		}
		if e2 <= dx {
			err += dx
			cy += sy
		}
	}
}

func lineDir(cx, cy, x2, y2, sx, sy int64) dir {
	if cx == x2 && cy == y2 {
		return dirNone
	}
	if sy != 0 && cy != y2 {
		if sy > 0 {
			return dirDown
		}
		return dirUp
	}
	if sx > 0 {
		return dirRight
	}
	return dirLeft
}

func pickDir(prev, cur dir) dir {
	if prev == dirNone {
		return cur
	}
	return cur
}

func (c *Canvas) set1(x, y int64, glyph rune, style BorderStyle, d dir) {
	r := glyph
	if r == 0 {
		g := borderSets[style]
		switch d {
		case dirUp, dirDown:
			r = g.vert
		case dirLeft, dirRight:
			r = g.horiz
		default:
			r = g.horiz
		}
		r = c.junction(x, y, r, g)
	}
	c.Set(x, y, Cell{Char: r, FG: ColorDefault, BG: ColorDefault})
}

// junction detects whether an existing neighboring drawn cell means this
// position should render as a corner or a tee/cross junction instead of a
// plain segment glyph.
func (c *Canvas) junction(x, y int64, r rune, g borderGlyphs) rune {
	up := !c.Get(x, y-1).Empty()
	down := !c.Get(x, y+1).Empty()
	left := !c.Get(x-1, y).Empty()
	right := !c.Get(x+1, y).Empty()

	switch {
	case up && down && left && right:
		return g.cross
	case up && down && right && !left:
		return g.teeLeft
	case up && down && left && !right:
		return g.teeRight
	case left && right && down && !up:
		return g.teeDown
	case left && right && up && !down:
		return g.teeUp
	case down && right && !up && !left:
		return g.topLeft
	case down && left && !up && !right:
		return g.topRight
	case up && right && !down && !left:
		return g.botLeft
	case up && left && !down && !right:
		return g.botRight
	}
	return r
}

// WriteText writes text starting at (x,y), advancing one cell per rune in
// +x. Each rune is treated as a single user-perceived glyph (single-column
// policy, see SPEC_FULL.md §3).
func (c *Canvas) WriteText(x, y int64, text string, fg, bg int) {
	px := x
	for _, r := range text {
		c.Set(px, y, Cell{Char: r, FG: fg, BG: bg})
		px++
	}
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
