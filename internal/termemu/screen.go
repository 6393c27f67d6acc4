// Package termemu implements the VT100/ANSI subset needed to host an
// interactive program (shell, editor, REPL) inside a PTY zone: printable
// bytes, CR/LF/BS/TAB, cursor positioning, erase-in-line/screen, SGR
// colors, wrap mode, and a bounded scrollback history.
package termemu

import "sync"

// Cell is one character cell of the emulated screen.
type Cell struct {
	Ch      rune
	FG, BG  int // -1 == terminal default
	Bold    bool
	Reverse bool
}

var blankCell = Cell{Ch: ' ', FG: -1, BG: -1}

// Screen is a fixed-size grid of Cells, a bounded scrollback history of
// lines that scrolled off the top, and the parser state needed to
// interpret an incoming VT100/ANSI byte stream (spec.md §4.6.3/§9).
type Screen struct {
	mu sync.Mutex

	w, h int
	grid [][]Cell

	history    [][]Cell
	maxHistory int

	cursorX, cursorY int
	savedX, savedY   int
	curFG, curBG     int
	bold, reverse    bool
	wrapPending      bool

	parser parser
}

// New creates a Screen of size w×h with scrollback bounded to maxHistory
// lines.
func New(w, h, maxHistory int) *Screen {
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 24
	}
	if maxHistory <= 0 {
		maxHistory = 1
	}
	s := &Screen{w: w, h: h, maxHistory: maxHistory, curFG: -1, curBG: -1}
	s.grid = newGrid(w, h)
	return s
}

func newGrid(w, h int) [][]Cell {
	g := make([][]Cell, h)
	for y := range g {
		g[y] = make([]Cell, w)
		for x := range g[y] {
			g[y][x] = blankCell
		}
	}
	return g
}

// Feed processes incoming bytes from the PTY master, updating screen and
// history state.
func (s *Screen) Feed(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range data {
		s.parser.step(s, b)
	}
}

// CurrentScreenLines returns a snapshot of the visible screen, one Cell
// row per line. Safe to call concurrently with Feed (short critical
// section, spec.md §9).
func (s *Screen) CurrentScreenLines() [][]Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]Cell, s.h)
	for y := range s.grid {
		row := make([]Cell, s.w)
		copy(row, s.grid[y])
		out[y] = row
	}
	return out
}

// HistoryLines returns a snapshot of the scrollback history, oldest
// first.
func (s *Screen) HistoryLines() [][]Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]Cell, len(s.history))
	for i, row := range s.history {
		r := make([]Cell, len(row))
		copy(r, row)
		out[i] = r
	}
	return out
}

// CursorPosition returns the 0-based cursor column and row.
func (s *Screen) CursorPosition() (x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursorX, s.cursorY
}

// Resize changes the screen's dimensions, preserving content in the
// top-left overlap and clearing/extending as needed.
func (s *Screen) Resize(w, h int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w <= 0 || h <= 0 {
		return
	}
	newGridVal := newGrid(w, h)
	for y := 0; y < h && y < s.h; y++ {
		for x := 0; x < w && x < s.w; x++ {
			newGridVal[y][x] = s.grid[y][x]
		}
	}
	s.grid = newGridVal
	s.w, s.h = w, h
	if s.cursorX >= w {
		s.cursorX = w - 1
	}
	if s.cursorY >= h {
		s.cursorY = h - 1
	}
}

func (s *Screen) scrollUp() {
	row := make([]Cell, s.w)
	copy(row, s.grid[0])
	s.history = append(s.history, row)
	if len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
	copy(s.grid, s.grid[1:])
	last := make([]Cell, s.w)
	for x := range last {
		last[x] = blankCell
	}
	s.grid[s.h-1] = last
}

func (s *Screen) put(r rune) {
	if s.wrapPending {
		s.cursorX = 0
		s.newline()
		s.wrapPending = false
	}
	if s.cursorY < 0 || s.cursorY >= s.h {
		return
	}
	s.grid[s.cursorY][s.cursorX] = Cell{Ch: r, FG: s.curFG, BG: s.curBG, Bold: s.bold, Reverse: s.reverse}
	if s.cursorX == s.w-1 {
		s.wrapPending = true
	} else {
		s.cursorX++
	}
}

func (s *Screen) newline() {
	if s.cursorY == s.h-1 {
		s.scrollUp()
	} else {
		s.cursorY++
	}
}

func (s *Screen) cr() { s.cursorX = 0 }

func (s *Screen) backspace() {
	if s.cursorX > 0 {
		s.cursorX--
	}
}

func (s *Screen) tab() {
	next := (s.cursorX/8 + 1) * 8
	if next >= s.w {
		next = s.w - 1
	}
	s.cursorX = next
}

func (s *Screen) eraseInLine(mode int) {
	row := s.grid[s.cursorY]
	switch mode {
	case 0:
		for x := s.cursorX; x < s.w; x++ {
			row[x] = blankCell
		}
	case 1:
		for x := 0; x <= s.cursorX && x < s.w; x++ {
			row[x] = blankCell
		}
	case 2:
		for x := range row {
			row[x] = blankCell
		}
	}
}

func (s *Screen) eraseInDisplay(mode int) {
	switch mode {
	case 0:
		s.eraseInLine(0)
		for y := s.cursorY + 1; y < s.h; y++ {
			for x := range s.grid[y] {
				s.grid[y][x] = blankCell
			}
		}
	case 1:
		for y := 0; y < s.cursorY; y++ {
			for x := range s.grid[y] {
				s.grid[y][x] = blankCell
			}
		}
		s.eraseInLine(1)
	case 2, 3:
		s.grid = newGrid(s.w, s.h)
	}
}

func (s *Screen) moveCursor(dx, dy int) {
	s.cursorX = clamp(s.cursorX+dx, 0, s.w-1)
	s.cursorY = clamp(s.cursorY+dy, 0, s.h-1)
	s.wrapPending = false
}

func (s *Screen) setCursor(row, col int) {
	s.cursorX = clamp(col, 0, s.w-1)
	s.cursorY = clamp(row, 0, s.h-1)
	s.wrapPending = false
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Screen) sgr(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for _, p := range params {
		switch {
		case p == 0:
			s.curFG, s.curBG, s.bold, s.reverse = -1, -1, false, false
		case p == 1:
			s.bold = true
		case p == 7:
			s.reverse = true
		case p == 22:
			s.bold = false
		case p == 27:
			s.reverse = false
		case p == 39:
			s.curFG = -1
		case p == 49:
			s.curBG = -1
		case p >= 30 && p <= 37:
			s.curFG = p - 30
		case p >= 90 && p <= 97:
			s.curFG = p - 90 + 8
		case p >= 40 && p <= 47:
			s.curBG = p - 40
		case p >= 100 && p <= 107:
			s.curBG = p - 100 + 8
		}
	}
}
