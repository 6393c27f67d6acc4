// Package viewport implements the window-to-canvas coordinate transform,
// cursor tracking, and scroll-to-follow behavior for the visible portion
// of an infinite canvas.
package viewport

// YDirection selects whether increasing canvas Y moves the cursor toward
// the bottom of the screen (DOWN, the terminal convention) or the top
// (UP, the mathematical convention).
type YDirection int

const (
	Down YDirection = iota
	Up
)

// Viewport is the rectangular window into the canvas currently rendered
// to the terminal.
type Viewport struct {
	OriginX, OriginY int64
	Width, Height    int
	CursorX, CursorY int64
	MarkerX, MarkerY int64
	YDir             YDirection
}

// New creates a viewport of the given size, cursor and origin at (0,0).
func New(width, height int) *Viewport {
	return &Viewport{Width: width, Height: height}
}

// SetOrigin moves the viewport's top-left canvas coordinate directly,
// without touching the cursor.
func (v *Viewport) SetOrigin(x, y int64) {
	v.OriginX, v.OriginY = x, y
}

// Pan shifts the viewport by (dx,dy) canvas cells. The cursor does not
// move; callers in PAN mode are expected to move the cursor by the same
// delta separately so it tracks the viewport.
func (v *Viewport) Pan(dx, dy int64) {
	v.OriginX += dx
	v.OriginY += dy
}

// Resize changes the viewport's terminal-cell dimensions.
func (v *Viewport) Resize(w, h int) {
	v.Width, v.Height = w, h
}

// MoveCursor moves the cursor by (dx,dy) canvas cells, scrolling the
// viewport with margin 0 (flush edge) if the cursor would otherwise leave
// the visible window.
func (v *Viewport) MoveCursor(dx, dy int64) {
	v.SetCursor(v.CursorX+dx, v.CursorY+dy)
}

// SetCursor moves the cursor to an absolute canvas coordinate, scrolling
// the viewport to keep it visible.
func (v *Viewport) SetCursor(x, y int64) {
	v.CursorX, v.CursorY = x, y
	v.followCursor()
}

func (v *Viewport) followCursor() {
	if v.Width <= 0 || v.Height <= 0 {
		return
	}
	if v.CursorX < v.OriginX {
		v.OriginX = v.CursorX
	}
	if v.CursorX > v.OriginX+int64(v.Width)-1 {
		v.OriginX = v.CursorX - int64(v.Width) + 1
	}
	if v.CursorY < v.OriginY {
		v.OriginY = v.CursorY
	}
	if v.CursorY > v.OriginY+int64(v.Height)-1 {
		v.OriginY = v.CursorY - int64(v.Height) + 1
	}
}

// ScreenToCanvas converts a screen coordinate within the viewport to a
// canvas coordinate, honoring YDir.
func (v *Viewport) ScreenToCanvas(sx, sy int) (cx, cy int64) {
	cx = v.OriginX + int64(sx)
	if v.YDir == Up {
		cy = v.OriginY + int64(v.Height-1-sy)
	} else {
		cy = v.OriginY + int64(sy)
	}
	return cx, cy
}

// CanvasToScreen converts a canvas coordinate to a screen coordinate
// within the viewport. ok is false when the point falls outside the
// visible window.
func (v *Viewport) CanvasToScreen(cx, cy int64) (sx, sy int, ok bool) {
	sx = int(cx - v.OriginX)
	if sx < 0 || sx >= v.Width {
		return 0, 0, false
	}
	if v.YDir == Up {
		sy = int(v.OriginY+int64(v.Height-1)) - int(cy)
	} else {
		sy = int(cy - v.OriginY)
	}
	if sy < 0 || sy >= v.Height {
		return 0, 0, false
	}
	return sx, sy, true
}
