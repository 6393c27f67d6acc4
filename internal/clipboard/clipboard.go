// Package clipboard implements the rectangular cell buffer used by
// yank/paste, independent of any particular canvas instance.
package clipboard

import "github.com/stlalpha/my-grid/internal/canvas"

// Buffer is a finite rectangular matrix of cells copied from a canvas (or
// a zone's rendered lines).
type Buffer struct {
	Width, Height int
	Cells         [][]canvas.Cell // row-major, len(Cells) == Height
	LineCount     int
}

// Empty reports whether the clipboard currently holds nothing.
func (b *Buffer) Empty() bool {
	return b == nil || b.Width == 0 || b.Height == 0
}

// Yank copies the w×h rectangle with top-left (x,y) out of src into a new
// Buffer, preserving colors.
func Yank(src *canvas.Canvas, x, y int64, w, h int) *Buffer {
	if w <= 0 || h <= 0 {
		return &Buffer{}
	}
	cells := make([][]canvas.Cell, h)
	for row := 0; row < h; row++ {
		cells[row] = make([]canvas.Cell, w)
		for col := 0; col < w; col++ {
			cells[row][col] = src.Get(x+int64(col), y+int64(row))
		}
	}
	return &Buffer{Width: w, Height: h, Cells: cells, LineCount: h}
}

// Paste blits the buffer onto dst with top-left at (x,y). Empty-glyph
// cells in the buffer are skipped so paste never erases content beneath
// transparent positions.
func (b *Buffer) Paste(dst *canvas.Canvas, x, y int64) {
	if b.Empty() {
		return
	}
	for row := 0; row < b.Height; row++ {
		for col := 0; col < b.Width; col++ {
			cell := b.Cells[row][col]
			if cell.Empty() {
				continue
			}
			dst.Set(x+int64(col), y+int64(row), cell)
		}
	}
}

// FromLines builds a column-width clipboard buffer from a zone's rendered
// text lines (yank_zone), one row per line, padded to the widest line.
func FromLines(lines []string) *Buffer {
	width := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > width {
			width = n
		}
	}
	cells := make([][]canvas.Cell, len(lines))
	for i, l := range lines {
		row := make([]canvas.Cell, width)
		for j := range row {
			row[j] = canvas.EmptyCell
		}
		for j, r := range []rune(l) {
			row[j] = canvas.Cell{Char: r, FG: canvas.ColorDefault, BG: canvas.ColorDefault}
		}
		cells[i] = row
	}
	return &Buffer{Width: width, Height: len(lines), Cells: cells, LineCount: len(lines)}
}

// Clear empties the buffer in place.
func (b *Buffer) Clear() {
	b.Width, b.Height, b.Cells, b.LineCount = 0, 0, nil, 0
}

// Holder is the single process-wide clipboard slot shared by the mode
// machine, the command executor, and CLIPBOARD zones.
type Holder struct {
	buf *Buffer
}

// NewHolder returns an empty clipboard holder.
func NewHolder() *Holder {
	return &Holder{buf: &Buffer{}}
}

// Get returns the current clipboard buffer (never nil).
func (h *Holder) Get() *Buffer {
	if h.buf == nil {
		h.buf = &Buffer{}
	}
	return h.buf
}

// Set replaces the clipboard buffer.
func (h *Holder) Set(b *Buffer) {
	h.buf = b
}

// ClearBuffer empties the clipboard in place.
func (h *Holder) ClearBuffer() {
	h.Get().Clear()
}
